package rendering

import (
	"context"
	"errors"
	"testing"
	"time"

	"hypersurface/core"
)

func waitDone(t *testing.T, l *Loader) {
	t.Helper()
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loader did not finish")
	}
}

func TestLoaderDeliversOnce(t *testing.T) {
	set := testSet()
	l := StartLoader(context.Background(), func(ctx context.Context) (*core.SampleSet, error) {
		return set, nil
	})
	defer l.Close()
	waitDone(t, l)

	got, ok := l.Poll()
	if !ok || got != set {
		t.Fatalf("Poll: got %v, %v", got, ok)
	}
	if _, ok := l.Poll(); ok {
		t.Error("result delivered twice")
	}
}

func TestLoaderPollDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	l := StartLoader(context.Background(), func(ctx context.Context) (*core.SampleSet, error) {
		<-release
		return testSet(), nil
	})
	defer l.Close()

	start := time.Now()
	for i := 0; i < 10; i++ {
		if _, ok := l.Poll(); ok {
			t.Fatal("result before fetch finished")
		}
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Poll blocked")
	}
	close(release)
	waitDone(t, l)
	if _, ok := l.Poll(); !ok {
		t.Error("no result after fetch finished")
	}
}

func TestLoaderCloseDiscardsResult(t *testing.T) {
	release := make(chan struct{})
	cancelled := make(chan struct{})
	l := StartLoader(context.Background(), func(ctx context.Context) (*core.SampleSet, error) {
		select {
		case <-ctx.Done():
			close(cancelled)
			return nil, ctx.Err()
		case <-release:
			return testSet(), nil
		}
	})

	l.Close()
	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the fetch")
	}
	waitDone(t, l)
	if set, ok := l.Poll(); ok || set != nil {
		t.Error("closed loader delivered a result")
	}
	close(release)
}

func TestLoaderCloseAfterArrival(t *testing.T) {
	l := StartLoader(context.Background(), func(ctx context.Context) (*core.SampleSet, error) {
		return testSet(), nil
	})
	waitDone(t, l)
	l.Close()
	if _, ok := l.Poll(); ok {
		t.Error("result applied after Close")
	}
}

func TestLoaderFetchError(t *testing.T) {
	l := StartLoader(context.Background(), func(ctx context.Context) (*core.SampleSet, error) {
		return nil, errors.New("unreachable")
	})
	defer l.Close()
	waitDone(t, l)
	if _, ok := l.Poll(); ok {
		t.Error("failed fetch produced a result")
	}
}
