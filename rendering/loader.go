package rendering

import (
	"context"
	"log"
	"sync"

	"hypersurface/core"
)

// FetchFunc retrieves a SampleSet. It should honour ctx cancellation.
type FetchFunc func(ctx context.Context) (*core.SampleSet, error)

// Loader runs a single asynchronous fetch and hands the result to a
// frame-driven consumer through Poll. After Close the result is discarded
// even if it already arrived.
type Loader struct {
	cancel context.CancelFunc
	result chan *core.SampleSet
	done   chan struct{}

	mu        sync.Mutex
	closed    bool
	delivered bool
}

// StartLoader begins fetching immediately.
func StartLoader(parent context.Context, fetch FetchFunc) *Loader {
	ctx, cancel := context.WithCancel(parent)
	l := &Loader{
		cancel: cancel,
		result: make(chan *core.SampleSet, 1),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(l.done)
		set, err := fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[LOADER] fetch failed: %v", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		l.result <- set
	}()

	return l
}

// Poll never blocks. It returns the fetched set exactly once.
func (l *Loader) Poll() (*core.SampleSet, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.delivered {
		return nil, false
	}
	select {
	case set := <-l.result:
		l.delivered = true
		return set, true
	default:
		return nil, false
	}
}

// Done is closed once the fetch goroutine has exited.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Close cancels an outstanding fetch and drops any pending result.
func (l *Loader) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
}
