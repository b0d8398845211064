package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"hypersurface/core"
)

// Key scheme:
//
//	s|<seq>  → Snapshot JSON, seq zero-padded so keys sort chronologically
//	latest   → key of the newest snapshot
const (
	prefixSnapshot = "s|"
	keyLatest      = "latest"
	seqDigits      = 20
)

// ErrNoSnapshot is returned when the store holds nothing yet.
var ErrNoSnapshot = errors.New("no stored surface")

// Snapshot is one provider document as it was received.
type Snapshot struct {
	ID       string    `json:"id"`
	SavedAt  time.Time `json:"saved_at"`
	Document Document  `json:"document"`
}

// Store keeps received documents in LevelDB so a restart without provider
// access shows the last real surface instead of the fixture.
type Store struct {
	db  *leveldb.DB
	seq uint64
}

// OpenStore opens (or creates) a store in the directory at path.
func OpenStore(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open surface store %s: %w", path, err)
	}

	s := &Store{db: db}
	iter := db.NewIterator(util.BytesPrefix([]byte(prefixSnapshot)), nil)
	if iter.Last() {
		s.seq, _ = seqFromKey(iter.Key())
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		db.Close()
		return nil, fmt.Errorf("scan surface store: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func snapshotKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%0*d", prefixSnapshot, seqDigits, seq))
}

func seqFromKey(key []byte) (uint64, error) {
	return strconv.ParseUint(string(key[len(prefixSnapshot):]), 10, 64)
}

// Save appends doc as the newest snapshot and returns its id.
func (s *Store) Save(doc Document) (string, error) {
	snap := Snapshot{
		ID:       uuid.NewString(),
		SavedAt:  time.Now().UTC(),
		Document: doc,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	s.seq++
	key := snapshotKey(s.seq)
	batch := new(leveldb.Batch)
	batch.Put(key, data)
	batch.Put([]byte(keyLatest), key)
	if err := s.db.Write(batch, nil); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return snap.ID, nil
}

// Latest returns the newest snapshot, or ErrNoSnapshot.
func (s *Store) Latest() (Snapshot, error) {
	key, err := s.db.Get([]byte(keyLatest), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read latest key: %w", err)
	}
	return s.get(key)
}

// LatestSet decodes the newest snapshot into a SampleSet.
func (s *Store) LatestSet() (*core.SampleSet, Document, error) {
	snap, err := s.Latest()
	if err != nil {
		return nil, Document{}, err
	}
	set, _ := snap.Document.SampleSet()
	return set, snap.Document, nil
}

func (s *Store) get(key []byte) (Snapshot, error) {
	data, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// List returns all snapshots, oldest first.
func (s *Store) List() ([]Snapshot, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixSnapshot)), nil)
	defer iter.Release()

	var out []Snapshot
	for iter.Next() {
		var snap Snapshot
		if err := json.Unmarshal(iter.Value(), &snap); err != nil {
			continue
		}
		out = append(out, snap)
	}
	return out, iter.Error()
}

// Prune deletes all but the newest keep snapshots.
func (s *Store) Prune(keep int) (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefixSnapshot)), nil)
	var keys [][]byte
	for iter.Next() {
		keys = append(keys, append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, err
	}

	if keep < 0 {
		keep = 0
	}
	if len(keys) <= keep {
		return 0, nil
	}

	batch := new(leveldb.Batch)
	stale := keys[:len(keys)-keep]
	for _, key := range stale {
		batch.Delete(key)
	}
	if keep == 0 {
		batch.Delete([]byte(keyLatest))
	}
	if err := s.db.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return len(stale), nil
}

// OpenCache opens the store at path, prunes it to keep snapshots and attaches
// it to client. An empty path disables caching. Failures are logged and the
// client runs without a cache. The returned func closes the store.
func OpenCache(client *Client, path string, keep int) func() {
	if path == "" {
		return func() {}
	}
	store, err := OpenStore(path)
	if err != nil {
		log.Printf("[PROVIDER] %v; continuing without a cache", err)
		return func() {}
	}
	if n, err := store.Prune(keep); err != nil {
		log.Printf("[PROVIDER] %v", err)
	} else if n > 0 {
		log.Printf("[PROVIDER] pruned %d old snapshots", n)
	}
	client.UseStore(store)
	return func() { store.Close() }
}
