// Package store persists document snapshots in a key-value backend. Every
// record is framed with its encoding and an xxhash checksum of the payload
// so that damaged records are reported instead of half-restored.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	ineld "github.com/inesonic/ineld-sub009"
)

type Options struct {
	Encoding  Encoding      // Encoding of new records, MsgPack when zero
	Logger    *zap.Logger   // nil means no logging
	Timeout   time.Duration // Bolt file lock timeout, zero waits forever
	IsTesting bool          // Skip fsync on Bolt commits
}

// Store is an ineld.Archive. It is safe for concurrent use.
type Store struct {
	be     backend
	enc    Encoding
	log    *zap.Logger
	mu     sync.RWMutex
	closed bool
}

var _ ineld.Archive = (*Store)(nil)

// OpenBolt opens (creating if needed) a Bolt database file.
func OpenBolt(path string, opt Options) (*Store, error) {
	be, err := openBoltBackend(path, opt)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	s := newStore(be, opt)
	s.log.Debug("bolt store opened", zap.String("path", path), zap.Stringer("encoding", s.enc))
	return s, nil
}

// OpenMemory returns a store that keeps records in memory.
func OpenMemory(opt Options) *Store {
	return newStore(newMemBackend(), opt)
}

func newStore(be backend, opt Options) *Store {
	s := &Store{be: be, enc: opt.Encoding, log: opt.Logger}
	if s.enc == 0 {
		s.enc = defaultEncoding
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Encoding returns the encoding used for new records.
func (s *Store) Encoding() Encoding { return s.enc }

// Put stores a snapshot under id, replacing the previous one.
func (s *Store) Put(id uuid.UUID, snap *ineld.Snapshot) error {
	payload, err := s.enc.Marshal(snap)
	if err != nil {
		return err
	}
	rec := appendFrame(make([]byte, 0, frameHeaderSize+len(payload)), s.enc, payload)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.be.put(id[:], rec); err != nil {
		return fmt.Errorf("store: put %s: %w", id, err)
	}
	return nil
}

// Get loads the snapshot stored under id.
func (s *Store) Get(id uuid.UUID) (*ineld.Snapshot, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	rec, err := s.be.get(id[:])
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	enc, payload, err := parseFrame(rec)
	if err == nil {
		var snap *ineld.Snapshot
		if snap, err = enc.Unmarshal(payload); err == nil {
			return snap, nil
		}
	}
	s.log.Warn("unreadable record", zap.Stringer("id", id), zap.Error(err))
	return nil, err
}

// Delete removes the snapshot stored under id.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	found, err := s.be.delete(id[:])
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if !found {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// IDs returns the ids of every stored snapshot in byte order. Keys that
// are not ids are skipped.
func (s *Store) IDs() ([]uuid.UUID, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	keys, err := s.be.keys()
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		id, err := uuid.FromBytes(k)
		if err != nil {
			s.log.Warn("foreign key in store", zap.Binary("key", k))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Close releases the backend. Closing twice is an error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return s.be.close()
}
