// Package progress saves and restores session snapshots in a KV store.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/mcqprep/internal/session"
	"github.com/abhisek/mcqprep/internal/store"
)

const (
	// KeyPrefix namespaces every progress entry.
	KeyPrefix = "progress/"

	// LastKey holds the most recently saved session of any source.
	LastKey = KeyPrefix + "last"
)

var (
	// ErrNoSavedSession means there is nothing to resume for the request.
	ErrNoSavedSession = errors.New("no saved session for this module")

	// ErrInvalidSnapshot is returned for entries that cannot be decoded.
	ErrInvalidSnapshot = session.ErrInvalidSnapshot
)

// WriteError reports a failed snapshot write. It never stops a session.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("save progress %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// KeyFor returns the storage key for a source.
func KeyFor(src session.Source) string {
	return KeyPrefix + string(src)
}

// Store persists snapshots under per-source keys plus the shared last slot.
type Store struct {
	kv  store.KV
	log *zap.Logger
}

// New creates a progress Store over kv.
func New(kv store.KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, log: logger.Named("progress")}
}

// Save writes snap to its source key and to the last slot. Both writes are
// attempted; the first failure is logged and returned as a *WriteError.
func (s *Store) Save(ctx context.Context, snap *session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	var firstErr error
	for _, key := range []string{KeyFor(snap.SourceKind), LastKey} {
		if err := s.kv.Set(ctx, key, string(data)); err != nil {
			s.log.Warn("progress write failed", zap.String("key", key), zap.Error(err))
			if firstErr == nil {
				firstErr = &WriteError{Key: key, Err: err}
			}
		}
	}
	return firstErr
}

// Load reads the snapshot stored under key. A missing key yields
// ErrNoSavedSession; undecodable content yields ErrInvalidSnapshot.
func (s *Store) Load(ctx context.Context, key string) (*session.Snapshot, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNoSavedSession
	}

	var snap session.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.log.Warn("corrupt progress entry", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, key, err)
	}
	if err := snap.Validate(); err != nil {
		s.log.Warn("invalid progress entry", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &snap, nil
}

// LoadFor reads the snapshot for src. An entry whose kind tag does not match
// src is rejected with ErrNoSavedSession.
func (s *Store) LoadFor(ctx context.Context, src session.Source) (*session.Snapshot, error) {
	snap, err := s.Load(ctx, KeyFor(src))
	if err != nil {
		return nil, err
	}
	if snap.SourceKind != src {
		s.log.Warn("progress kind mismatch",
			zap.String("want", string(src)),
			zap.String("got", string(snap.SourceKind)),
		)
		return nil, ErrNoSavedSession
	}
	return snap, nil
}

// LoadLast reads the most recently saved session of any source.
func (s *Store) LoadLast(ctx context.Context) (*session.Snapshot, error) {
	return s.Load(ctx, LastKey)
}

// Clear removes key.
func (s *Store) Clear(ctx context.Context, key string) error {
	if err := s.kv.Remove(ctx, key); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	return nil
}

// ClearSource removes the saved session for src, and the last slot when it
// holds the same source.
func (s *Store) ClearSource(ctx context.Context, src session.Source) error {
	if err := s.Clear(ctx, KeyFor(src)); err != nil {
		return err
	}
	last, err := s.LoadLast(ctx)
	if err != nil || last.SourceKind != src {
		return nil
	}
	return s.Clear(ctx, LastKey)
}

// Finish removes the entries for a completed session: its source key, and
// the last slot if it still belongs to sessionID.
func (s *Store) Finish(ctx context.Context, src session.Source, sessionID string) error {
	if err := s.Clear(ctx, KeyFor(src)); err != nil {
		return err
	}
	last, err := s.LoadLast(ctx)
	if err != nil {
		return nil
	}
	if last.SessionID == sessionID && last.SourceKind == src {
		return s.Clear(ctx, LastKey)
	}
	return nil
}

// ClearAll removes every progress entry.
func (s *Store) ClearAll(ctx context.Context) (int, error) {
	keys, err := s.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list progress: %w", err)
	}
	for i, k := range keys {
		if err := s.kv.Remove(ctx, k); err != nil {
			return i, fmt.Errorf("clear %s: %w", k, err)
		}
	}
	return len(keys), nil
}

// Entry summarizes one saved session for listing.
type Entry struct {
	Key       string
	Source    session.Source
	Attempted int
	Total     int
	Index     int
	Snapshot  *session.Snapshot
	Err       error // set when the entry is unreadable
}

// Label renders "attempted/total".
func (e Entry) Label() string {
	return fmt.Sprintf("%d/%d", e.Attempted, e.Total)
}

// List returns every per-source entry (the last slot is skipped). Unreadable
// entries are returned with Err set rather than failing the listing.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	keys, err := s.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	var out []Entry
	for _, k := range keys {
		if k == LastKey {
			continue
		}
		e := Entry{Key: k, Source: session.Source(strings.TrimPrefix(k, KeyPrefix))}
		snap, err := s.Load(ctx, k)
		if err != nil {
			e.Err = err
			out = append(out, e)
			continue
		}
		e.Snapshot = snap
		e.Attempted = snap.Attempted()
		e.Total = snap.ItemCount
		e.Index = snap.CurrentIndex
		out = append(out, e)
	}
	return out, nil
}

// Persister adapts the store to the session machine's write hook.
func (s *Store) Persister(ctx context.Context) session.PersistFunc {
	return func(snap *session.Snapshot) error {
		return s.Save(ctx, snap)
	}
}
