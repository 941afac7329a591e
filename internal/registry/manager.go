// Package registry hosts live game sessions for networked front ends.
//
// Each session is guarded by its own mutex, so commands against one session
// are serialised while different sessions proceed in parallel. Every state
// change is written through to a store.Store before it becomes visible.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/samarth-chess/internal/archive"
	"github.com/park285/samarth-chess/internal/board"
	"github.com/park285/samarth-chess/internal/fen"
	"github.com/park285/samarth-chess/internal/game"
	"github.com/park285/samarth-chess/internal/obslog"
	"github.com/park285/samarth-chess/internal/store"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Archiver receives transcripts of games that are reset or closed with at
// least one move played. *archive.Repository satisfies it.
type Archiver interface {
	SaveTranscript(ctx context.Context, t archive.Transcript) error
}

type Config struct {
	// MaxSessions caps sessions held in memory; 0 means unlimited.
	MaxSessions int
	Archiver    Archiver
	Filters     []game.Filter

	NewID func() string
	Now   func() time.Time
}

type Manager struct {
	store    store.Store
	archiver Archiver
	filters  []game.Filter
	max      int
	newID    func() string
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	subsMu sync.Mutex
	subs   map[string]map[*subscriber]struct{}
}

type entry struct {
	mu        sync.Mutex
	id        string
	sess      *game.Session
	version   int64
	createdAt time.Time
	startedAt time.Time
	touched   time.Time
	closed    bool
}

func New(st store.Store, cfg Config) *Manager {
	m := &Manager{
		store:    st,
		archiver: cfg.Archiver,
		filters:  cfg.Filters,
		max:      cfg.MaxSessions,
		newID:    cfg.NewID,
		now:      cfg.Now,
		sessions: make(map[string]*entry),
		subs:     make(map[string]map[*subscriber]struct{}),
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

func (m *Manager) sessionOptions(id string) []game.Option {
	return []game.Option{
		game.WithLogger(obslog.L().With(zap.String("session_id", id))),
		game.WithFilters(m.filters...),
	}
}

// Create starts a new session at the initial position.
func (m *Manager) Create(ctx context.Context) (string, game.View, error) {
	id := m.newID()
	now := m.now()
	e := &entry{
		id:        id,
		sess:      game.New(m.sessionOptions(id)...),
		createdAt: now,
		startedAt: now,
		touched:   now,
	}

	m.mu.Lock()
	if m.max > 0 && len(m.sessions) >= m.max {
		m.mu.Unlock()
		return "", game.View{}, ErrTooManySessions
	}
	m.sessions[id] = e
	e.mu.Lock()
	m.mu.Unlock()
	defer e.mu.Unlock()

	if err := m.persist(ctx, e); err != nil {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return "", game.View{}, err
	}
	obslog.L().Info("session_created", zap.String("session_id", id))
	return id, e.sess.View(), nil
}

// Get returns the current view, rehydrating the session from the store if
// it is not in memory.
func (m *Manager) Get(ctx context.Context, id string) (game.View, error) {
	var v game.View
	err := m.with(ctx, id, func(e *entry) (bool, bool, error) {
		v = e.sess.View()
		return false, false, nil
	})
	return v, err
}

// SelectOrMove forwards a click. Selection changes are published but not
// persisted; executed moves are both.
func (m *Manager) SelectOrMove(ctx context.Context, id string, sq board.Square) (game.Outcome, game.View, error) {
	var (
		out game.Outcome
		v   game.View
	)
	err := m.with(ctx, id, func(e *entry) (bool, bool, error) {
		var err error
		out, err = e.sess.SelectOrMove(sq)
		if err != nil {
			return false, false, err
		}
		v = e.sess.View()
		return out.Kind == game.Moved, out.Kind != game.Ignored, nil
	})
	if err != nil {
		return game.Outcome{}, game.View{}, err
	}
	return out, v, nil
}

// Move executes from -> to with full validation, bypassing selection.
func (m *Manager) Move(ctx context.Context, id string, from, to board.Square) (game.MoveRecord, game.View, error) {
	var (
		rec game.MoveRecord
		v   game.View
	)
	err := m.with(ctx, id, func(e *entry) (bool, bool, error) {
		var err error
		rec, err = e.sess.Move(from, to)
		if err != nil {
			return false, false, err
		}
		v = e.sess.View()
		return true, true, nil
	})
	if err != nil {
		return game.MoveRecord{}, game.View{}, err
	}
	return rec, v, nil
}

// Undo takes back the last move. ok is false when there was nothing to undo.
func (m *Manager) Undo(ctx context.Context, id string) (bool, game.View, error) {
	var (
		ok bool
		v  game.View
	)
	err := m.with(ctx, id, func(e *entry) (bool, bool, error) {
		ok = e.sess.Undo()
		v = e.sess.View()
		return ok, ok, nil
	})
	return ok, v, err
}

// Reset archives the current game if it has moves, then starts over.
func (m *Manager) Reset(ctx context.Context, id string) (game.View, error) {
	var v game.View
	err := m.with(ctx, id, func(e *entry) (bool, bool, error) {
		m.archive(ctx, e, "reset")
		e.sess.Reset()
		e.startedAt = m.now()
		v = e.sess.View()
		return true, true, nil
	})
	return v, err
}

// FlipView toggles the display orientation.
func (m *Manager) FlipView(ctx context.Context, id string) (game.View, error) {
	var v game.View
	err := m.with(ctx, id, func(e *entry) (bool, bool, error) {
		e.sess.FlipView()
		v = e.sess.View()
		return true, true, nil
	})
	return v, err
}

// LoadFEN replaces the position with a decoded FEN.
func (m *Manager) LoadFEN(ctx context.Context, id, s string) (game.View, error) {
	pos, err := fen.Decode(s)
	if err != nil {
		return game.View{}, err
	}
	var v game.View
	err = m.with(ctx, id, func(e *entry) (bool, bool, error) {
		e.sess.Load(pos.Board, pos.Turn, pos.Castling, pos.EnPassant)
		e.startedAt = m.now()
		v = e.sess.View()
		return true, true, nil
	})
	return v, err
}

// FEN encodes the current position.
func (m *Manager) FEN(ctx context.Context, id string) (string, error) {
	var out string
	err := m.with(ctx, id, func(e *entry) (bool, bool, error) {
		out = sessionFEN(e.sess)
		return false, false, nil
	})
	return out, err
}

// Close archives and removes a session everywhere. Subscribers are closed.
func (m *Manager) Close(ctx context.Context, id string) error {
	e, err := m.lookup(ctx, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrSessionNotFound
	}
	m.archive(ctx, e, "closed")
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	e.closed = true
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	m.closeSubscribers(id)
	obslog.L().Info("session_closed", zap.String("session_id", id))
	return nil
}

// Len is the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict drops a session from memory. It stays in the store and is
// rehydrated on next use.
func (m *Manager) Evict(id string) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
	}
}

// Sweep evicts sessions untouched for longer than idle that have no
// subscribers, returning how many were dropped.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	var stale []string
	for _, e := range entries {
		e.mu.Lock()
		if e.touched.Before(cutoff) && !m.hasSubscribers(e.id) {
			stale = append(stale, e.id)
		}
		e.mu.Unlock()
	}
	for _, id := range stale {
		m.Evict(id)
	}
	if len(stale) > 0 {
		obslog.L().Info("session_sweep", zap.Int("evicted", len(stale)))
	}
	return len(stale)
}

// with runs fn under the session lock. fn reports whether the persistent
// state changed and whether subscribers should be notified.
func (m *Manager) with(ctx context.Context, id string, fn func(e *entry) (persist, publish bool, err error)) error {
	for attempt := 0; attempt < 2; attempt++ {
		e, err := m.lookup(ctx, id)
		if err != nil {
			return err
		}
		e.mu.Lock()
		if e.closed {
			// evicted between lookup and lock
			e.mu.Unlock()
			continue
		}
		err = m.apply(ctx, e, fn)
		e.mu.Unlock()
		return err
	}
	return fmt.Errorf("session %s: %w", id, store.ErrConcurrentUpdate)
}

// apply must be called with e.mu held.
func (m *Manager) apply(ctx context.Context, e *entry, fn func(e *entry) (bool, bool, error)) error {
	before := e.sess.Snapshot()
	startedAt := e.startedAt
	persist, publish, err := fn(e)
	if err != nil {
		return err
	}
	e.touched = m.now()
	if persist {
		if err := m.persist(ctx, e); err != nil {
			m.rollback(ctx, e, before, startedAt, err)
			return err
		}
	}
	if publish {
		m.publish(e.id, e.sess.View())
	}
	return nil
}

func (m *Manager) persist(ctx context.Context, e *entry) error {
	rec := &store.Record{
		ID:        e.id,
		Version:   e.version + 1,
		CreatedAt: e.createdAt,
		StartedAt: e.startedAt,
		UpdatedAt: m.now(),
		Session:   e.sess.Snapshot(),
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return err
	}
	e.version = rec.Version
	return nil
}

// rollback undoes an unsaved change. After a version conflict the entry is
// reloaded from the store so the next command sees the winning write.
func (m *Manager) rollback(ctx context.Context, e *entry, before game.Snapshot, startedAt time.Time, cause error) {
	obslog.L().Warn("session_persist_failed", zap.String("session_id", e.id), zap.Error(cause))
	if errors.Is(cause, store.ErrConcurrentUpdate) {
		if rec, err := m.store.Load(ctx, e.id); err == nil {
			if sess, rerr := game.Restore(rec.Session, m.sessionOptions(e.id)...); rerr == nil {
				e.sess = sess
				e.version = rec.Version
				e.startedAt = rec.StartedAt
				return
			}
		}
	}
	if sess, err := game.Restore(before, m.sessionOptions(e.id)...); err == nil {
		e.sess = sess
		e.startedAt = startedAt
	}
}

func (m *Manager) lookup(ctx context.Context, id string) (*entry, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return e, nil
	}

	rec, err := m.store.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	sess, err := game.Restore(rec.Session, m.sessionOptions(id)...)
	if err != nil {
		return nil, fmt.Errorf("rehydrate %s: %w", id, err)
	}
	loaded := &entry{
		id:        id,
		sess:      sess,
		version:   rec.Version,
		createdAt: rec.CreatedAt,
		startedAt: rec.StartedAt,
		touched:   m.now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	if m.max > 0 && len(m.sessions) >= m.max {
		return nil, ErrTooManySessions
	}
	m.sessions[id] = loaded
	obslog.L().Info("session_rehydrated", zap.String("session_id", id), zap.Int64("version", rec.Version))
	return loaded, nil
}

// archive must be called with e.mu held. Failures are logged only.
func (m *Manager) archive(ctx context.Context, e *entry, reason string) {
	if m.archiver == nil || e.sess.HistoryLen() == 0 {
		return
	}
	t := archive.Transcript{
		SessionID: e.id,
		Moves:     e.sess.Moves(),
		FinalFEN:  sessionFEN(e.sess),
		Reason:    reason,
		StartedAt: e.startedAt,
		EndedAt:   m.now(),
	}
	if err := m.archiver.SaveTranscript(ctx, t); err != nil {
		obslog.L().Warn("session_archive_failed", zap.String("session_id", e.id), zap.Error(err))
		return
	}
	obslog.L().Info("session_archived", zap.String("session_id", e.id), zap.String("reason", reason), zap.Int("moves", len(t.Moves)))
}

func sessionFEN(s *game.Session) string {
	return fen.Encode(fen.Input{
		Board:     s.Board(),
		Turn:      s.Turn(),
		Castling:  s.Castling(),
		EnPassant: s.EnPassant(),
		Plies:     s.HistoryLen(),
	})
}
