package server

import (
	"context"
	"sync"
	"time"

	"github.com/matst80/tyre-finder/pkg/binding"
	"github.com/matst80/tyre-finder/pkg/gallery"
)

// Session is the page state of one visitor. Controllers are created on first
// use and moved to a new catalog snapshot the next time the session is used.
type Session struct {
	mu        sync.Mutex
	engines   *binding.Engines
	finder    *binding.Finder
	sidebar   *binding.Sidebar
	table     *binding.Table
	galleries map[string]*gallery.Gallery
	lastSeen  time.Time
}

func newSession(e *binding.Engines) *Session {
	return &Session{
		engines:   e,
		galleries: make(map[string]*gallery.Gallery),
		lastSeen:  time.Now(),
	}
}

func (s *Session) rebind(ctx context.Context, e *binding.Engines) {
	if s.engines == e {
		return
	}
	s.engines = e
	if s.finder != nil {
		s.finder.Rebind(ctx, e)
	}
	if s.sidebar != nil {
		s.sidebar.Rebind(ctx, e)
	}
	if s.table != nil {
		s.table.Rebind(ctx, e)
	}
	clear(s.galleries)
}

func (s *Session) Finder() *binding.Finder {
	if s.finder == nil {
		s.finder = binding.NewFinder(s.engines)
	}
	return s.finder
}

func (s *Session) Sidebar(ctx context.Context) *binding.Sidebar {
	if s.sidebar == nil {
		s.sidebar = binding.NewSidebar(ctx, s.engines)
	}
	return s.sidebar
}

func (s *Session) Table(ctx context.Context) *binding.Table {
	if s.table == nil {
		s.table = binding.NewTable(ctx, s.engines)
	}
	return s.table
}

// Gallery returns the visitor's gallery for slug, loading it on first use.
func (s *Session) Gallery(ctx context.Context, slug string, loader *gallery.Loader) (*gallery.Gallery, error) {
	if g, ok := s.galleries[slug]; ok {
		return g, nil
	}
	g, err := loader.Load(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.galleries[slug] = g
	return g, nil
}

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (st *SessionStore) get(id string, e *binding.Engines) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		s = newSession(e)
		st.sessions[id] = s
		activeSessions.Set(float64(len(st.sessions)))
	}
	return s
}

// With runs fn holding the session lock, so one visitor's interactions are
// applied one at a time against the current snapshot.
func (st *SessionStore) With(ctx context.Context, id string, e *binding.Engines, fn func(s *Session) error) error {
	s := st.get(id, e)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.rebind(ctx, e)
	return fn(s)
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Prune drops sessions idle for longer than maxIdle and returns how many.
func (st *SessionStore) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if !s.mu.TryLock() {
			continue
		}
		if !s.lastSeen.After(cutoff) {
			delete(st.sessions, id)
			removed++
		}
		s.mu.Unlock()
	}
	activeSessions.Set(float64(len(st.sessions)))
	return removed
}

// StartPruning prunes every interval until ctx is done.
func (st *SessionStore) StartPruning(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.Prune(maxIdle)
			}
		}
	}()
}
