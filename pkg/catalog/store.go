package catalog

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Store holds the current snapshot. Reload swaps it as a whole so readers
// never see a half loaded catalog.
type Store struct {
	source    Source
	current   atomic.Pointer[Catalog]
	mu        sync.Mutex
	listeners []func(*Catalog)
}

func NewStore(source Source) *Store {
	return &Store{source: source}
}

// NewStaticStore serves a catalog that was loaded elsewhere.
func NewStaticStore(c *Catalog) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

func (s *Store) Get() *Catalog {
	return s.current.Load()
}

// OnChange registers fn to run after every successful reload.
func (s *Store) OnChange(fn func(*Catalog)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload loads a new snapshot. On error the previous snapshot stays, an empty
// result is only kept when there was nothing loaded before.
func (s *Store) Reload(ctx context.Context) (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return s.Get(), nil
	}
	c, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(c.Products) == 0 && len(c.Rows) == 0 {
		log.Warnf("No products found in %s", s.source)
		if s.Get() == nil {
			s.current.Store(c)
		}
		return c, ErrNoProducts
	}
	s.current.Store(c)
	log.Infof("Loaded %d products and %d table rows from %s", len(c.Products), len(c.Rows), c.Source)
	for _, fn := range s.listeners {
		fn(c)
	}
	return c, nil
}
