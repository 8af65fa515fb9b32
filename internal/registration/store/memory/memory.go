// Package memory implementa store.Repository en memoria.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/earlyaccess/internal/registration/store"
)

// Store guarda inscripciones en mapas protegidos por un RWMutex.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*store.Registration
	byEmail map[string]string
}

// New crea un Store vacío.
func New() *Store {
	return &Store{
		byID:    make(map[string]*store.Registration),
		byEmail: make(map[string]string),
	}
}

var _ store.Repository = (*Store)(nil)

func (s *Store) Create(_ context.Context, r *store.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[r.Email]; ok {
		return store.ErrConflict
	}
	cp := clone(r)
	s.byID[r.ID] = cp
	s.byEmail[r.Email] = r.ID
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*store.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(r), nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*store.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *Store) MarkConfirmed(_ context.Context, id string, at time.Time) (*store.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if r.Status != store.StatusConfirmed {
		r.Status = store.StatusConfirmed
		t := at
		r.ConfirmedAt = &t
	}
	return clone(r), nil
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// Len devuelve la cantidad de inscripciones (tests / métricas).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func clone(r *store.Registration) *store.Registration {
	cp := *r
	if r.ConfirmedAt != nil {
		t := *r.ConfirmedAt
		cp.ConfirmedAt = &t
	}
	return &cp
}
