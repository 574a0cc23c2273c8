package repository

import (
	"context"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var _ domain.StateRepository = (*InMemoryStateRepository)(nil)

type InMemoryStateRepository struct {
	state *domain.State
	saves int

	mu sync.RWMutex
}

func NewInMemoryStateRepository() *InMemoryStateRepository {
	return &InMemoryStateRepository{}
}

func (r *InMemoryStateRepository) Load(ctx context.Context) (*domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == nil {
		r.state = domain.NewState(time.Now())
	}
	return r.state.Clone(), nil
}

func (r *InMemoryStateRepository) Save(ctx context.Context, s *domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = s.Clone()
	r.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (r *InMemoryStateRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
