package store

import (
	"context"
	"sync"

	"github.com/simon020286/go-flow/models"
)

// MemoryStore keeps integrations in process memory
type MemoryStore struct {
	mu           sync.RWMutex
	integrations map[string]*models.Integration
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		integrations: make(map[string]*models.Integration),
	}
}

func (s *MemoryStore) UpdateOrCreate(_ context.Context, integration *models.Integration) (*models.Integration, error) {
	res, err := prepare(integration)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrations[res.ID] = res.Clone()
	return res, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	integration, ok := s.integrations[id]
	if !ok {
		return nil, ErrIntegrationNotFound
	}
	return integration.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*models.Integration, 0, len(s.integrations))
	for _, integration := range s.integrations {
		res = append(res, integration.Clone())
	}
	sortIntegrations(res)
	return res, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.integrations[id]; !ok {
		return ErrIntegrationNotFound
	}
	delete(s.integrations, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
