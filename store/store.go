package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/simon020286/go-flow/models"
)

// Store persists integrations. UpdateOrCreate assigns an id to
// integrations that have none and returns the stored copy
type Store interface {
	UpdateOrCreate(ctx context.Context, integration *models.Integration) (*models.Integration, error)
	Get(ctx context.Context, id string) (*models.Integration, error)
	List(ctx context.Context) ([]*models.Integration, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

var (
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrNilIntegration      = errors.New("integration is nil")
)

// prepare returns the copy to store, with an id assigned
func prepare(integration *models.Integration) (*models.Integration, error) {
	if integration == nil {
		return nil, ErrNilIntegration
	}
	res := integration.Clone()
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	return res, nil
}

func encode(integration *models.Integration) ([]byte, error) {
	data, err := json.Marshal(integration)
	if err != nil {
		return nil, fmt.Errorf("failed to encode integration %s: %w", integration.ID, err)
	}
	return data, nil
}

func decode(data []byte) (*models.Integration, error) {
	var res models.Integration
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode integration: %w", err)
	}
	res.Steps = models.FilterSteps(res.Steps)
	return &res, nil
}

// sortIntegrations orders by name, then id
func sortIntegrations(list []*models.Integration) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}
