package server

import (
	"github.com/simon020286/go-flow/catalog"
	"github.com/simon020286/go-flow/config"
	"github.com/simon020286/go-flow/models"
)

type (
	// ErrorResponse is the body of every failed request
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}

	HealthResponse struct {
		Service string `json:"service"`
		Status  string `json:"status"`
		Loaded  bool   `json:"loaded"`
	}

	CatalogResponse struct {
		Steps []catalog.StepKindDescriptor `json:"steps"`
		Count int                          `json:"count"`
	}

	ConnectorsResponse struct {
		Connectors []*config.ConnectorDefinition `json:"connectors"`
		Count      int                           `json:"count"`
	}

	IntegrationsResponse struct {
		Integrations []*models.Integration `json:"integrations"`
		Count        int                   `json:"count"`
	}

	// CommandResponse reports the applied command and the resulting
	// document
	CommandResponse struct {
		Kind        models.EventType    `json:"kind"`
		Integration *models.Integration `json:"integration,omitempty"`
	}

	SaveResponse struct {
		ID          string              `json:"id"`
		Integration *models.Integration `json:"integration"`
	}

	ValidationResponse struct {
		Position int    `json:"position"`
		Valid    bool   `json:"valid"`
		Error    string `json:"error,omitempty"`
	}
)
