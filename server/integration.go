package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	flow "github.com/simon020286/go-flow"
	"github.com/simon020286/go-flow/logging"
	"github.com/simon020286/go-flow/models"
	"github.com/simon020286/go-flow/store"
)

func (s *Server) getIntegration(c *gin.Context) {
	integration := s.editor.Integration()
	if integration == nil {
		errorJSON(c, http.StatusNotFound, ErrNoIntegration, nil)
		return
	}
	c.JSON(http.StatusOK, integration)
}

func (s *Server) loadIntegration(c *gin.Context) {
	var integration models.Integration
	if err := c.ShouldBindJSON(&integration); err != nil {
		errorJSON(c, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}

	s.mu.Lock()
	s.editor.Load(&integration)
	s.editor.Flush()
	s.mu.Unlock()

	c.JSON(http.StatusOK, s.editor.Integration())
}

func (s *Server) listIntegrations(c *gin.Context) {
	list, err := s.store.List(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, ErrListIntegration, err)
		return
	}
	c.JSON(http.StatusOK, IntegrationsResponse{
		Integrations: list,
		Count:        len(list),
	})
}

// editIntegration loads a stored integration into the editor
func (s *Server) editIntegration(c *gin.Context) {
	id := c.Param("integrationID")
	integration, err := s.store.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrIntegrationNotFound) {
		errorJSON(c, http.StatusNotFound, err, nil)
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, ErrGetIntegration, err)
		return
	}

	s.mu.Lock()
	s.editor.Load(integration)
	s.editor.Flush()
	s.mu.Unlock()

	c.JSON(http.StatusOK, s.editor.Integration())
}

func (s *Server) deleteIntegration(c *gin.Context) {
	id := c.Param("integrationID")
	err := s.store.Delete(c.Request.Context(), id)
	if errors.Is(err, store.ErrIntegrationNotFound) {
		errorJSON(c, http.StatusNotFound, err, nil)
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, ErrGetIntegration, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// applyCommand decodes one editor command and dispatches it. A save
// command is routed to the save endpoint so the caller gets its result
func (s *Server) applyCommand(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		errorJSON(c, http.StatusBadRequest, ErrInvalidJSON, err)
		return
	}

	cmd, err := models.DecodeCommand(data)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err, nil)
		return
	}
	if _, ok := cmd.(models.Save); ok {
		s.saveIntegration(c)
		return
	}

	s.mu.Lock()
	s.editor.Dispatch(cmd)
	s.mu.Unlock()

	c.JSON(http.StatusOK, CommandResponse{
		Kind:        cmd.Kind(),
		Integration: s.editor.Integration(),
	})
}

// saveIntegration waits for the save to finish. A new integration adopts
// the id assigned by the store
func (s *Server) saveIntegration(c *gin.Context) {
	var res flow.SaveResult
	select {
	case res = <-s.editor.Save(c.Request.Context()):
	case <-c.Request.Context().Done():
		errorJSON(c, http.StatusServiceUnavailable,
			ErrSaveIntegration, c.Request.Context().Err())
		return
	}

	if errors.Is(res.Err, models.ErrNoIntegration) {
		errorJSON(c, http.StatusConflict, res.Err, nil)
		return
	}
	if res.Err != nil {
		errorJSON(c, http.StatusInternalServerError, ErrSaveIntegration, res.Err)
		return
	}

	s.mu.Lock()
	if current := s.editor.Integration(); current != nil && current.ID == "" {
		s.editor.Dispatch(models.SetProperty{
			Property: flow.PropertyID,
			Value:    res.Integration.ID,
		})
	}
	s.mu.Unlock()

	s.logger.Info("Integration saved",
		logging.SaveID(res.ID),
		logging.IntegrationID(res.Integration.ID))

	c.JSON(http.StatusOK, SaveResponse{
		ID:          res.ID,
		Integration: res.Integration,
	})
}
