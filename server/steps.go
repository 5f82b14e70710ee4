package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listStepKinds(c *gin.Context) {
	kinds := s.editor.Catalog().Steps()
	c.JSON(http.StatusOK, CatalogResponse{
		Steps: kinds,
		Count: len(kinds),
	})
}

func (s *Server) visibleStepKinds(c *gin.Context) {
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	kinds := s.editor.VisibleStepKinds(pos)
	c.JSON(http.StatusOK, CatalogResponse{
		Steps: kinds,
		Count: len(kinds),
	})
}

func (s *Server) validateStep(c *gin.Context) {
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	if s.editor.Integration() == nil {
		errorJSON(c, http.StatusNotFound, ErrNoIntegration, nil)
		return
	}

	res := ValidationResponse{Position: pos, Valid: true}
	if err := s.editor.ValidateStep(pos); err != nil {
		res.Valid = false
		res.Error = err.Error()
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) listConnectors(c *gin.Context) {
	res := ConnectorsResponse{}
	for _, id := range s.registry.List() {
		if def, ok := s.registry.Get(id); ok {
			res.Connectors = append(res.Connectors, def)
		}
	}
	res.Count = len(res.Connectors)
	c.JSON(http.StatusOK, res)
}

func (s *Server) getConnector(c *gin.Context) {
	id := c.Param("connectorID")
	def, ok := s.registry.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:  ErrConnectorLookup.Error() + ": " + id,
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, def)
}
