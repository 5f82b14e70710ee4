package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	flow "github.com/simon020286/go-flow"
	"github.com/simon020286/go-flow/connectors"
	"github.com/simon020286/go-flow/store"
)

const serviceName = "go-flow"

// Server exposes an Editor over HTTP
type Server struct {
	editor   *flow.Editor
	store    store.Store
	registry *connectors.Registry
	logger   *slog.Logger
	mu       sync.Mutex
}

var (
	ErrInvalidJSON     = errors.New("invalid JSON request")
	ErrInvalidPosition = errors.New("position must be an integer")
	ErrNoIntegration   = errors.New("no integration loaded")
	ErrConnectorLookup = errors.New("connector not found")
	ErrListIntegration = errors.New("failed to list integrations")
	ErrGetIntegration  = errors.New("failed to get integration")
	ErrSaveIntegration = errors.New("failed to save integration")
)

// NewServer creates the HTTP API over editor. st backs the list and edit
// endpoints and should be the store the editor saves to. A nil registry
// selects the process-wide connector registry
func NewServer(
	editor *flow.Editor, st store.Store, reg *connectors.Registry,
) *Server {
	if reg == nil {
		reg = connectors.Default()
	}
	return &Server{
		editor:   editor,
		store:    st,
		registry: reg,
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger used by the request log middleware
func (s *Server) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(_ *gin.Context, _ *slog.Logger) *slog.Logger {
			return s.logger
		}),
	))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)
	router.GET("/catalog", s.listStepKinds)

	conns := router.Group("/connectors")
	{
		conns.GET("", s.listConnectors)
		conns.GET("/:connectorID", s.getConnector)
	}

	router.GET("/integrations", s.listIntegrations)
	router.POST("/integrations/:integrationID/edit", s.editIntegration)
	router.DELETE("/integrations/:integrationID", s.deleteIntegration)

	edit := router.Group("/integration")
	{
		edit.GET("", s.getIntegration)
		edit.PUT("", s.loadIntegration)
		edit.POST("/commands", s.applyCommand)
		edit.POST("/save", s.saveIntegration)

		edit.GET("/steps/:position/kinds", s.visibleStepKinds)
		edit.GET("/steps/:position/validate", s.validateStep)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Service: serviceName,
		Status:  "healthy",
		Loaded:  s.editor.IsLoaded(),
	})
}

func positionParam(c *gin.Context) (int, bool) {
	pos, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, ErrInvalidPosition, err)
		return 0, false
	}
	return pos, true
}

func errorJSON(c *gin.Context, status int, err error, cause error) {
	msg := err.Error()
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}
	c.JSON(status, ErrorResponse{
		Error:  msg,
		Status: status,
	})
}
