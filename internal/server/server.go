package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studio/internal/models"
	"studio/internal/storage/sqlite"
	"studio/internal/vault"
)

const requestIDHeader = "X-Request-ID"

// ContentStore is the persistence used by the content handlers.
type ContentStore interface {
	ListContentItems(ctx context.Context) ([]models.ContentItem, error)
	GetContentItem(ctx context.Context, id int64) (models.ContentItem, error)
	CreateContentItem(ctx context.Context, input models.ContentInput) (models.ContentItem, error)
	UpdateContentStage(ctx context.Context, id int64, stage models.Stage) (models.ContentItem, error)
	UpdateContentItem(ctx context.Context, id int64, input models.ContentInput) (models.ContentItem, error)
	ListHistory(ctx context.Context, id int64) ([]models.HistoryEntry, error)
}

// Server provides HTTP handlers for the content task API.
type Server struct {
	engine    *gin.Engine
	store     ContentStore
	files     *vault.Vault
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured. A
// nil vault disables the file routes.
func New(store ContentStore, files *vault.Vault, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:    router,
		store:     store,
		files:     files,
		logger:    logger,
		staticDir: staticDir,
	}
	router.Use(srv.requestLogger())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		content := api.Group("/tasks/content")
		{
			content.GET("", s.handleListContent)
			content.POST("", s.handleCreateContent)
			content.GET(":id", s.handleGetContent)
			content.PUT(":id", s.handleUpdateStage)
			content.PATCH(":id", s.handleUpdateContent)
			content.GET(":id/history", s.handleContentHistory)
		}

		if s.files != nil {
			files := api.Group("/files")
			{
				files.GET("", s.handleListFiles)
				files.POST("", s.handleUploadFile)
				files.GET(":filename", s.handleDownloadFile)
				files.DELETE(":filename", s.handleDeleteFile)
			}
		}
	}

	s.mountStatic()
}

// requestLogger tags each request with an id and logs it once it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Warn("request", attrs...)
			return
		}
		s.logger.Debug("request", attrs...)
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// statusFor maps store and vault errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sqlite.ErrNotFound), errors.Is(err, vault.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sqlite.ErrInvalid), errors.Is(err, vault.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("request_id", c.GetString("request_id")),
			slog.String("error", err.Error()),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
