package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studio/internal/models"
)

func invalidStage() error {
	return fmt.Errorf("Invalid stage. Must be one of: %s", models.StageNames())
}

// bindContent decodes and checks a content payload.
func (s *Server) bindContent(c *gin.Context) (models.ContentInput, bool) {
	var req models.ContentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return req, false
	}
	if strings.TrimSpace(req.Title) == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("title is required"))
		return req, false
	}
	if req.Stage != "" && !req.Stage.Valid() {
		s.respondError(c, http.StatusBadRequest, invalidStage())
		return req, false
	}
	return req, true
}

// handleListContent returns every content item, optionally only those due
// today or within the week (?due_filter=today|week).
func (s *Server) handleListContent(c *gin.Context) {
	filter, err := models.ParseDueFilter(c.Query("due_filter"))
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	items, err := s.store.ListContentItems(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if filter != models.DueAny {
		now := time.Now()
		kept := make([]models.ContentItem, 0, len(items))
		for _, item := range items {
			if filter.Match(item.TargetReleaseDate, now) {
				kept = append(kept, item)
			}
		}
		items = kept
	}
	respondSuccess(c, http.StatusOK, gin.H{"items": items})
}

// handleCreateContent inserts a new content item.
func (s *Server) handleCreateContent(c *gin.Context) {
	req, ok := s.bindContent(c)
	if !ok {
		return
	}

	item, err := s.store.CreateContentItem(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"item": item})
}

func (s *Server) handleGetContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := s.store.GetContentItem(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"item": item})
}

// handleUpdateStage moves an item to the stage given in the query string.
func (s *Server) handleUpdateStage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	stage := models.Stage(c.Query("stage"))
	if !stage.Valid() {
		s.respondError(c, http.StatusBadRequest, invalidStage())
		return
	}

	item, err := s.store.UpdateContentStage(c.Request.Context(), id, stage)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"item": item})
}

// handleUpdateContent replaces the writable fields of an item.
func (s *Server) handleUpdateContent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, ok := s.bindContent(c)
	if !ok {
		return
	}

	item, err := s.store.UpdateContentItem(c.Request.Context(), id, req)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"item": item})
}

func (s *Server) handleContentHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	history, err := s.store.ListHistory(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"history": history})
}
