package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// handleListFiles lists vault files, optionally filtered by extension.
func (s *Server) handleListFiles(c *gin.Context) {
	files, err := s.files.List(c.Query("file_type"))
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"files": files})
}

// handleUploadFile stores the multipart field "file" in the uploads directory.
func (s *Server) handleUploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("file is required: %w", err))
		return
	}

	src, err := header.Open()
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	defer src.Close()

	info, err := s.files.Save(filepath.Base(header.Filename), src)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"file": info})
}

// handleDownloadFile sends a stored file as an attachment.
func (s *Server) handleDownloadFile(c *gin.Context) {
	name := c.Param("filename")
	path, err := s.files.Path(name)
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	c.FileAttachment(path, name)
}

// handleDeleteFile removes a stored file.
func (s *Server) handleDeleteFile(c *gin.Context) {
	if err := s.files.Delete(c.Param("filename")); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
