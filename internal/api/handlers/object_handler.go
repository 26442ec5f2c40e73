package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/bizdir-ops/internal/service"
)

type ObjectHandler struct {
	uploadService *service.UploadService
	tempDir       string
}

// NewObjectHandler stages multipart uploads under tempDir before pushing them
// to the bucket. An empty tempDir uses the OS default.
func NewObjectHandler(uploadService *service.UploadService, tempDir string) *ObjectHandler {
	return &ObjectHandler{uploadService: uploadService, tempDir: tempDir}
}

// UploadObject handles a multipart form with a "file" part and an optional
// "destination" field.
func (h *ObjectHandler) UploadObject(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	destination := strings.TrimPrefix(strings.TrimSpace(c.PostForm("destination")), "/")
	if destination == "" {
		destination = filepath.Base(file.Filename)
	}

	staging, err := os.MkdirTemp(h.tempDir, "bizops-upload-")
	if err != nil {
		errorResponse(c, err)
		return
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			log.Warn().Err(err).Str("dir", staging).Msg("failed to remove staging dir")
		}
	}()

	localPath := filepath.Join(staging, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save uploaded file"})
		return
	}

	if err := h.uploadService.Upload(c.Request.Context(), localPath, destination); err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"destination": destination,
		"size":        file.Size,
	})
}
