package controllers

import (
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FileService interface {
	Create(ctx context.Context, adminID uuid.UUID, kind string, upload models.FileUpload) (*models.File, error)
	Files(ctx context.Context, adminID uuid.UUID) ([]models.File, error)
	Replace(ctx context.Context, fileID, adminID uuid.UUID, kind string, upload models.FileUpload) (*models.File, error)
	Delete(ctx context.Context, fileID, adminID uuid.UUID, kind string) (*models.File, error)
	Render(ctx context.Context, fileID uuid.UUID) ([]byte, string, error)
	PresignedURL(ctx context.Context, fileID uuid.UUID) (string, error)
}

type FileHandler struct {
	FileService FileService
	log         logger.Log
}

func NewFileHandler(l logger.Log, fileService FileService) *FileHandler {
	return &FileHandler{
		FileService: fileService,
		log:         l,
	}
}

func (h *FileHandler) List(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	files, err := h.FileService.Files(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", files)
}

func (h *FileHandler) Create(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	upload, err := uploadFromHeader(header)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.FileService.Create(c.Request.Context(), adminID, models.FileKindImage, *upload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, "file created", created)
}

func (h *FileHandler) Replace(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	fileID, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file_id"})
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	upload, err := uploadFromHeader(header)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	replaced, err := h.FileService.Replace(c.Request.Context(), fileID, adminID, models.FileKindImage, *upload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "file replaced", replaced)
}

func (h *FileHandler) Delete(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	fileID, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file_id"})
		return
	}

	deleted, err := h.FileService.Delete(c.Request.Context(), fileID, adminID, models.FileKindImage)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "file deleted", deleted)
}

// Render streams the blob back with its stored content type. No ownership
// check, file ids are unguessable.
func (h *FileHandler) Render(c *gin.Context) {
	fileID, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file_id"})
		return
	}

	data, contentType, err := h.FileService.Render(c.Request.Context(), fileID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// Link returns a presigned URL for the blob, letting the client fetch the
// bytes from object storage directly.
func (h *FileHandler) Link(c *gin.Context) {
	fileID, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file_id"})
		return
	}

	link, err := h.FileService.PresignedURL(c.Request.Context(), fileID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", gin.H{"url": link})
}
