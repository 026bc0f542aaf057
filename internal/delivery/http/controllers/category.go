package controllers

import (
	"CourseLoom/internal/models"
	"CourseLoom/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, title string) (*models.Category, error)
	Rename(ctx context.Context, id uuid.UUID, title string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryHandler struct {
	CategoryService CategoryService
	log             logger.Log
}

func NewCategoryHandler(l logger.Log, categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{
		CategoryService: categoryService,
		log:             l,
	}
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.CategoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", categories)
}

type categoryRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var input categoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.CategoryService.Create(c.Request.Context(), input.Title)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, "category created", category)
}

func (h *CategoryHandler) Rename(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}
	var input categoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.CategoryService.Rename(c.Request.Context(), categoryID, input.Title); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "category renamed", nil)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}

	if err := h.CategoryService.Delete(c.Request.Context(), categoryID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "category deleted", nil)
}
