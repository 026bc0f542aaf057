package controllers

import (
	"CourseLoom/internal/models"
	"CourseLoom/internal/service/section"
	"CourseLoom/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SectionService interface {
	Insert(ctx context.Context, adminID uuid.UUID, input section.SectionInput) (*models.Section, error)
	Move(ctx context.Context, adminID, sectionID uuid.UUID, newParentID *uuid.UUID) error
	Delete(ctx context.Context, adminID, sectionID uuid.UUID, cascade bool) error
	SectionByID(ctx context.Context, sectionID uuid.UUID) (*models.Section, error)
	Descendants(ctx context.Context, sectionID uuid.UUID) ([]models.Section, error)
	Ancestors(ctx context.Context, sectionID uuid.UUID) ([]models.Section, error)
}

type SectionHandler struct {
	SectionService SectionService
	log            logger.Log
}

func NewSectionHandler(l logger.Log, sectionService SectionService) *SectionHandler {
	return &SectionHandler{
		SectionService: sectionService,
		log:            l,
	}
}

type newSectionRequest struct {
	CourseID    uuid.UUID  `json:"course_id" binding:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Title       string     `json:"title" binding:"required"`
	Objective   string     `json:"objective"`
	Duration    int        `json:"duration"`
	Kind        string     `json:"kind"`
	QuizContent *string    `json:"quiz_content"`
}

func (h *SectionHandler) Insert(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var input newSectionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.SectionService.Insert(c.Request.Context(), adminID, section.SectionInput{
		CourseID:    input.CourseID,
		ParentID:    input.ParentID,
		Title:       input.Title,
		Objective:   input.Objective,
		Duration:    input.Duration,
		Kind:        input.Kind,
		QuizContent: input.QuizContent,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, "section created", created)
}

type moveSectionRequest struct {
	NewParentID *uuid.UUID `json:"new_parent_id"`
}

func (h *SectionHandler) Move(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	sectionID, err := uuid.Parse(c.Param("section_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section_id"})
		return
	}
	var input moveSectionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.SectionService.Move(c.Request.Context(), adminID, sectionID, input.NewParentID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "section moved", nil)
}

func (h *SectionHandler) Delete(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	sectionID, err := uuid.Parse(c.Param("section_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section_id"})
		return
	}
	cascade := c.Query("cascade") == "true"

	if err := h.SectionService.Delete(c.Request.Context(), adminID, sectionID, cascade); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "section deleted", nil)
}

func (h *SectionHandler) SectionByID(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("section_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section_id"})
		return
	}

	result, err := h.SectionService.SectionByID(c.Request.Context(), sectionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", result)
}

func (h *SectionHandler) Descendants(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("section_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section_id"})
		return
	}

	sections, err := h.SectionService.Descendants(c.Request.Context(), sectionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", sections)
}

func (h *SectionHandler) Ancestors(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("section_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section_id"})
		return
	}

	sections, err := h.SectionService.Ancestors(c.Request.Context(), sectionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", sections)
}
