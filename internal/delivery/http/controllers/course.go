package controllers

import (
	"CourseLoom/internal/models"
	"CourseLoom/internal/service/course"
	"CourseLoom/pkg/logger"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CourseService interface {
	FetchCatalog(ctx context.Context, filter models.CatalogFilter, scope models.CatalogScope, page, pageSize int) (*models.CatalogPage, error)
	CourseByID(ctx context.Context, id uuid.UUID, scope models.CatalogScope) (*models.Course, error)
	CreateCourse(ctx context.Context, adminID uuid.UUID, input course.CourseInput) (*models.Course, error)
	UpdateCourse(ctx context.Context, id, adminID uuid.UUID, input course.CourseInput) (*models.Course, error)
	DeleteCourse(ctx context.Context, id, adminID uuid.UUID) (*models.Course, error)
	SearchCourses(ctx context.Context, query string, count, offset int) ([]models.Course, int, error)
	Subscribe(ctx context.Context, courseID, studentID uuid.UUID) error
	Unsubscribe(ctx context.Context, courseID, studentID uuid.UUID) error
	SubscriptionStatus(ctx context.Context, courseID, studentID uuid.UUID) (bool, error)
}

type CourseHandler struct {
	CourseService CourseService
	log           logger.Log
}

func NewCourseHandler(l logger.Log, courseService CourseService) *CourseHandler {
	return &CourseHandler{
		CourseService: courseService,
		log:           l,
	}
}

// Catalog serves the role-scoped course listing. Admins see their own courses
// regardless of status, everyone else sees only active ones.
func (h *CourseHandler) Catalog(c *gin.Context) {
	filter, err := parseCatalogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, pageSize, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scope := catalogScope(c)
	result, err := h.CourseService.FetchCatalog(c.Request.Context(), filter, scope, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", result)
}

// VisitorCatalog is the anonymous listing, always public visibility.
func (h *CourseHandler) VisitorCatalog(c *gin.Context) {
	filter, err := parseCatalogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter.Subscribed = false
	page, pageSize, err := parsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.CourseService.FetchCatalog(c.Request.Context(), filter, models.CatalogScope{}, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", result)
}

func (h *CourseHandler) CourseByID(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	result, err := h.CourseService.CourseByID(c.Request.Context(), courseID, catalogScope(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", result)
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	input, err := parseCourseForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.CourseService.CreateCourse(c.Request.Context(), adminID, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, "course created", created)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}
	input, err := parseCourseForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.CourseService.UpdateCourse(c.Request.Context(), courseID, adminID, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "course updated", updated)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	adminID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	deleted, err := h.CourseService.DeleteCourse(c.Request.Context(), courseID, adminID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "course deleted", deleted)
}

func (h *CourseHandler) SearchCourses(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	count, err := intQuery(c, "count", 10)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	courses, total, err := h.CourseService.SearchCourses(c.Request.Context(), query, count, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", gin.H{"courses": courses, "total": total})
}

func (h *CourseHandler) Subscribe(c *gin.Context) {
	studentID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	if err := h.CourseService.Subscribe(c.Request.Context(), courseID, studentID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "subscribed", nil)
}

func (h *CourseHandler) Unsubscribe(c *gin.Context) {
	studentID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	if err := h.CourseService.Unsubscribe(c.Request.Context(), courseID, studentID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "unsubscribed", nil)
}

func (h *CourseHandler) SubscriptionStatus(c *gin.Context) {
	studentID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	subscribed, err := h.CourseService.SubscriptionStatus(c.Request.Context(), courseID, studentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "ok", gin.H{"subscribed": subscribed})
}

func catalogScope(c *gin.Context) models.CatalogScope {
	userID, ok := clientID(c)
	if !ok {
		return models.CatalogScope{}
	}
	switch clientRole(c) {
	case models.RoleAdmin:
		return models.CatalogScope{AdminID: userID}
	case models.RoleStudent:
		return models.CatalogScope{StudentID: userID}
	default:
		return models.CatalogScope{}
	}
}

func parseCatalogFilter(c *gin.Context) (models.CatalogFilter, error) {
	filter := models.CatalogFilter{
		Title:      c.Query("title"),
		Difficulty: c.Query("difficulty"),
		Subscribed: c.Query("subscribed") == "true",
	}
	if raw := c.Query("category_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return models.CatalogFilter{}, err
			}
			filter.CategoryIDs = append(filter.CategoryIDs, id)
		}
	}
	return filter, nil
}

func parsePagination(c *gin.Context) (page, pageSize int, err error) {
	page, err = intQuery(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err = intQuery(c, "page_size", 10)
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func parseCourseForm(c *gin.Context) (course.CourseInput, error) {
	input := course.CourseInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Difficulty:  c.PostForm("difficulty"),
		Status:      c.PostForm("status"),
	}
	if raw := c.PostForm("category_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return course.CourseInput{}, err
			}
			input.CategoryIDs = append(input.CategoryIDs, id)
		}
	}

	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil
		}
		return course.CourseInput{}, err
	}
	upload, err := uploadFromHeader(header)
	if err != nil {
		return course.CourseInput{}, err
	}
	input.Image = upload
	return input, nil
}

func uploadFromHeader(header *multipart.FileHeader) (*models.FileUpload, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &models.FileUpload{
		Name:        header.Filename,
		Reader:      f,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}
