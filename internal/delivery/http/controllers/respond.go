package controllers

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"message": message, "data": data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"message": message, "data": data})
}

// respondError translates service sentinels to status codes. Anything not in
// the taxonomy is a 500 and gets logged with the request path.
func respondError(c *gin.Context, log logger.Log, err error) {
	switch {
	case errors.Is(err, app_errors.ErrCourseNotFound),
		errors.Is(err, app_errors.ErrCategoryNotFound),
		errors.Is(err, app_errors.ErrSectionNotFound),
		errors.Is(err, app_errors.ErrFileNotFound),
		errors.Is(err, app_errors.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotFileOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrInvalidPagination),
		errors.Is(err, app_errors.ErrInvalidDifficulty),
		errors.Is(err, app_errors.ErrInvalidStatus),
		errors.Is(err, app_errors.ErrSectionCycle),
		errors.Is(err, app_errors.ErrSectionHasChildren),
		errors.Is(err, app_errors.ErrCrossCourseParent),
		errors.Is(err, app_errors.ErrNotImage),
		errors.Is(err, app_errors.ErrFileSize),
		errors.Is(err, app_errors.ErrIncorrectPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrUserExists),
		errors.Is(err, app_errors.ErrCategoryExists),
		errors.Is(err, app_errors.ErrAlreadySubscribed),
		errors.Is(err, app_errors.ErrNotSubscribed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.ErrorErr("request failed", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
