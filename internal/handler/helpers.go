package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/middleware"
	"github.com/ratingtales/rating-tales/internal/service"
	"github.com/ratingtales/rating-tales/internal/upload"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

// currentUserID returns the authenticated user bound by the session gate.
func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(middleware.ContextUserID).(uuid.UUID)
}

// sessionID returns the request's session ID set by the session middleware.
func sessionID(c *gin.Context) string {
	return c.GetString(middleware.ContextSessionID)
}

// respondServiceError maps service/upload sentinels onto HTTP statuses.
// Unrecognized errors are logged with detail and surfaced generically.
func respondServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrNothingToUpdate),
		errors.Is(err, upload.ErrInvalidType),
		errors.Is(err, upload.ErrTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMovieNotFound), errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Log.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
	}
}

// parseMovieID reads the :id route parameter.
func parseMovieID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie ID"})
		return uuid.Nil, false
	}
	return id, true
}

// readFormFile loads one optional multipart file into memory along with its
// declared content type. Returns nil when the field is absent.
func readFormFile(c *gin.Context, field string) (*service.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &service.FileUpload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}
