package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/service"
	"github.com/ratingtales/rating-tales/internal/session"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

type MovieHandler struct {
	movieService *service.MovieService
	sessions     *session.Store
}

func NewMovieHandler(movieService *service.MovieService, sessions *session.Store) *MovieHandler {
	return &MovieHandler{movieService: movieService, sessions: sessions}
}

type MovieForm struct {
	Title           string `form:"title" binding:"required"`
	Summary         string `form:"summary" binding:"required"`
	ReleaseDate     string `form:"release_date" binding:"required"`
	DurationHours   int    `form:"duration_hours"`
	DurationMinutes int    `form:"duration_minutes"`
	AgeRating       string `form:"age_rating" binding:"required"`
	TrailerLink     string `form:"trailer_link"`
}

// buildInput assembles the service input from the multipart form. File
// reading failures surface as 400s before the service runs.
func (h *MovieHandler) buildInput(c *gin.Context) (*service.MovieInput, bool) {
	var form MovieForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Log.Warn("Movie form parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return nil, false
	}

	releaseDate, err := time.Parse("2006-01-02", form.ReleaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid release date, expected YYYY-MM-DD"})
		return nil, false
	}

	poster, err := readFormFile(c, "poster_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read poster file"})
		return nil, false
	}

	trailer, err := readFormFile(c, "trailer_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read trailer file"})
		return nil, false
	}

	return &service.MovieInput{
		Title:           form.Title,
		Summary:         form.Summary,
		ReleaseDate:     releaseDate,
		DurationHours:   form.DurationHours,
		DurationMinutes: form.DurationMinutes,
		AgeRating:       models.AgeRating(form.AgeRating),
		Genres:          c.PostFormArray("genre"),
		TrailerURL:      form.TrailerLink,
		TrailerFile:     trailer,
		Poster:          poster,
	}, true
}

func (h *MovieHandler) Create(c *gin.Context) {
	in, ok := h.buildInput(c)
	if !ok {
		return
	}

	movie, err := h.movieService.Create(*in, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Status message for the catalog page the client lands on next
	_ = h.sessions.SetFlash(sessionID(c), "Movie uploaded successfully")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Movie uploaded successfully",
		"movie":   movie,
	})
}

func (h *MovieHandler) Update(c *gin.Context) {
	movieID, ok := parseMovieID(c)
	if !ok {
		return
	}

	in, ok := h.buildInput(c)
	if !ok {
		return
	}

	movie, err := h.movieService.Update(movieID, *in, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movie updated successfully",
		"movie":   movie,
	})
}

func (h *MovieHandler) Delete(c *gin.Context) {
	movieID, ok := parseMovieID(c)
	if !ok {
		return
	}

	if err := h.movieService.Delete(movieID, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = h.sessions.SetFlash(sessionID(c), "Movie deleted successfully")

	c.JSON(http.StatusOK, gin.H{"message": "Movie deleted successfully"})
}

func (h *MovieHandler) List(c *gin.Context) {
	movies, err := h.movieService.ListAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := gin.H{"movies": movies}
	// One-shot status message left by a preceding action, if any
	if flash, err := h.sessions.ConsumeFlash(sessionID(c)); err == nil && flash != "" {
		resp["flash"] = flash
	}

	c.JSON(http.StatusOK, resp)
}

// ListMine returns the authenticated user's own uploads.
func (h *MovieHandler) ListMine(c *gin.Context) {
	movies, err := h.movieService.ListByOwner(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

func (h *MovieHandler) Get(c *gin.Context) {
	movieID, ok := parseMovieID(c)
	if !ok {
		return
	}

	detail, err := h.movieService.Get(movieID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"movie": detail})
}
