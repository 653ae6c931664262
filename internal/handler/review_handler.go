package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratingtales/rating-tales/internal/service"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type ReviewForm struct {
	Rating  float64 `form:"rating" binding:"required"`
	Comment string  `form:"comment"`
}

// Submit stores or overwrites the caller's review for the movie.
func (h *ReviewHandler) Submit(c *gin.Context) {
	movieID, ok := parseMovieID(c)
	if !ok {
		return
	}

	var form ReviewForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a valid rating (0.5 to 5)"})
		return
	}

	if err := h.reviewService.Submit(movieID, currentUserID(c), form.Rating, form.Comment); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted"})
}

// List returns a movie's reviews newest-first with reviewer info.
func (h *ReviewHandler) List(c *gin.Context) {
	movieID, ok := parseMovieID(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.List(movieID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	avg, hasRating, err := h.reviewService.Average(movieID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"average_rating": service.FormatAverage(avg, hasRating),
	})
}
