package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratingtales/rating-tales/internal/service"
)

type FavoriteHandler struct {
	favoriteService *service.FavoriteService
}

func NewFavoriteHandler(favoriteService *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

type FavoriteForm struct {
	Action string `form:"action" binding:"required"`
}

// Toggle handles action=favorite|unfavorite for a movie. Both directions
// are idempotent; unfavoriting a movie that was never favorited reports
// removed=false rather than an error.
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	movieID, ok := parseMovieID(c)
	if !ok {
		return
	}

	var form FavoriteForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID := currentUserID(c)

	switch form.Action {
	case "favorite":
		if err := h.favoriteService.Add(movieID, userID); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Added to favorites", "favorited": true})
	case "unfavorite":
		removed, err := h.favoriteService.Remove(movieID, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":   "Removed from favorites",
			"favorited": false,
			"removed":   removed,
		})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be favorite or unfavorite"})
	}
}

// List returns the caller's favorites with catalog annotations.
func (h *FavoriteHandler) List(c *gin.Context) {
	movies, err := h.favoriteService.List(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": movies})
}
