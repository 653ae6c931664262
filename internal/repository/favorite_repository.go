package repository

import (
	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add records the (movie, user) pair. Adding an existing favorite is a
// no-op success via the unique index.
func (r *FavoriteRepository) Add(movieID, userID uuid.UUID) error {
	fav := models.Favorite{MovieID: movieID, UserID: userID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error
}

// Remove deletes the pair and reports whether a row actually went away,
// so callers can distinguish "removed" from "was never favorited".
func (r *FavoriteRepository) Remove(movieID, userID uuid.UUID) (bool, error) {
	res := r.db.Where("movie_id = ? AND user_id = ?", movieID, userID).Delete(&models.Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *FavoriteRepository) IsFavorited(movieID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).
		Where("movie_id = ? AND user_id = ?", movieID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListMovies returns the user's favorited movies, most recently favorited
// first, with genre tags preloaded.
func (r *FavoriteRepository) ListMovies(userID uuid.UUID) ([]models.Movie, error) {
	var movies []models.Movie
	err := r.db.
		Preload("Genres").
		Joins("JOIN favorites ON favorites.movie_id = movies.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&movies).Error

	return movies, err
}

// CountByMovie is a test/diagnostic helper for cascade verification.
func (r *FavoriteRepository) CountByMovie(movieID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).Where("movie_id = ?", movieID).Count(&count).Error
	return count, err
}
