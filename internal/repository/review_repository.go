package repository

import (
	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert inserts the review or, when the (movie_id, user_id) unique index
// already holds a row, overwrites rating, comment and timestamps in place.
// Concurrent submissions by the same user converge to a single row.
func (r *ReviewRepository) Upsert(review *models.Review) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "created_at", "updated_at"}),
	}).Create(review).Error
}

// ListByMovie returns a movie's reviews newest-first with the reviewing
// user preloaded for display name and avatar.
func (r *ReviewRepository) ListByMovie(movieID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.
		Preload("User").
		Where("movie_id = ?", movieID).
		Order("created_at DESC").
		Find(&reviews).Error

	return reviews, err
}

// Average computes the arithmetic mean of all ratings for a movie from the
// source rows on every call. ok is false when no reviews exist.
func (r *ReviewRepository) Average(movieID uuid.UUID) (avg float64, ok bool, err error) {
	var result *float64
	err = r.db.Model(&models.Review{}).
		Select("AVG(rating)").
		Where("movie_id = ?", movieID).
		Scan(&result).Error
	if err != nil || result == nil {
		return 0, false, err
	}
	return *result, true, nil
}

// AverageByMovie returns the mean rating for every movie that has reviews,
// for annotating catalog listings in one round trip.
func (r *ReviewRepository) AverageByMovie() (map[uuid.UUID]float64, error) {
	var rows []struct {
		MovieID uuid.UUID
		Avg     float64
	}
	err := r.db.Model(&models.Review{}).
		Select("movie_id, AVG(rating) as avg").
		Group("movie_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	averages := make(map[uuid.UUID]float64, len(rows))
	for _, row := range rows {
		averages[row.MovieID] = row.Avg
	}
	return averages, nil
}

// CountByMovie is a test/diagnostic helper for cascade verification.
func (r *ReviewRepository) CountByMovie(movieID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Review{}).Where("movie_id = ?", movieID).Count(&count).Error
	return count, err
}
