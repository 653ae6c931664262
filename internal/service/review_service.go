package service

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/repository"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

type ReviewService struct {
	reviewRepo *repository.ReviewRepository
	movieRepo  *repository.MovieRepository
}

func NewReviewService(reviewRepo *repository.ReviewRepository, movieRepo *repository.MovieRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		movieRepo:  movieRepo,
	}
}

// ValidRating reports whether r sits on the half-star grid in [0.5, 5.0].
func ValidRating(r float64) bool {
	if r < 0.5 || r > 5.0 {
		return false
	}
	doubled := r * 2
	return doubled == math.Trunc(doubled)
}

// Submit stores the user's rating and comment for a movie. A resubmission
// by the same user overwrites the existing review in place; there is never
// more than one row per (movie, user).
func (s *ReviewService) Submit(movieID, userID uuid.UUID, rating float64, comment string) error {
	if !ValidRating(rating) {
		return ErrInvalidRating
	}

	movie, err := s.movieRepo.GetMovieByID(movieID)
	if err != nil {
		return err
	}
	if movie == nil {
		return ErrMovieNotFound
	}

	review := &models.Review{
		MovieID: movieID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}

	if err := s.reviewRepo.Upsert(review); err != nil {
		logger.Log.Error("Failed to store review",
			zap.String("movie_id", movieID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Review submitted",
		zap.String("movie_id", movieID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("rating", rating),
	)

	return nil
}

// Average recomputes the mean rating from the review rows on every call,
// rounded to one decimal. ok is false when the movie has no reviews.
func (s *ReviewService) Average(movieID uuid.UUID) (avg float64, ok bool, err error) {
	avg, ok, err = s.reviewRepo.Average(movieID)
	if err != nil || !ok {
		return 0, false, err
	}
	return math.Round(avg*10) / 10, true, nil
}

// FormatAverage renders an average for display: one decimal, or "N/A" when
// there are no reviews.
func FormatAverage(avg float64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", avg)
}

// Stars maps an average onto the five rating slots: slot i is full when
// i <= r, half when i-0.5 <= r < i, otherwise empty.
func Stars(avg float64) (full, half, empty int) {
	for i := 1; i <= 5; i++ {
		slot := float64(i)
		switch {
		case slot <= avg:
			full++
		case slot-0.5 <= avg:
			half++
		default:
			empty++
		}
	}
	return full, half, empty
}

// List returns a movie's reviews newest-first, each carrying the reviewing
// user's display name and avatar reference.
func (s *ReviewService) List(movieID uuid.UUID) ([]models.Review, error) {
	return s.reviewRepo.ListByMovie(movieID)
}
