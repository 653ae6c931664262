package service

import (
	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/repository"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

type FavoriteService struct {
	favoriteRepo *repository.FavoriteRepository
	movieRepo    *repository.MovieRepository
	reviewRepo   *repository.ReviewRepository
}

func NewFavoriteService(favoriteRepo *repository.FavoriteRepository, movieRepo *repository.MovieRepository, reviewRepo *repository.ReviewRepository) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		movieRepo:    movieRepo,
		reviewRepo:   reviewRepo,
	}
}

// Add favorites the movie for the user. Adding an already-favorited movie
// is a no-op success.
func (s *FavoriteService) Add(movieID, userID uuid.UUID) error {
	movie, err := s.movieRepo.GetMovieByID(movieID)
	if err != nil {
		return err
	}
	if movie == nil {
		return ErrMovieNotFound
	}

	if err := s.favoriteRepo.Add(movieID, userID); err != nil {
		logger.Log.Error("Failed to add favorite",
			zap.String("movie_id", movieID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Remove unfavorites the movie. Removing a non-favorited movie is not an
// error; removed reports whether anything actually went away.
func (s *FavoriteService) Remove(movieID, userID uuid.UUID) (removed bool, err error) {
	removed, err = s.favoriteRepo.Remove(movieID, userID)
	if err != nil {
		logger.Log.Error("Failed to remove favorite",
			zap.String("movie_id", movieID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	return removed, err
}

func (s *FavoriteService) IsFavorited(movieID, userID uuid.UUID) (bool, error) {
	return s.favoriteRepo.IsFavorited(movieID, userID)
}

// List returns the user's favorites, most recently favorited first, with
// the same genre/average annotations as the catalog listing.
func (s *FavoriteService) List(userID uuid.UUID) ([]MovieSummary, error) {
	movies, err := s.favoriteRepo.ListMovies(userID)
	if err != nil {
		return nil, err
	}

	averages, err := s.reviewRepo.AverageByMovie()
	if err != nil {
		return nil, err
	}

	summaries := make([]MovieSummary, 0, len(movies))
	for _, m := range movies {
		avg, ok := averages[m.ID]
		summaries = append(summaries, summarize(m, avg, ok))
	}
	return summaries, nil
}
