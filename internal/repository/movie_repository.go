package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// CreateWithGenres inserts the movie row and its genre tags atomically.
func (r *MovieRepository) CreateWithGenres(movie *models.Movie, genres []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movie).Error; err != nil {
			return err
		}
		return insertGenres(tx, movie.ID, genres)
	})
}

// UpdateWithGenres saves the movie attributes and replaces the full genre
// set (delete-all-then-reinsert) in one transaction.
func (r *MovieRepository) UpdateWithGenres(movie *models.Movie, genres []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(movie).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", movie.ID).Delete(&models.MovieGenre{}).Error; err != nil {
			return err
		}
		return insertGenres(tx, movie.ID, genres)
	})
}

func insertGenres(tx *gorm.DB, movieID uuid.UUID, genres []string) error {
	for _, g := range genres {
		tag := models.MovieGenre{MovieID: movieID, Genre: g}
		// Idempotent against the (movie_id, genre) unique index
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *MovieRepository) GetMovieByID(id uuid.UUID) (*models.Movie, error) {
	var movie models.Movie
	err := r.db.Preload("Genres").Preload("Uploader").Where("id = ?", id).First(&movie).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &movie, nil
}

// ListAll returns all movies newest-first with their genre tags preloaded.
func (r *MovieRepository) ListAll() ([]models.Movie, error) {
	var movies []models.Movie
	err := r.db.
		Preload("Genres").
		Order("created_at DESC").
		Find(&movies).Error

	return movies, err
}

// ListByOwner returns the movies uploaded by one user, newest-first.
func (r *MovieRepository) ListByOwner(ownerID uuid.UUID) ([]models.Movie, error) {
	var movies []models.Movie
	err := r.db.
		Preload("Genres").
		Where("uploaded_by = ?", ownerID).
		Order("created_at DESC").
		Find(&movies).Error

	return movies, err
}

// Delete removes the movie row. Genre tags, reviews and favorites go with
// it through the ON DELETE CASCADE constraints.
func (r *MovieRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Movie{}, "id = ?", id).Error
}

// CountGenres is a test/diagnostic helper for cascade verification.
func (r *MovieRepository) CountGenres(movieID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.MovieGenre{}).Where("movie_id = ?", movieID).Count(&count).Error
	return count, err
}
