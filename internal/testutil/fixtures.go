package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/utils"
)

// CreateTestUser builds a user with a hashed password and sane defaults.
func CreateTestUser(username, email, password string) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:           uuid.New(),
		FullName:     "Test " + username,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Age:          25,
		Gender:       models.GenderMale,
	}, nil
}

// DefaultTestUser returns a default test user
func DefaultTestUser() (*models.User, error) {
	return CreateTestUser("testuser", "test@example.com", "Test123456")
}

// CreateTestMovie builds a movie owned by ownerID with all required fields
// filled in.
func CreateTestMovie(ownerID uuid.UUID, title string) *models.Movie {
	return &models.Movie{
		ID:              uuid.New(),
		Title:           title,
		Summary:         "A movie used in tests.",
		ReleaseDate:     time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
		DurationHours:   2,
		DurationMinutes: 15,
		AgeRating:       models.AgeRatingPG13,
		PosterImage:     "poster_test.jpg",
		TrailerURL:      "https://example.com/trailer",
		UploadedBy:      ownerID,
	}
}
