package models

import (
	"time"

	"github.com/google/uuid"
)

type AgeRating string

const (
	AgeRatingG    AgeRating = "G"
	AgeRatingPG   AgeRating = "PG"
	AgeRatingPG13 AgeRating = "PG-13"
	AgeRatingR    AgeRating = "R"
	AgeRatingNC17 AgeRating = "NC-17"
)

// AgeRatings lists the accepted values in display order.
var AgeRatings = []AgeRating{AgeRatingG, AgeRatingPG, AgeRatingPG13, AgeRatingR, AgeRatingNC17}

// ValidAgeRating reports whether r is one of the accepted values.
func ValidAgeRating(r AgeRating) bool {
	for _, v := range AgeRatings {
		if v == r {
			return true
		}
	}
	return false
}

// Genres is the canonical genre vocabulary (lowercase, hyphenated).
var Genres = []string{"action", "adventure", "comedy", "drama", "horror", "supernatural", "animation", "sci-fi"}

// ValidGenre reports whether g belongs to the fixed vocabulary.
func ValidGenre(g string) bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}

type Movie struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string    `gorm:"type:varchar(200);not null" json:"title"`
	Summary         string    `gorm:"type:text;not null" json:"summary"`
	ReleaseDate     time.Time `gorm:"not null" json:"release_date"`
	DurationHours   int       `gorm:"not null" json:"duration_hours"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	AgeRating       AgeRating `gorm:"type:varchar(10);not null" json:"age_rating"`
	PosterImage     string    `gorm:"type:varchar(255);not null" json:"poster_image"`

	// Trailer source is exclusive: an external URL or an uploaded file, never both.
	TrailerURL  string `gorm:"type:varchar(500)" json:"trailer_url"`
	TrailerFile string `gorm:"type:varchar(255)" json:"trailer_file"`

	UploadedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"uploaded_by"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Uploader *User        `gorm:"foreignKey:UploadedBy;constraint:OnDelete:CASCADE" json:"uploader,omitempty"`
	Genres   []MovieGenre `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"genres,omitempty"`
}

// MovieGenre is one (movie, genre) tag; the composite unique index makes
// tag inserts idempotent.
type MovieGenre struct {
	ID      uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	MovieID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_movie_genre" json:"movie_id"`
	Genre   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_movie_genre" json:"genre"`
}
