package models

import (
	"time"

	"github.com/google/uuid"
)

// Review holds one user's rating and comment for a movie. The composite
// unique index enforces at most one review per (movie, user); submissions
// upsert against it.
type Review struct {
	ID      uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MovieID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_movie_user" json:"movie_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_movie_user" json:"user_id"`
	Rating  float64   `gorm:"not null" json:"rating"`
	Comment string    `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Movie *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
