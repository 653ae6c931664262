package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks a (user, movie) pair; presence means "favorited".
// The composite unique index keeps add idempotent.
type Favorite struct {
	ID      uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MovieID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_movie_user" json:"movie_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_movie_user" json:"user_id"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Movie *Movie `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE" json:"-"`
	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
