package models

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ValidGender reports whether g is one of the accepted values.
func ValidGender(g Gender) bool {
	return g == GenderMale || g == GenderFemale
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName     string    `gorm:"type:varchar(100);not null" json:"full_name"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	Age          int       `gorm:"not null" json:"age"`
	Gender       Gender    `gorm:"type:varchar(10);not null" json:"gender"`
	Bio          string    `gorm:"type:text" json:"bio"`
	ProfileImage string    `gorm:"type:varchar(255)" json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
