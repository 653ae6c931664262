package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// GetUserByUsernameOrEmail resolves a login identifier; the caller does not
// need to know which of the two the user typed.
func (r *UserRepository) GetUserByUsernameOrEmail(identifier string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// UsernameTaken checks for a username collision, optionally excluding one
// user (profile edits collide with everyone but themselves).
func (r *UserRepository) UsernameTaken(username string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.Model(&models.User{}).Where("username = ?", username)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// EmailTaken checks for an email collision, optionally excluding one user.
func (r *UserRepository) EmailTaken(email string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.db.Model(&models.User{}).Where("email = ?", email)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields applies a partial update. The service layer is responsible
// for allow-listing the keys.
func (r *UserRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}
