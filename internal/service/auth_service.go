package service

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/repository"
	"github.com/ratingtales/rating-tales/internal/utils"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// profileFields is the allow-list of mutable profile columns.
var profileFields = map[string]bool{
	"full_name":     true,
	"username":      true,
	"email":         true,
	"profile_image": true,
	"age":           true,
	"gender":        true,
	"bio":           true,
}

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type RegisterInput struct {
	FullName        string
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Age             int
	Gender          models.Gender
}

func (s *AuthService) Register(in RegisterInput) (*models.User, error) {
	logger.Log.Debug("Processing user registration",
		zap.String("username", in.Username),
		zap.String("email", in.Email),
	)

	if err := validateRegisterInput(in); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", in.Username),
			zap.Error(err),
		)
		return nil, err
	}

	// Uniqueness checks are case-sensitive exact matches
	taken, err := s.userRepo.UsernameTaken(in.Username, uuid.Nil)
	if err != nil {
		logger.Log.Error("Failed to check username existence", zap.Error(err))
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.userRepo.EmailTaken(in.Email, uuid.Nil)
	if err != nil {
		logger.Log.Error("Failed to check email existence", zap.Error(err))
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	// One-way hash; the plaintext is never persisted or logged
	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		FullName:     in.FullName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashedPassword,
		Age:          in.Age,
		Gender:       in.Gender,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", in.Username),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, nil
}

// Authenticate resolves the identifier as username or email and verifies
// the password. Both failure modes collapse into ErrInvalidCredentials so
// responses cannot be used for account enumeration.
func (s *AuthService) Authenticate(identifier, password string) (*models.User, error) {
	user, err := s.userRepo.GetUserByUsernameOrEmail(identifier)
	if err != nil {
		logger.Log.Error("Failed to look up user", zap.Error(err))
		return nil, err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found", zap.String("identifier", identifier))
		return nil, ErrInvalidCredentials
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("user_id", user.ID.String()),
		)
		return nil, ErrInvalidCredentials
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, nil
}

func (s *AuthService) GetUser(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies a partial update restricted to the allow-listed
// fields. An empty effective field set is ErrNothingToUpdate; a username or
// email collision against another user is a conflict.
func (s *AuthService) UpdateProfile(userID uuid.UUID, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields))
	verr := &ValidationError{}

	for key, value := range fields {
		if !profileFields[key] {
			continue
		}
		switch key {
		case "age":
			age, ok := value.(int)
			if !ok || age <= 0 {
				verr.add("age must be a positive integer")
				continue
			}
		case "gender":
			g, ok := value.(models.Gender)
			if !ok {
				if str, isStr := value.(string); isStr {
					g = models.Gender(str)
					ok = true
				}
			}
			if !ok || !models.ValidGender(g) {
				verr.add("gender must be male or female")
				continue
			}
			value = g
		case "email":
			if str, ok := value.(string); !ok || !emailRegex.MatchString(str) {
				verr.add("invalid email format")
				continue
			}
		case "username":
			if str, ok := value.(string); !ok || str == "" {
				verr.add("username must not be empty")
				continue
			}
		}
		updates[key] = value
	}

	if err := verr.orNil(); err != nil {
		return err
	}
	if len(updates) == 0 {
		return ErrNothingToUpdate
	}

	if username, ok := updates["username"].(string); ok {
		taken, err := s.userRepo.UsernameTaken(username, userID)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}
	}
	if email, ok := updates["email"].(string); ok {
		taken, err := s.userRepo.EmailTaken(email, userID)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
	}

	if err := s.userRepo.UpdateFields(userID, updates); err != nil {
		logger.Log.Error("Failed to update profile",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Profile updated",
		zap.String("user_id", userID.String()),
		zap.Int("field_count", len(updates)),
	)

	return nil
}

// UpdateProfileImage binds a newly stored avatar reference to the user and
// returns the previous reference so the caller can clean it up after the
// write succeeds.
func (s *AuthService) UpdateProfileImage(userID uuid.UUID, newRef string) (string, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return "", err
	}

	oldRef := user.ProfileImage
	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"profile_image": newRef}); err != nil {
		return "", err
	}
	return oldRef, nil
}

func validateRegisterInput(in RegisterInput) error {
	verr := &ValidationError{}

	if in.FullName == "" {
		verr.add("full name is required")
	}
	if len(in.Username) < 3 {
		verr.add("username must be at least 3 characters")
	}
	if len(in.Username) > 50 {
		verr.add("username must be at most 50 characters")
	}
	if !emailRegex.MatchString(in.Email) {
		verr.add("invalid email format")
	}
	if in.Age <= 0 {
		verr.add("age must be a positive integer")
	}
	if !models.ValidGender(in.Gender) {
		verr.add(fmt.Sprintf("gender must be %s or %s", models.GenderMale, models.GenderFemale))
	}
	if len(in.Password) < 6 {
		verr.add("password must be at least 6 characters")
	}
	if len(in.Password) > 128 {
		verr.add("password too long")
	}
	if in.Password != in.ConfirmPassword {
		verr.add("passwords do not match")
	}

	return verr.orNil()
}
