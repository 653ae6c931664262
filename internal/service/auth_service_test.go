package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/repository"
	"github.com/ratingtales/rating-tales/internal/service"
	"github.com/ratingtales/rating-tales/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type authFixture struct {
	db   *gorm.DB
	auth *service.AuthService
}

func setupAuthFixture(t *testing.T) *authFixture {
	td := testutil.SetupTestDatabase(t)
	t.Cleanup(func() { td.Teardown(t) })

	return &authFixture{
		db:   td.DB,
		auth: service.NewAuthService(repository.NewUserRepository(td.DB)),
	}
}

func validRegisterInput() service.RegisterInput {
	return service.RegisterInput{
		FullName:        "Alice Example",
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		Age:             28,
		Gender:          models.GenderFemale,
	}
}

func TestRegister_RoundTrip(t *testing.T) {
	f := setupAuthFixture(t)

	user, err := f.auth.Register(validRegisterInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "Secret123", user.PasswordHash, "plaintext must never be stored")
	assert.NotContains(t, user.PasswordHash, "Secret123")

	// Login works by username and by email
	byUsername, err := f.auth.Authenticate("alice", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	byEmail, err := f.auth.Authenticate("alice@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	f := setupAuthFixture(t)

	_, err := f.auth.Register(validRegisterInput())
	require.NoError(t, err)

	// Wrong password and unknown account fail identically
	_, err = f.auth.Authenticate("alice", "WrongPassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.auth.Authenticate("nobody", "Secret123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegister_DuplicateUsernameAndEmail(t *testing.T) {
	f := setupAuthFixture(t)

	_, err := f.auth.Register(validRegisterInput())
	require.NoError(t, err)

	in := validRegisterInput()
	in.Email = "other@example.com"
	_, err = f.auth.Register(in)
	assert.ErrorIs(t, err, service.ErrUsernameTaken)

	in = validRegisterInput()
	in.Username = "alice2"
	_, err = f.auth.Register(in)
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegister_ValidationAggregatesMessages(t *testing.T) {
	f := setupAuthFixture(t)

	in := service.RegisterInput{
		FullName:        "",
		Username:        "ab",
		Email:           "not-an-email",
		Password:        "123",
		ConfirmPassword: "456",
		Age:             0,
		Gender:          "other",
	}

	_, err := f.auth.Register(in)

	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.GreaterOrEqual(t, len(verr.Messages), 6, "every failed rule is reported")

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdateProfile_AllowListedFieldsOnly(t *testing.T) {
	f := setupAuthFixture(t)

	user, err := f.auth.Register(validRegisterInput())
	require.NoError(t, err)

	err = f.auth.UpdateProfile(user.ID, map[string]interface{}{
		"full_name":     "Alice Q. Example",
		"bio":           "Movie enthusiast",
		"password_hash": "hax", // not allow-listed, silently ignored
	})
	require.NoError(t, err)

	updated, err := f.auth.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Q. Example", updated.FullName)
	assert.Equal(t, "Movie enthusiast", updated.Bio)
	assert.Equal(t, user.PasswordHash, updated.PasswordHash)
}

func TestUpdateProfile_NothingToUpdate(t *testing.T) {
	f := setupAuthFixture(t)

	user, err := f.auth.Register(validRegisterInput())
	require.NoError(t, err)

	err = f.auth.UpdateProfile(user.ID, map[string]interface{}{})
	assert.ErrorIs(t, err, service.ErrNothingToUpdate)

	// Only non-allow-listed keys is equivalent to an empty update
	err = f.auth.UpdateProfile(user.ID, map[string]interface{}{"id": uuid.New()})
	assert.ErrorIs(t, err, service.ErrNothingToUpdate)
}

func TestUpdateProfile_InvalidValues(t *testing.T) {
	f := setupAuthFixture(t)

	user, err := f.auth.Register(validRegisterInput())
	require.NoError(t, err)

	cases := []map[string]interface{}{
		{"age": -3},
		{"gender": "robot"},
		{"email": "broken@"},
		{"username": ""},
	}
	for _, fields := range cases {
		err := f.auth.UpdateProfile(user.ID, fields)
		var verr *service.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestUpdateProfile_ConflictExcludesSelf(t *testing.T) {
	f := setupAuthFixture(t)

	alice, err := f.auth.Register(validRegisterInput())
	require.NoError(t, err)

	in := validRegisterInput()
	in.Username = "bob"
	in.Email = "bob@example.com"
	_, err = f.auth.Register(in)
	require.NoError(t, err)

	// Taking bob's handle is a conflict
	err = f.auth.UpdateProfile(alice.ID, map[string]interface{}{"username": "bob"})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)

	err = f.auth.UpdateProfile(alice.ID, map[string]interface{}{"email": "bob@example.com"})
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	// Re-submitting your own current values is not
	err = f.auth.UpdateProfile(alice.ID, map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
	})
	assert.NoError(t, err)
}

func TestUpdateProfileImage_ReturnsPreviousRef(t *testing.T) {
	f := setupAuthFixture(t)

	user, err := f.auth.Register(validRegisterInput())
	require.NoError(t, err)

	old, err := f.auth.UpdateProfileImage(user.ID, "avatar_one.png")
	require.NoError(t, err)
	assert.Empty(t, old, "fresh account has no previous avatar")

	old, err = f.auth.UpdateProfileImage(user.ID, "avatar_two.png")
	require.NoError(t, err)
	assert.Equal(t, "avatar_one.png", old)

	updated, err := f.auth.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "avatar_two.png", updated.ProfileImage)
}

func TestGetUser_NotFound(t *testing.T) {
	f := setupAuthFixture(t)

	_, err := f.auth.GetUser(uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
