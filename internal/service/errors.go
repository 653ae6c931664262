package service

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrNothingToUpdate    = errors.New("no fields to update")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrMovieNotFound      = errors.New("movie not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRating      = errors.New("rating must be between 0.5 and 5.0 in half steps")
)

// ValidationError aggregates user-correctable input problems so a form can
// show them all at once.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) add(msg string) {
	e.Messages = append(e.Messages, msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}
