package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the session cookie set on login/registration.
const CookieName = "rt_session"

// DefaultIntendedURL is where a login lands when no protected path was stored.
const DefaultIntendedURL = "/"

var ErrSessionNotFound = errors.New("session not found")

// Data is the per-session mutable state. Everything here follows a
// set -> read-once -> cleared lifecycle except UserID, which stays bound
// until logout.
type Data struct {
	UserID      uuid.UUID `json:"user_id,omitempty"`
	IntendedURL string    `json:"intended_url,omitempty"`
	CaptchaCode string    `json:"captcha_code,omitempty"`
	Flash       string    `json:"flash,omitempty"`
}

// Authenticated reports whether a valid user identity is bound.
func (d *Data) Authenticated() bool {
	return d != nil && d.UserID != uuid.Nil
}

// Store keeps sessions in Redis as JSON blobs under session:<id>,
// bounded by a TTL.
type Store struct {
	client *redis.Client
	ctx    context.Context
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ctx:    context.Background(),
		ttl:    ttl,
	}
}

func key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create starts a fresh anonymous session and returns its ID.
func (s *Store) Create() (string, error) {
	id := uuid.New().String()
	if err := s.save(id, &Data{}); err != nil {
		return "", err
	}
	return id, nil
}

// Get loads session data. Returns ErrSessionNotFound for unknown or
// expired IDs.
func (s *Store) Get(id string) (*Data, error) {
	raw, err := s.client.Get(s.ctx, key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *Store) save(id string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.client.Set(s.ctx, key(id), raw, s.ttl).Err()
}

// Destroy removes the session entirely (logout).
func (s *Store) Destroy(id string) error {
	return s.client.Del(s.ctx, key(id)).Err()
}

// Rotate moves the session data to a freshly generated ID and deletes the
// old one. Called on login/registration before binding the user identity,
// so a fixated pre-auth session ID never becomes authenticated.
func (s *Store) Rotate(id string) (string, error) {
	data, err := s.Get(id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return "", err
		}
		data = &Data{}
	}

	newID := uuid.New().String()
	if err := s.save(newID, data); err != nil {
		return "", err
	}
	if err := s.client.Del(s.ctx, key(id)).Err(); err != nil {
		return "", err
	}
	return newID, nil
}

// update applies fn to the stored data and writes it back.
func (s *Store) update(id string, fn func(*Data)) error {
	data, err := s.Get(id)
	if err != nil {
		return err
	}
	fn(data)
	return s.save(id, data)
}

// BindUser attaches an authenticated user identity to the session.
func (s *Store) BindUser(id string, userID uuid.UUID) error {
	return s.update(id, func(d *Data) { d.UserID = userID })
}

// SetIntendedURL remembers the originally requested protected path.
func (s *Store) SetIntendedURL(id, url string) error {
	return s.update(id, func(d *Data) { d.IntendedURL = url })
}

// ConsumeIntendedURL returns the stored destination and clears it, so it is
// used exactly once. Falls back to DefaultIntendedURL when nothing was stored.
func (s *Store) ConsumeIntendedURL(id string) (string, error) {
	url := DefaultIntendedURL
	err := s.update(id, func(d *Data) {
		if d.IntendedURL != "" {
			url = d.IntendedURL
			d.IntendedURL = ""
		}
	})
	if err != nil {
		return DefaultIntendedURL, err
	}
	return url, nil
}

// SetCaptcha stores the active challenge code, replacing any prior one.
func (s *Store) SetCaptcha(id, code string) error {
	return s.update(id, func(d *Data) { d.CaptchaCode = code })
}

// ConsumeCaptcha returns the active challenge code and deletes it. The code
// is single-use regardless of whether the caller's comparison succeeds.
func (s *Store) ConsumeCaptcha(id string) (string, error) {
	var code string
	err := s.update(id, func(d *Data) {
		code = d.CaptchaCode
		d.CaptchaCode = ""
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// SetFlash stores a one-shot user-visible message.
func (s *Store) SetFlash(id, message string) error {
	return s.update(id, func(d *Data) { d.Flash = message })
}

// ConsumeFlash returns the flash message and clears it.
func (s *Store) ConsumeFlash(id string) (string, error) {
	var msg string
	err := s.update(id, func(d *Data) {
		msg = d.Flash
		d.Flash = ""
	})
	if err != nil {
		return "", err
	}
	return msg, nil
}
