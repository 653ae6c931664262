package captcha

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/ratingtales/rating-tales/internal/session"
)

// CodeLength matches the 6-character challenge the login/register forms render.
const CodeLength = 6

const charset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Service issues and verifies per-session challenge codes. Codes are
// single-use bot friction, not a security boundary against a targeted
// attacker.
type Service struct {
	sessions *session.Store
}

func NewService(sessions *session.Store) *Service {
	return &Service{sessions: sessions}
}

// Issue generates a fresh code, stores it on the session (replacing any
// prior one) and returns it for rendering.
func (s *Service) Issue(sessionID string) (string, error) {
	code, err := generateCode(CodeLength)
	if err != nil {
		return "", err
	}
	if err := s.sessions.SetCaptcha(sessionID, code); err != nil {
		return "", err
	}
	return code, nil
}

// Verify compares the submitted code case-insensitively against the stored
// one. The stored code is consumed on every attempt: a correct code cannot
// be replayed, and a failed one does not stay valid.
func (s *Service) Verify(sessionID, submitted string) (bool, error) {
	code, err := s.sessions.ConsumeCaptcha(sessionID)
	if err != nil {
		return false, err
	}
	if code == "" || submitted == "" {
		return false, nil
	}
	return strings.EqualFold(code, submitted), nil
}

func generateCode(length int) (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(charset[n.Int64()])
	}
	return sb.String(), nil
}
