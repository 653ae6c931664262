package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrInvalidType = errors.New("invalid file type")
	ErrTooLarge    = errors.New("file too large")
)

// Kind selects the validation rules and content directory for a stored file.
type Kind string

const (
	KindPoster  Kind = "poster"
	KindTrailer Kind = "trailer"
	KindAvatar  Kind = "avatar"
)

const (
	maxPosterSize  = 5 * 1024 * 1024
	maxTrailerSize = 50 * 1024 * 1024
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedVideoTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/ogg":       true,
	"video/quicktime": true,
}

func (k Kind) allowed(contentType string) bool {
	if k == KindTrailer {
		return allowedVideoTypes[contentType]
	}
	return allowedImageTypes[contentType]
}

func (k Kind) maxSize() int64 {
	if k == KindTrailer {
		return maxTrailerSize
	}
	return maxPosterSize
}

func (k Kind) subdir() string {
	switch k {
	case KindTrailer:
		return "trailers"
	case KindAvatar:
		return "avatars"
	default:
		return "posters"
	}
}

// Store writes uploaded files under a base directory, one subdirectory per
// kind. Records always reference the generated filename, never the name the
// uploader supplied.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	for _, k := range []Kind{KindPoster, KindTrailer, KindAvatar} {
		if err := os.MkdirAll(filepath.Join(baseDir, k.subdir()), 0o775); err != nil {
			return nil, err
		}
	}
	return &Store{baseDir: baseDir}, nil
}

// Dir returns the content directory for a kind.
func (s *Store) Dir(kind Kind) string {
	return filepath.Join(s.baseDir, kind.subdir())
}

// Path returns the on-disk location of a stored reference.
func (s *Store) Path(kind Kind, ref string) string {
	return filepath.Join(s.Dir(kind), ref)
}

// Save validates the declared content type and size, then writes the file
// under a collision-resistant generated name and returns that name.
// Validation failures happen before any filesystem write.
func (s *Store) Save(kind Kind, data []byte, contentType, originalName string) (string, error) {
	if !kind.allowed(contentType) {
		return "", fmt.Errorf("%w: %s", ErrInvalidType, contentType)
	}
	if int64(len(data)) > kind.maxSize() {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), kind.maxSize())
	}

	name := fmt.Sprintf("%s_%s%s", kind, uuid.New().String(), safeExt(originalName))
	if err := os.WriteFile(s.Path(kind, name), data, 0o664); err != nil {
		return "", err
	}

	logger.Log.Debug("Stored uploaded file",
		zap.String("kind", string(kind)),
		zap.String("filename", name),
		zap.Int("size", len(data)),
	)

	return name, nil
}

// Remove deletes a stored file. Empty references and already-missing files
// are not errors.
func (s *Store) Remove(kind Kind, ref string) error {
	if ref == "" {
		return nil
	}
	if err := os.Remove(s.Path(kind, ref)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Replace deletes the old stored file after a successful replacement.
// It never deletes when the references are identical or the old one is empty.
func (s *Store) Replace(kind Kind, oldRef, newRef string) error {
	if oldRef == "" || oldRef == newRef {
		return nil
	}
	return s.Remove(kind, oldRef)
}

// safeExt keeps only the extension of the uploader's filename, stripped of
// any path components (path traversal prevention).
func safeExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
