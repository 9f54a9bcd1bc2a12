package upload

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/apperror"
	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/shared/storage"
	uploaderrors "github.com/Mermas-CC/Gestion-sigead-sub000/internal/upload/errors"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	keyPrefix     = "uploads"
	maxNameLength = 100
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".doc":  true,
	".docx": true,
}

type UploadResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type Service interface {
	Save(ctx context.Context, originalName string, size int64, r io.Reader) (UploadResponse, error)
	MaxBytes() int64
}

type service struct {
	store    storage.Store
	maxBytes int64
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(store storage.Store, maxBytes int64, logger ...*zap.Logger) Service {
	l := zap.L().Named("upload.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("upload.service")
	}
	return &service{store: store, maxBytes: maxBytes, now: time.Now, logger: l}
}

func (s *service) MaxBytes() int64 {
	return s.maxBytes
}

// Save stores the file at uploads/{unix_ms}_{sanitized name}.
func (s *service) Save(ctx context.Context, originalName string, size int64, r io.Reader) (UploadResponse, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return UploadResponse{}, uploaderrors.ErrFileTooLarge
	}

	name := SanitizeFilename(originalName)
	if !allowedExtensions[strings.ToLower(filepath.Ext(name))] {
		return UploadResponse{}, uploaderrors.ErrUnsupportedType
	}

	key := fmt.Sprintf("%s/%d_%s", keyPrefix, s.now().UnixMilli(), name)

	url, err := s.store.Put(ctx, key, r)
	if err != nil {
		s.logger.Error("failed to store upload", zap.String("key", key), zap.Error(err))
		return UploadResponse{}, apperror.Storage(err)
	}

	return UploadResponse{URL: url, Name: name, Size: size}, nil
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeFilename drops directories and accents and keeps [A-Za-z0-9._-].
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if plain, _, err := transform.String(stripMarks, name); err == nil {
		name = plain
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		out = "archivo"
	}
	if len(out) > maxNameLength {
		ext := filepath.Ext(out)
		if len(ext) >= maxNameLength {
			ext = ""
		}
		out = out[:maxNameLength-len(ext)] + ext
	}
	return out
}
