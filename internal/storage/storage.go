package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxImageBytes is the size limit of one uploaded image
const DefaultMaxImageBytes int64 = 5 << 20

var (
	allowedImageTypes = regexp.MustCompile(`(?i)jpeg|jpg|png|gif`)
	unsafeNameChars   = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// Upload is one image handed over by the transport
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists uploaded images and returns their public relative path
type ImageStore interface {
	Save(ctx context.Context, upload Upload) (string, error)
	Remove(ctx context.Context, path string) error
}

// CheckPolicy rejects uploads whose declared type is not jpeg, jpg, png or gif, or whose size exceeds maxBytes
func CheckPolicy(upload Upload, maxBytes int64) error {
	if !allowedImageTypes.MatchString(upload.ContentType) {
		return &domain.MediaError{FileName: upload.FileName, ContentType: upload.ContentType, Size: upload.Size}
	}
	if upload.Size > maxBytes {
		return &domain.MediaError{FileName: upload.FileName, ContentType: upload.ContentType, Size: upload.Size, TooLarge: true}
	}
	return nil
}

// LocalStore сохраняет изображения на локальный диск
type LocalStore struct {
	dir          string
	publicPrefix string
	maxBytes     int64
	now          func() time.Time
	log          *logger.Logger
}

// NewLocalStore creates dir when missing
func NewLocalStore(dir, publicPrefix string, maxBytes int64, log *logger.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &LocalStore{
		dir:          dir,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		maxBytes:     maxBytes,
		now:          time.Now,
		log:          log,
	}, nil
}

// Dir returns the directory files are written to
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the upload as <unix millis>-<name> and returns <public prefix>/<file>
func (s *LocalStore) Save(ctx context.Context, upload Upload) (string, error) {
	if err := CheckPolicy(upload, s.maxBytes); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeName(upload.FileName, upload.ContentType))
	f, name, err := s.create(base)
	if err != nil {
		return "", domain.NewStoreError("save image", err)
	}

	// Declared size may lie; never write more than the limit
	written, err := io.Copy(f, io.LimitReader(upload.Body, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", domain.NewStoreError("save image", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", &domain.MediaError{FileName: upload.FileName, ContentType: upload.ContentType, Size: written, TooLarge: true}
	}

	s.log.Debugw("Image stored", "file", name, "bytes", written)
	return s.publicPrefix + "/" + name, nil
}

// create opens a new file, adding a numeric suffix when the name is taken
func (s *LocalStore) create(base string) (*os.File, string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := base
	for i := 1; ; i++ {
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) || i > 100 {
			return nil, "", err
		}
		name = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
}

// Remove deletes a file previously returned by Save. Missing files are ignored.
func (s *LocalStore) Remove(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(path, s.publicPrefix+"/"))
	if name == "." || name == "/" {
		return nil
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.NewStoreError("remove image", err)
	}
	return nil
}

// sanitizeName keeps the base name of the client file, replacing unsafe characters.
// Files without a usable name get "image" plus the extension of the declared type.
func sanitizeName(fileName, contentType string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
	name = strings.Trim(unsafeNameChars.ReplaceAllString(name, "-"), "-.")
	if name != "" && filepath.Ext(name) != "" {
		return name
	}

	ext := ".img"
	if m := mimetype.Lookup(strings.ToLower(strings.TrimSpace(contentType))); m != nil {
		ext = m.Extension()
	}
	if name == "" {
		name = "image"
	}
	return name + ext
}
