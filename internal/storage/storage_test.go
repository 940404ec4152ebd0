package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, maxBytes int64) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "public"), "/public", maxBytes, logger.Nop())
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestCheckPolicy(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantErr     bool
		tooLarge    bool
	}{
		{"png", "image/png", 1024, false, false},
		{"jpeg uppercase", "IMAGE/JPEG", 1024, false, false},
		{"gif", "image/gif", 10, false, false},
		{"exactly at limit", "image/png", DefaultMaxImageBytes, false, false},
		{"text", "text/plain", 10, true, false},
		{"webp", "image/webp", 10, true, false},
		{"too large", "image/png", 6 << 20, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPolicy(Upload{FileName: "f", ContentType: tt.contentType, Size: tt.size}, DefaultMaxImageBytes)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrUnsupportedMedia)
			var me *domain.MediaError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.tooLarge, me.TooLarge)
		})
	}
}

func TestLocalStore_Save(t *testing.T) {
	s := newTestStore(t, DefaultMaxImageBytes)
	body := []byte("\x89PNG fake image")

	path, err := s.Save(context.Background(), Upload{
		FileName:    "my photo.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, "/public/1700000000000-my-photo.png", path)

	stored, err := os.ReadFile(filepath.Join(s.Dir(), "1700000000000-my-photo.png"))
	require.NoError(t, err)
	assert.Equal(t, body, stored)
}

func TestLocalStore_SaveSameNameTwice(t *testing.T) {
	s := newTestStore(t, DefaultMaxImageBytes)
	up := func() Upload {
		return Upload{FileName: "a.gif", ContentType: "image/gif", Size: 3, Body: strings.NewReader("gif")}
	}

	first, err := s.Save(context.Background(), up())
	require.NoError(t, err)
	second, err := s.Save(context.Background(), up())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, "/public/1700000000000-a-1.gif", second)
}

func TestLocalStore_SaveRejectsLyingSize(t *testing.T) {
	s := newTestStore(t, 8)

	_, err := s.Save(context.Background(), Upload{
		FileName:    "big.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Body:        strings.NewReader("0123456789"),
	})
	require.ErrorIs(t, err, domain.ErrUnsupportedMedia)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_Remove(t *testing.T) {
	s := newTestStore(t, DefaultMaxImageBytes)

	path, err := s.Save(context.Background(), Upload{FileName: "x.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), path))
	_, err = os.Stat(filepath.Join(s.Dir(), filepath.Base(path)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(context.Background(), path))
	assert.NoError(t, s.Remove(context.Background(), ""))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "cat.png", sanitizeName("../../etc/cat.png", "image/png"))
	assert.Equal(t, "photo.png", sanitizeName(`C:\Users\me\photo.png`, "image/png"))
	assert.Equal(t, "image.png", sanitizeName("", "image/png"))
	assert.Equal(t, "image.jpg", sanitizeName("", "image/jpeg"))
	assert.Equal(t, "blob.gif", sanitizeName("blob", "image/gif"))
}
