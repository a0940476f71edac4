package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smritirangarajan/spenderella/internal/storage"
)

var (
	pngHeader  = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")
	jpegHeader = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00")
	webpHeader = []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")
)

func TestSniffImage(t *testing.T) {
	type testCase struct {
		name    string
		data    []byte
		max     int64
		want    string
		wantErr error
	}

	tests := []testCase{
		{name: "PNG", data: pngHeader, want: "image/png"},
		{name: "JPEG", data: jpegHeader, want: "image/jpeg"},
		{name: "WebP", data: webpHeader, want: "image/webp"},
		{name: "PDF", data: []byte("%PDF-1.7\n"), wantErr: storage.ErrUnsupportedImage},
		{name: "Text", data: []byte("hello"), wantErr: storage.ErrUnsupportedImage},
		{name: "Empty", data: nil, wantErr: storage.ErrEmpty},
		{name: "TooLarge", data: pngHeader, max: 4, wantErr: storage.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.SniffImage(tt.data, tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectName(t *testing.T) {
	userID := uuid.New()

	name := storage.ObjectName("receipts", userID, "image/png")
	assert.True(t, strings.HasPrefix(name, "receipts/"+userID.String()+"/"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotEqual(t, name, storage.ObjectName("receipts", userID, "image/png"))
}

func TestMemory_Upload(t *testing.T) {
	m := storage.NewMemory("http://localhost:8080/files/")

	url, err := m.Upload(context.Background(), "a/b.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/a/b.png", url)

	data, ok := m.Object("a/b.png")
	require.True(t, ok)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, 1, m.Len())
}
