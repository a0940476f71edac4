package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedImage = errors.New("file must be a JPEG, PNG or WebP image")
	ErrTooLarge         = errors.New("file exceeds size limit")
	ErrEmpty            = errors.New("file is empty")
)

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, object, contentType string, data []byte) (string, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// SniffImage checks the magic bytes of data and returns its content type.
func SniffImage(data []byte, maxSize int64) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}

	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, len(data), maxSize)
	}

	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		return "", fmt.Errorf("%w: detected %s", ErrUnsupportedImage, contentType)
	}

	return contentType, nil
}

// ObjectName builds a unique object path such as receipts/<user>/<uuid>.png.
func ObjectName(prefix string, userID uuid.UUID, contentType string) string {
	return path.Join(prefix, userID.String(), uuid.NewString()+imageExtensions[contentType])
}

type GCS struct {
	client  *gcs.Client
	bucket  string
	baseURL string
}

// NewGCS connects with Application Default Credentials.
func NewGCS(ctx context.Context, bucket, publicBaseURL string) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCS{client: client, bucket: bucket, baseURL: strings.TrimSuffix(publicBaseURL, "/")}, nil
}

func (g *GCS) Upload(ctx context.Context, object, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", object, err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload %s: %w", object, err)
	}

	return g.baseURL + "/" + g.bucket + "/" + object, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

// Memory keeps objects in process. It backs local development when no bucket is configured.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: strings.TrimSuffix(baseURL, "/"), objects: make(map[string][]byte)}
}

func (m *Memory) Upload(_ context.Context, object, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[object] = append([]byte(nil), data...)

	return m.baseURL + "/" + object, nil
}

func (m *Memory) Object(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[name]

	return data, ok
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.objects)
}
