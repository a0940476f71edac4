package render

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/smritirangarajan/spenderella/internal/storage"
)

const formOverhead = 1 << 20

var ErrBadForm = errors.New("request must be a multipart form")

// FormFile reads one multipart file field, refusing anything over maxSize bytes.
// A missing field yields nil data and a nil error.
func FormFile(w http.ResponseWriter, r *http.Request, field string, maxSize int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(maxSize + formOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", storage.ErrTooLarge
		}

		return nil, "", fmt.Errorf("%w: %w", ErrBadForm, err)
	}

	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}

		return nil, "", fmt.Errorf("reading form file: %w", err)
	}
	defer f.Close()

	if hdr.Size > maxSize {
		return nil, "", storage.ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading form file: %w", err)
	}

	if int64(len(data)) > maxSize {
		return nil, "", storage.ErrTooLarge
	}

	return data, hdr.Filename, nil
}

// UploadError maps image upload failures to a response.
func UploadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		Error(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "File is too large")
	case errors.Is(err, storage.ErrUnsupportedImage), errors.Is(err, storage.ErrEmpty):
		Error(w, http.StatusBadRequest, CodeBadRequest, err.Error())
	case errors.Is(err, ErrBadForm):
		Error(w, http.StatusBadRequest, CodeBadRequest, "Request must be multipart/form-data")
	default:
		Internal(w, r, err)
	}
}
