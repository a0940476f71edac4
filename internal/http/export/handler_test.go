package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smritirangarajan/spenderella/internal/auth"
	"github.com/smritirangarajan/spenderella/internal/export"
	"github.com/smritirangarajan/spenderella/internal/transaction"
)

var userID = uuid.MustParse("7c1d2e3f-4a5b-4c6d-8e9f-0a1b2c3d4e5f")

func TestHandler_Download(t *testing.T) {
	type testCase struct {
		name       string
		query      string
		setupMock  func(m *transaction.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name:  "Archive",
			query: "?from=2024-03-01&to=2024-03-31",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, int, error) {
						assert.Equal(t, userID, f.UserID)
						assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
						assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), *f.EndDate)

						return []*transaction.Transaction{{
							ID: uuid.New(), Title: "Coffee", Type: transaction.TypeExpense, Amount: 350,
							Category: "Food", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
						}}, 1, nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "BadFrom",
			query:      "?from=March",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ReversedRange",
			query:      "?from=2024-03-31&to=2024-03-01",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "ListFails",
			query: "",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, 0, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			h := NewHandler(export.NewService(transaction.NewService(repo, 10), nil))
			h.now = func() time.Time { return time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC) }

			r := chi.NewRouter()
			h.Routes(r)

			req := httptest.NewRequest(http.MethodGet, "/receipts"+tt.query, nil)
			req = req.WithContext(auth.WithUserID(req.Context(), userID))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipts_20240402.zip")

			body := rec.Body.Bytes()
			zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
			require.NoError(t, err)
			require.Len(t, zr.File, 1)
			assert.Equal(t, "transactions.csv", zr.File[0].Name)
		})
	}
}

func TestHandler_DownloadUnauthenticated(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(export.NewService(&transaction.Service{}, nil)).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/receipts", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
