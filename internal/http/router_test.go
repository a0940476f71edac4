package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/smritirangarajan/spenderella/internal/auth"
	"github.com/smritirangarajan/spenderella/internal/http/analytics"
	authHandler "github.com/smritirangarajan/spenderella/internal/http/auth"
	"github.com/smritirangarajan/spenderella/internal/http/export"
	"github.com/smritirangarajan/spenderella/internal/http/importcsv"
	"github.com/smritirangarajan/spenderella/internal/http/matching"
	mw "github.com/smritirangarajan/spenderella/internal/http/middleware"
	"github.com/smritirangarajan/spenderella/internal/http/report"
	"github.com/smritirangarajan/spenderella/internal/http/transaction"
	"github.com/smritirangarajan/spenderella/internal/http/user"
	"github.com/smritirangarajan/spenderella/internal/importer"
)

func newTestRouter(tokens *auth.Tokens) http.Handler {
	return New(Handlers{
		Auth:        authHandler.NewHandler(nil),
		User:        user.NewHandler(nil, 1024),
		Transaction: transaction.NewHandler(nil, nil, 1024),
		Import:      importcsv.NewHandler(importer.NewSessions(importer.Limits{MaxFileSize: 1024, MaxRows: 10}, time.Minute), nil),
		Matching:    matching.NewHandler(nil),
		Analytics:   analytics.NewHandler(nil),
		Report:      report.NewHandler(nil),
		Export:      export.NewHandler(nil),
	}, Options{
		CORSOrigins: []string{"http://localhost:5173"},
		Tokens:      tokens,
		AuthLimiter: mw.NewRateLimiter(0.001, 1, time.Minute),
	})
}

func TestRouter(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)

	token, _, err := tokens.Issue(uuid.New())
	assert.NoError(t, err)

	type testCase struct {
		name        string
		method      string
		path        string
		contentType string
		token       string
		wantStatus  int
	}

	tests := []testCase{
		{name: "Health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "UnknownRoute", method: http.MethodGet, path: "/api/v1/nope", wantStatus: http.StatusNotFound},
		{name: "ProtectedWithoutToken", method: http.MethodGet, path: "/api/v1/transaction/all", wantStatus: http.StatusUnauthorized},
		{name: "ExportWithoutToken", method: http.MethodGet, path: "/api/v1/export/receipts", wantStatus: http.StatusUnauthorized},
		{name: "ImportWithoutToken", method: http.MethodGet, path: "/api/v1/import", wantStatus: http.StatusUnauthorized},
		{name: "ImportWithToken", method: http.MethodGet, path: "/api/v1/import", token: token, wantStatus: http.StatusOK},
		{name: "AuthRejectsForm", method: http.MethodPost, path: "/api/v1/auth/login", contentType: "text/plain", wantStatus: http.StatusUnsupportedMediaType},
	}

	router := newTestRouter(tokens)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("x"))
			req.RemoteAddr = uuid.NewString() + ":1"

			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouter_AuthRateLimit(t *testing.T) {
	router := newTestRouter(auth.NewTokens("secret", time.Hour))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("x"))
		req.Header.Set("Content-Type", "text/plain")
		req.RemoteAddr = "203.0.113.7:4000"

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		return rec.Code
	}

	assert.Equal(t, http.StatusUnsupportedMediaType, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
