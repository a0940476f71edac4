package importcsv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smritirangarajan/spenderella/internal/auth"
	"github.com/smritirangarajan/spenderella/internal/importer"
	"github.com/smritirangarajan/spenderella/internal/transaction"
)

var userID = uuid.MustParse("5c1d2e3f-4a5b-4c6d-8e7f-9a0b1c2d3e4f")

type fakeCreator struct {
	got []transaction.CreateParams
	err error
}

func (f *fakeCreator) CreateBatch(_ context.Context, id uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.got = params
	txs := make([]*transaction.Transaction, len(params))

	for i := range params {
		txs[i] = &transaction.Transaction{ID: uuid.New(), UserID: id}
	}

	return txs, nil
}

type client struct {
	t      *testing.T
	router http.Handler
}

func newClient(t *testing.T, limits importer.Limits, creator BatchCreator) *client {
	r := chi.NewRouter()
	NewHandler(importer.NewSessions(limits, time.Minute), creator).Routes(r)

	return &client{t: t, router: r}
}

func (c *client) send(req *http.Request) (int, map[string]any) {
	c.t.Helper()

	req = req.WithContext(auth.WithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(c.t, json.NewDecoder(rec.Body).Decode(&body))

	return rec.Code, body
}

func (c *client) json(method, path, body string) (int, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

func (c *client) upload(name, content string) (int, map[string]any) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(c.t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req)
}

const statement = "Date,Title,Amount,Type,Category,Method\n" +
	"2024-03-01,Salary,2500.00,income,Salary,bank transfer\n" +
	"2024-03-02,Coffee,$4.50,expense,Food,card\n"

const fullMapping = `{"mappings":{"Date":"date","Title":"title","Amount":"amount","Type":"type","Category":"category","Method":"paymentMethod"}}`

func TestHandler_FullFlow(t *testing.T) {
	creator := &fakeCreator{}
	c := newClient(t, importer.Limits{MaxFileSize: 1 << 20, MaxRows: 10}, creator)

	code, body := c.upload("march.csv", statement)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "AWAITING_MAPPING", body["state"])
	assert.EqualValues(t, 2, body["rowCount"])

	code, body = c.json(http.MethodPut, "/mapping", fullMapping)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "AWAITING_CONFIRMATION", body["state"])
	assert.Empty(t, body["rowErrors"])

	code, body = c.json(http.MethodPost, "/confirm", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["imported"])

	require.Len(t, creator.got, 2)
	assert.Equal(t, "Salary", creator.got[0].Title)
	assert.Equal(t, int64(250000), creator.got[0].Amount)
	assert.Equal(t, transaction.TypeExpense, creator.got[1].Type)
	assert.Equal(t, int64(450), creator.got[1].Amount)

	code, _ = c.json(http.MethodDelete, "/", "")
	assert.Equal(t, http.StatusConflict, code, "a finished import only accepts reset")

	code, body = c.json(http.MethodPost, "/reset", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "AWAITING_FILE", body["state"])
}

func TestHandler_MappingErrors(t *testing.T) {
	c := newClient(t, importer.Limits{MaxFileSize: 1 << 20, MaxRows: 10}, &fakeCreator{})

	code, _ := c.upload("march.csv", statement)
	require.Equal(t, http.StatusOK, code)

	code, body := c.json(http.MethodPut, "/mapping", `{"mappings":{"Date":"date","Title":"date"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", body["errorCode"])
	assert.Len(t, body["conflicts"], 1)
	assert.NotEmpty(t, body["missing"])

	code, _ = c.json(http.MethodPut, "/mapping", `{"mappings":{"Nope":"title"}}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.json(http.MethodPatch, "/mapping", `{"mappings":{"Category":"skip","Date":"skip"}}`)
	require.Equal(t, http.StatusOK, code)

	code, _ = c.json(http.MethodPatch, "/mapping", `{"mappings":{"Date":"date","Zzz":"title"}}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = c.json(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, code)

	mapping, ok := body["mapping"].(map[string]any)
	require.True(t, ok)
	assert.NotEqual(t, "date", mapping["Date"], "a rejected request leaves every column as it was")

	code, _ = c.json(http.MethodPut, "/mapping", `{"mappings":{"Date":"merchant"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_RowErrorsAndPersistFailure(t *testing.T) {
	bad := "Date,Title,Amount,Type,Category,Method\n" +
		"2024-03-01,Salary,abc,income,Salary,card\n"

	c := newClient(t, importer.Limits{MaxFileSize: 1 << 20, MaxRows: 10}, &fakeCreator{})

	code, _ := c.upload("bad.csv", bad)
	require.Equal(t, http.StatusOK, code)

	code, body := c.json(http.MethodPut, "/mapping", fullMapping)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["rowErrors"], 1)

	code, body = c.json(http.MethodPost, "/confirm", "")
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Len(t, body["rowErrors"], 1)

	failing := newClient(t, importer.Limits{MaxFileSize: 1 << 20, MaxRows: 10}, &fakeCreator{err: errors.New("db down")})

	code, _ = failing.upload("march.csv", statement)
	require.Equal(t, http.StatusOK, code)
	code, _ = failing.json(http.MethodPut, "/mapping", fullMapping)
	require.Equal(t, http.StatusOK, code)

	code, _ = failing.json(http.MethodPost, "/confirm", "")
	assert.Equal(t, http.StatusBadGateway, code)

	code, body = failing.json(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "AWAITING_CONFIRMATION", body["state"])
	assert.Equal(t, "db down", body["lastError"])
}

func TestHandler_UploadErrors(t *testing.T) {
	type testCase struct {
		name       string
		limits     importer.Limits
		content    string
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "TooManyRows",
			limits:     importer.Limits{MaxFileSize: 1 << 20, MaxRows: 1},
			content:    statement,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "Empty",
			limits:     importer.Limits{MaxFileSize: 1 << 20, MaxRows: 10},
			content:    "",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, tt.limits, &fakeCreator{})

			code, body := c.upload("f.csv", tt.content)
			assert.Equal(t, tt.wantStatus, code)

			_, body = c.json(http.MethodGet, "/", "")
			assert.Equal(t, "AWAITING_FILE", body["state"])
		})
	}
}

func TestHandler_ConfirmBeforeUpload(t *testing.T) {
	c := newClient(t, importer.Limits{MaxFileSize: 1 << 20, MaxRows: 10}, &fakeCreator{})

	code, body := c.json(http.MethodPost, "/confirm", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", body["errorCode"])
}
