package importcsv

import (
	"errors"
	"net/http"

	"github.com/smritirangarajan/spenderella/internal/http/render"
	"github.com/smritirangarajan/spenderella/internal/importer"
)

type sessionResponse struct {
	State      importer.State              `json:"state"`
	FileName   string                      `json:"fileName,omitempty"`
	Charset    string                      `json:"charset,omitempty"`
	Columns    []string                    `json:"columns"`
	RowCount   int                         `json:"rowCount"`
	SampleRows []importer.RawRow           `json:"sampleRows"`
	Mapping    map[string]importer.Field   `json:"mapping"`
	Available  map[string][]importer.Field `json:"available"`
	Conflicts  []importer.ColumnError      `json:"conflicts"`
	Missing    []importer.Field            `json:"missing"`
	RowErrors  []importer.RowError         `json:"rowErrors"`
	LastError  string                      `json:"lastError,omitempty"`
	Imported   int                         `json:"imported"`
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

func toSessionResponse(s importer.Snapshot) sessionResponse {
	resp := sessionResponse{
		State:      s.State,
		FileName:   s.FileName,
		Charset:    s.Charset,
		Columns:    orEmpty(s.Columns),
		RowCount:   s.RowCount,
		SampleRows: orEmpty(s.SampleRows),
		Mapping:    s.Mapping,
		Available:  s.Available,
		Conflicts:  orEmpty(s.Conflicts),
		Missing:    orEmpty(s.Missing),
		RowErrors:  orEmpty(s.RowErrors),
		LastError:  s.LastError,
		Imported:   s.Imported,
	}

	if resp.Mapping == nil {
		resp.Mapping = map[string]importer.Field{}
	}

	if resp.Available == nil {
		resp.Available = map[string][]importer.Field{}
	}

	return resp
}

type mappingErrorResponse struct {
	render.ErrorResponse
	Conflicts []importer.ColumnError `json:"conflicts"`
	Missing   []importer.Field       `json:"missing"`
}

type rowErrorResponse struct {
	render.ErrorResponse
	RowErrors []importer.RowError `json:"rowErrors"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		limitErr   *importer.LimitError
		mappingErr *importer.MappingError
		rowsErr    *importer.ValidationError
		persistErr *importer.PersistError
	)

	switch {
	case errors.As(err, &limitErr):
		render.Error(w, http.StatusRequestEntityTooLarge, render.CodeTooLarge, limitErr.Error())
	case errors.Is(err, importer.ErrMalformedFile):
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, err.Error())
	case errors.As(err, &mappingErr):
		render.JSON(w, http.StatusUnprocessableEntity, mappingErrorResponse{
			ErrorResponse: render.ErrorResponse{Message: mappingErr.Error(), ErrorCode: render.CodeUnprocessable},
			Conflicts:     orEmpty(mappingErr.Conflicts),
			Missing:       orEmpty(mappingErr.Missing),
		})
	case errors.As(err, &rowsErr):
		render.JSON(w, http.StatusUnprocessableEntity, rowErrorResponse{
			ErrorResponse: render.ErrorResponse{Message: rowsErr.Error(), ErrorCode: render.CodeUnprocessable},
			RowErrors:     rowsErr.Rows,
		})
	case errors.As(err, &persistErr):
		render.Error(w, http.StatusBadGateway, render.CodeBadGateway, "Failed to save transactions: "+persistErr.Error())
	case errors.Is(err, importer.ErrIllegalTransition), errors.Is(err, importer.ErrCancelled):
		render.Error(w, http.StatusConflict, render.CodeConflict, err.Error())
	default:
		render.Internal(w, r, err)
	}
}
