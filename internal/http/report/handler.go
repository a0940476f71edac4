package report

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smritirangarajan/spenderella/internal/analytics"
	"github.com/smritirangarajan/spenderella/internal/http/render"
	"github.com/smritirangarajan/spenderella/internal/report"
)

type Handler struct {
	svc *report.Service
	now func() time.Time
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/all", h.list)
	r.Get("/generate", h.generate)
	r.Get("/setting", h.setting)
	r.Put("/update-setting", h.updateSetting)
}

func positiveInt(s string) (int, bool) {
	if s == "" {
		return 0, true
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}

	return n, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	pageSize, okSize := positiveInt(r.URL.Query().Get("pageSize"))
	pageNumber, okNumber := positiveInt(r.URL.Query().Get("pageNumber"))

	if !okSize || !okNumber {
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "pageSize and pageNumber must be positive integers")
		return
	}

	res, err := h.svc.List(r.Context(), userID, min(pageSize, 100), pageNumber)
	if err != nil {
		render.Internal(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message":    "Reports history fetched successfully",
		"reports":    res.Reports,
		"pagination": res.Pagination,
	})
}

// generate builds a report for an arbitrary window without sending it. The default window is last month.
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	from, to := report.PreviousMonth(h.now())

	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "from must be YYYY-MM-DD")
			return
		}

		from = t
	}

	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "to must be YYYY-MM-DD")
			return
		}

		to = t
	}

	data, err := h.svc.Generate(r.Context(), userID, from, to)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRange) {
			render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "from must not be after to")
			return
		}

		render.Internal(w, r, err)

		return
	}

	if data == nil {
		render.JSON(w, http.StatusOK, map[string]any{
			"message": "No activity in the selected period",
			"data":    nil,
		})

		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message": "Report generated successfully",
		"data":    data,
	})
}

func (h *Handler) setting(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	setting, err := h.svc.Setting(r.Context(), userID)
	if err != nil {
		if errors.Is(err, report.ErrSettingNotFound) {
			render.Error(w, http.StatusNotFound, render.CodeNotFound, "Report setting not found")
			return
		}

		render.Internal(w, r, err)

		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message":       "Report setting fetched successfully",
		"reportSetting": setting,
	})
}

type updateSettingRequest struct {
	IsEnabled *bool `json:"isEnabled" validate:"required"`
}

func (h *Handler) updateSetting(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	var req updateSettingRequest
	if !render.Decode(w, r, &req) {
		return
	}

	setting, err := h.svc.UpdateSetting(r.Context(), userID, *req.IsEnabled)
	if err != nil {
		if errors.Is(err, report.ErrSettingNotFound) {
			render.Error(w, http.StatusNotFound, render.CodeNotFound, "Report setting not found")
			return
		}

		render.Internal(w, r, err)

		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message":       "Report setting updated successfully",
		"reportSetting": setting,
	})
}
