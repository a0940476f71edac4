package analytics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/analytics"
	"github.com/smritirangarajan/spenderella/internal/http/render"
)

type Handler struct {
	svc *analytics.Service
	now func() time.Time
}

func NewHandler(svc *analytics.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", serve(h, "Summary fetched successfully", h.svc.Summary))
	r.Get("/chart", serve(h, "Chart fetched successfully", h.svc.Chart))
	r.Get("/expense-breakdown", serve(h, "Expense breakdown fetched successfully", h.svc.ExpenseBreakdown))
}

func (h *Handler) dateRange(r *http.Request) (analytics.Range, error) {
	q := r.URL.Query()

	var from, to *time.Time

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &from},
		{"to", &to},
	} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return analytics.Range{}, analytics.ErrInvalidRange
		}

		*p.dst = new(t)
	}

	return analytics.Resolve(analytics.Preset(q.Get("preset")), from, to, h.now())
}

func serve[T any](h *Handler, message string, load func(context.Context, uuid.UUID, analytics.Range) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := render.UserID(w, r)
		if !ok {
			return
		}

		rng, err := h.dateRange(r)
		if err != nil {
			if errors.Is(err, analytics.ErrUnknownPreset) || errors.Is(err, analytics.ErrInvalidRange) {
				render.Error(w, http.StatusBadRequest, render.CodeBadRequest, err.Error())
				return
			}

			render.Internal(w, r, err)

			return
		}

		data, err := load(r.Context(), userID, rng)
		if err != nil {
			render.Internal(w, r, err)
			return
		}

		render.JSON(w, http.StatusOK, map[string]any{
			"message": message,
			"data":    data,
		})
	}
}
