package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smritirangarajan/spenderella/internal/export"
	"github.com/smritirangarajan/spenderella/internal/http/render"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/receipts", h.download)
}

func parseDay(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}

	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return &t, nil
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	from, err := parseDay(r.URL.Query().Get("from"), false)
	if err != nil {
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "Invalid from date")
		return
	}

	to, err := parseDay(r.URL.Query().Get("to"), true)
	if err != nil {
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "Invalid to date")
		return
	}

	if from != nil && to != nil && to.Before(*from) {
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "from must not be after to")
		return
	}

	txs, err := h.svc.Collect(r.Context(), userID, from, to)
	if err != nil {
		render.Internal(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"receipts_%s.zip\"", h.now().Format("20060102")))

	res, err := h.svc.WriteArchive(r.Context(), w, txs)
	if err != nil {
		slog.Error("failed to write receipt archive", "user_id", userID, "error", err)
		return
	}

	slog.Info("receipt archive exported", "user_id", userID,
		"transactions", res.Transactions, "receipts", res.Receipts, "missing", res.Missing)
}
