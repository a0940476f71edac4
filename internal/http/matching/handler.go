package matching

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smritirangarajan/spenderella/internal/http/render"
	"github.com/smritirangarajan/spenderella/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "title query parameter is required")
		return
	}

	category, err := h.svc.Suggest(r.Context(), userID, title)
	if err != nil {
		render.Internal(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, suggestResponse{Title: title, Category: category})
}

type learnRequest struct {
	Pattern  string `json:"pattern" validate:"required,max=255"`
	Category string `json:"category" validate:"required,max=100"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	var req learnRequest
	if !render.Decode(w, r, &req) {
		return
	}

	if err := h.svc.Learn(r.Context(), userID, req.Pattern, req.Category); err != nil {
		if errors.Is(err, matching.ErrEmptyRule) {
			render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "pattern and category are required")
			return
		}

		render.Internal(w, r, err)

		return
	}

	render.JSON(w, http.StatusCreated, map[string]any{"message": "Category rule saved"})
}
