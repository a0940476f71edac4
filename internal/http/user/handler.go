package user

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smritirangarajan/spenderella/internal/http/render"
	"github.com/smritirangarajan/spenderella/internal/user"
)

type Handler struct {
	svc          *user.Service
	maxImageSize int64
}

func NewHandler(svc *user.Service, maxImageSize int64) *Handler {
	return &Handler{svc: svc, maxImageSize: maxImageSize}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/current", h.current)
	r.Put("/update", h.update)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	u, err := h.svc.Current(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			render.Error(w, http.StatusNotFound, render.CodeNotFound, "User not found")
			return
		}

		render.Internal(w, r, err)

		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message": "User fetched successfully",
		"user":    u,
	})
}

type updateForm struct {
	Name *string `json:"name" validate:"omitnil,min=1,max=100"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	picture, _, err := render.FormFile(w, r, "profilePicture", h.maxImageSize)
	if err != nil {
		render.UploadError(w, r, err)
		return
	}

	var form updateForm
	if vals, ok := r.MultipartForm.Value["name"]; ok && len(vals) > 0 {
		form.Name = new(strings.TrimSpace(vals[0]))
	}

	if !render.Check(w, form) {
		return
	}

	u, err := h.svc.Update(r.Context(), userID, user.UpdateParams{
		Name:           form.Name,
		ProfilePicture: picture,
	})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			render.Error(w, http.StatusNotFound, render.CodeNotFound, "User not found")
			return
		}

		render.UploadError(w, r, err)

		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message": "User profile updated successfully",
		"data":    u,
	})
}
