package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smritirangarajan/spenderella/internal/auth"
	"github.com/smritirangarajan/spenderella/internal/http/render"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (req *registerRequest) Normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !render.Decode(w, r, &req) {
		return
	}

	u, err := h.svc.Register(r.Context(), auth.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			render.Error(w, http.StatusConflict, render.CodeConflict, "User already exists")
			return
		}

		render.Internal(w, r, err)

		return
	}

	render.JSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    u,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (req *loginRequest) Normalize() {
	req.Email = strings.TrimSpace(req.Email)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !render.Decode(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			render.Error(w, http.StatusUnauthorized, render.CodeUnauthorized, "Invalid email or password")
			return
		}

		render.Internal(w, r, err)

		return
	}

	render.JSON(w, http.StatusOK, res)
}

// Authenticate rejects requests without a valid bearer token and stores the caller's id in the context.
func Authenticate(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				render.Error(w, http.StatusUnauthorized, render.CodeUnauthorized, "Unauthorized access")
				return
			}

			userID, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				render.Error(w, http.StatusUnauthorized, render.CodeUnauthorized, "Unauthorized access")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}
