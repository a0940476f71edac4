package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/auth"
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeTooMany       = "TOO_MANY_REQUESTS"
	CodeUnprocessable = "UNPROCESSABLE_ENTITY"
	CodeBadGateway    = "BAD_GATEWAY"
	CodeUnavailable   = "SERVICE_UNAVAILABLE"
	CodeInternal      = "INTERNAL_SERVER_ERROR"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message   string       `json:"message"`
	ErrorCode string       `json:"errorCode"`
	Errors    []FieldError `json:"errors,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorResponse{Message: message, ErrorCode: code})
}

func Validation(w http.ResponseWriter, errs []FieldError) {
	JSON(w, http.StatusBadRequest, ErrorResponse{
		Message:   "Validation failed",
		ErrorCode: CodeValidation,
		Errors:    errs,
	})
}

// Internal logs err and writes a generic 500.
func Internal(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	Error(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// Validate runs struct-tag validation on v and returns the failures keyed by json name.
func Validate(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe), Message: message(fe)})
	}

	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}

	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Invalid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}

		return fmt.Sprintf("Must contain at least %s items", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters", fe.Param())
		}

		return fmt.Sprintf("Must contain at most %s items", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "uuid", "uuid4":
		return "Invalid id"
	}

	return fmt.Sprintf("Failed on %s", fe.Tag())
}

// Normalizer is implemented by request bodies that tidy their fields before validation.
type Normalizer interface {
	Normalize()
}

// Decode reads a JSON body into dst, normalizes it when dst is a Normalizer and validates it.
// On failure it writes the error response and returns false.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			Error(w, http.StatusBadRequest, CodeBadRequest, "Request body is required")
			return false
		}

		Error(w, http.StatusBadRequest, CodeBadRequest, "Invalid JSON body: "+err.Error())

		return false
	}

	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}

	return Check(w, dst)
}

// Check validates v and writes a VALIDATION_ERROR response when it fails.
func Check(w http.ResponseWriter, v any) bool {
	if errs := Validate(v); len(errs) > 0 {
		Validation(w, errs)
		return false
	}

	return true
}

// UserID returns the authenticated caller. It writes a 401 and returns false when the request carries none.
func UserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized access")
	}

	return id, ok
}
