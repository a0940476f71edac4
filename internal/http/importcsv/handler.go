package importcsv

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/http/render"
	"github.com/smritirangarajan/spenderella/internal/importer"
	"github.com/smritirangarajan/spenderella/internal/transaction"
)

// BatchCreator stores a validated import for one user.
type BatchCreator interface {
	CreateBatch(ctx context.Context, userID uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error)
}

type Handler struct {
	sessions *importer.Sessions
	txs      BatchCreator
}

func NewHandler(sessions *importer.Sessions, txs BatchCreator) *Handler {
	return &Handler{sessions: sessions, txs: txs}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/", h.upload)
	r.Delete("/", h.cancel)
	r.Post("/mapping/suggest", h.suggest)
	r.Patch("/mapping", h.assign)
	r.Put("/mapping", h.submitMapping)
	r.Post("/mapping/edit", h.editMapping)
	r.Post("/confirm", h.confirm)
	r.Post("/reset", h.reset)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*importer.Session, bool) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return nil, false
	}

	return h.sessions.Get(userID.String()), true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	render.JSON(w, http.StatusOK, toSessionResponse(sess.Snapshot()))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	limit := h.sessions.Limits().MaxFileSize
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, &importer.LimitError{Kind: importer.LimitFileSize, Limit: limit, Actual: maxErr.Limit})
			return
		}

		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "No file uploaded")

		return
	}
	defer file.Close()

	if err := sess.Upload(hdr.Filename, file, hdr.Size); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toSessionResponse(sess.Snapshot()))
}

const formOverhead = 1 << 20

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.Suggest(); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toSessionResponse(sess.Snapshot()))
}

type mappingRequest struct {
	Mappings map[string]importer.Field `json:"mappings" validate:"required"`
}

func (h *Handler) applyMapping(w http.ResponseWriter, r *http.Request) (*importer.Session, bool) {
	sess, ok := h.session(w, r)
	if !ok {
		return nil, false
	}

	var req mappingRequest
	if !render.Decode(w, r, &req) {
		return nil, false
	}

	if err := sess.AssignAll(req.Mappings); err != nil {
		if errors.Is(err, importer.ErrIllegalTransition) {
			writeError(w, r, err)
			return nil, false
		}

		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, err.Error())

		return nil, false
	}

	return sess, true
}

// assign updates column choices without leaving the mapping step.
func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.applyMapping(w, r)
	if !ok {
		return
	}

	render.JSON(w, http.StatusOK, toSessionResponse(sess.Snapshot()))
}

func (h *Handler) submitMapping(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.applyMapping(w, r)
	if !ok {
		return
	}

	if err := sess.SubmitMapping(); err != nil {
		writeError(w, r, err)
		return
	}

	snap := sess.Snapshot()

	_, rowErrors, err := sess.Check()
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := toSessionResponse(snap)
	resp.RowErrors = orEmpty(rowErrors)

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) editMapping(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.EditMapping(); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toSessionResponse(sess.Snapshot()))
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	sess := h.sessions.Get(userID.String())

	creator := importer.BulkCreatorFunc(func(ctx context.Context, records []importer.Record) (int, error) {
		params := make([]transaction.CreateParams, len(records))
		for i, rec := range records {
			params[i] = rec.Params()
		}

		txs, err := h.txs.CreateBatch(ctx, userID, params)
		if err != nil {
			return 0, err
		}

		return len(txs), nil
	})

	n, err := sess.Confirm(r.Context(), creator)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message":  "Transactions imported successfully",
		"imported": n,
	})
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.Reset(); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toSessionResponse(sess.Snapshot()))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.Cancel(); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toSessionResponse(sess.Snapshot()))
}
