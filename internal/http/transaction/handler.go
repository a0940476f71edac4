package transaction

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/http/render"
	"github.com/smritirangarajan/spenderella/internal/importer"
	"github.com/smritirangarajan/spenderella/internal/receipt"
	"github.com/smritirangarajan/spenderella/internal/transaction"
)

type Handler struct {
	svc            *transaction.Service
	scanner        *receipt.Scanner
	maxReceiptSize int64
}

// NewHandler builds the transaction routes. scanner may be nil when no model is configured.
func NewHandler(svc *transaction.Service, scanner *receipt.Scanner, maxReceiptSize int64) *Handler {
	return &Handler{svc: svc, scanner: scanner, maxReceiptSize: maxReceiptSize}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/create", h.create)
	r.Get("/all", h.list)
	r.Get("/{id}", h.get)
	r.Put("/duplicate/{id}", h.duplicate)
	r.Put("/update/{id}", h.update)
	r.Post("/bulk-transaction", h.bulkCreate)
	r.Delete("/delete/{id}", h.delete)
	r.Delete("/bulk-delete", h.bulkDelete)
	r.Post("/scan-receipt", h.scanReceipt)
}

type createTransactionRequest struct {
	Title             string                     `json:"title" validate:"required,max=255"`
	Type              transaction.Type           `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Amount            float64                    `json:"amount" validate:"gt=0"`
	Category          string                     `json:"category" validate:"required,max=100"`
	Date              string                     `json:"date" validate:"required"`
	Description       string                     `json:"description" validate:"max=1000"`
	PaymentMethod     *transaction.PaymentMethod `json:"paymentMethod" validate:"omitnil,oneof=CARD BANK_TRANSFER MOBILE_PAYMENT AUTO_DEBIT CASH OTHER"`
	ReceiptURL        string                     `json:"receiptUrl" validate:"omitempty,url"`
	IsRecurring       bool                       `json:"isRecurring"`
	RecurringInterval *transaction.Frequency     `json:"recurringInterval" validate:"omitnil,oneof=DAILY WEEKLY MONTHLY YEARLY"`
}

// params finishes validation that struct tags cannot express. prefix qualifies field names inside a batch.
func (req createTransactionRequest) params(prefix string) (transaction.CreateParams, []render.FieldError) {
	var errs []render.FieldError

	amount, ferr := cents(prefix+"amount", req.Amount)
	if ferr != nil {
		errs = append(errs, *ferr)
	}

	date, ok := importer.NormalizeDate(req.Date)
	if !ok {
		errs = append(errs, render.FieldError{Field: prefix + "date", Message: "Invalid date format"})
	}

	if req.IsRecurring && req.RecurringInterval == nil {
		errs = append(errs, render.FieldError{
			Field:   prefix + "recurringInterval",
			Message: "Recurring interval is required for recurring transactions",
		})
	}

	return transaction.CreateParams{
		Title:         strings.TrimSpace(req.Title),
		Type:          req.Type,
		Amount:        amount,
		Category:      strings.TrimSpace(req.Category),
		Date:          date,
		Description:   strings.TrimSpace(req.Description),
		PaymentMethod: req.PaymentMethod,
		ReceiptURL:    req.ReceiptURL,
		IsRecurring:   req.IsRecurring,
		Frequency:     req.RecurringInterval,
	}, errs
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if !render.Decode(w, r, &req) {
		return
	}

	params, errs := req.params("")
	if len(errs) > 0 {
		render.Validation(w, errs)
		return
	}

	tx, err := h.svc.Create(r.Context(), userID, params)
	if err != nil {
		render.Internal(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, map[string]any{
		"message":     "Transaction created successfully",
		"transaction": toResponse(tx),
	})
}

const (
	recurringOnly    = "RECURRING"
	nonRecurringOnly = "NON_RECURRING"
)

func parseListFilter(userID uuid.UUID, r *http.Request) (transaction.ListFilter, []render.FieldError) {
	q := r.URL.Query()
	filter := transaction.ListFilter{
		UserID:  userID,
		Keyword: strings.TrimSpace(q.Get("keyword")),
	}

	var errs []render.FieldError

	if s := q.Get("type"); s != "" {
		t := transaction.Type(strings.ToUpper(s))
		if !t.Valid() {
			errs = append(errs, render.FieldError{Field: "type", Message: "Must be one of: INCOME, EXPENSE"})
		} else {
			filter.Type = new(t)
		}
	}

	switch strings.ToUpper(q.Get("recurringStatus")) {
	case "":
	case recurringOnly:
		filter.Recurring = new(true)
	case nonRecurringOnly:
		filter.Recurring = new(false)
	default:
		errs = append(errs, render.FieldError{Field: "recurringStatus", Message: "Must be one of: RECURRING, NON_RECURRING"})
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"pageSize", &filter.PageSize},
		{"pageNumber", &filter.PageNumber},
	} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}

		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			errs = append(errs, render.FieldError{Field: p.name, Message: "Must be a positive integer"})
			continue
		}

		*p.dst = min(n, 100)
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &filter.StartDate},
		{"to", &filter.EndDate},
	} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			errs = append(errs, render.FieldError{Field: p.name, Message: "Invalid date format"})
			continue
		}

		*p.dst = new(t)
	}

	return filter, errs
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	filter, errs := parseListFilter(userID, r)
	if len(errs) > 0 {
		render.Validation(w, errs)
		return
	}

	res, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Internal(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message":      "Transactions fetched successfully",
		"transactions": toResponseList(res.Transactions),
		"pagination":   res.Pagination,
	})
}

func transactionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "Invalid transaction id")
		return uuid.Nil, false
	}

	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		render.Error(w, http.StatusNotFound, render.CodeNotFound, "Transaction not found")
	case errors.Is(err, transaction.ErrBatchTooLarge), errors.Is(err, transaction.ErrEmptyBatch):
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, err.Error())
	default:
		render.Internal(w, r, err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	id, ok := transactionID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message":     "Transaction fetched successfully",
		"transaction": toResponse(tx),
	})
}

func (h *Handler) duplicate(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	id, ok := transactionID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Duplicate(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message":     "Transaction duplicated successfully",
		"transaction": toResponse(tx),
	})
}

type updateTransactionRequest struct {
	Title             *string                    `json:"title" validate:"omitnil,min=1,max=255"`
	Type              *transaction.Type          `json:"type" validate:"omitnil,oneof=INCOME EXPENSE"`
	Amount            *float64                   `json:"amount" validate:"omitnil,gt=0"`
	Category          *string                    `json:"category" validate:"omitnil,min=1,max=100"`
	Date              *string                    `json:"date"`
	Description       *string                    `json:"description" validate:"omitnil,max=1000"`
	PaymentMethod     *transaction.PaymentMethod `json:"paymentMethod" validate:"omitnil,oneof=CARD BANK_TRANSFER MOBILE_PAYMENT AUTO_DEBIT CASH OTHER"`
	ReceiptURL        *string                    `json:"receiptUrl" validate:"omitnil,max=2048"`
	IsRecurring       *bool                      `json:"isRecurring"`
	RecurringInterval *transaction.Frequency     `json:"recurringInterval" validate:"omitnil,oneof=DAILY WEEKLY MONTHLY YEARLY"`
}

func (req updateTransactionRequest) params() (transaction.UpdateParams, []render.FieldError) {
	p := transaction.UpdateParams{
		Type:          req.Type,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		ReceiptURL:    req.ReceiptURL,
		IsRecurring:   req.IsRecurring,
		Frequency:     req.RecurringInterval,
	}

	if req.Title != nil {
		p.Title = new(strings.TrimSpace(*req.Title))
	}

	if req.Category != nil {
		p.Category = new(strings.TrimSpace(*req.Category))
	}

	var errs []render.FieldError

	if req.Amount != nil {
		amount, ferr := cents("amount", *req.Amount)
		if ferr != nil {
			errs = append(errs, *ferr)
		} else {
			p.Amount = new(amount)
		}
	}

	if req.Date != nil {
		date, ok := importer.NormalizeDate(*req.Date)
		if !ok {
			errs = append(errs, render.FieldError{Field: "date", Message: "Invalid date format"})
		} else {
			p.Date = new(date)
		}
	}

	return p, errs
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	id, ok := transactionID(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if !render.Decode(w, r, &req) {
		return
	}

	params, errs := req.params()
	if len(errs) > 0 {
		render.Validation(w, errs)
		return
	}

	tx, err := h.svc.Update(r.Context(), userID, id, params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message":     "Transaction updated successfully",
		"transaction": toResponse(tx),
	})
}

type bulkCreateRequest struct {
	Transactions []createTransactionRequest `json:"transactions" validate:"required,min=1,dive"`
}

func (h *Handler) bulkCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	var req bulkCreateRequest
	if !render.Decode(w, r, &req) {
		return
	}

	params := make([]transaction.CreateParams, len(req.Transactions))

	var errs []render.FieldError

	for i, item := range req.Transactions {
		p, itemErrs := item.params(fmt.Sprintf("transactions[%d].", i))
		params[i] = p
		errs = append(errs, itemErrs...)
	}

	if len(errs) > 0 {
		render.Validation(w, errs)
		return
	}

	txs, err := h.svc.CreateBatch(r.Context(), userID, params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, map[string]any{
		"message":       "Bulk transaction inserted successfully",
		"insertedCount": len(txs),
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	id, ok := transactionID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{"message": "Transaction deleted successfully"})
}

type bulkDeleteRequest struct {
	TransactionIDs []uuid.UUID `json:"transactionIds" validate:"required,min=1"`
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	var req bulkDeleteRequest
	if !render.Decode(w, r, &req) {
		return
	}

	n, err := h.svc.BulkDelete(r.Context(), userID, req.TransactionIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message":      "Transactions deleted successfully",
		"deletedCount": n,
	})
}

func (h *Handler) scanReceipt(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	if h.scanner == nil {
		render.Error(w, http.StatusServiceUnavailable, render.CodeUnavailable, "Receipt scanning is not configured")
		return
	}

	image, _, err := render.FormFile(w, r, "receipt", h.maxReceiptSize)
	if err != nil {
		render.UploadError(w, r, err)
		return
	}

	if image == nil {
		render.Error(w, http.StatusBadRequest, render.CodeBadRequest, "No file uploaded")
		return
	}

	res, err := h.scanner.Scan(r.Context(), userID, image)
	if err != nil {
		if errors.Is(err, receipt.ErrUnreadable) {
			render.Error(w, http.StatusUnprocessableEntity, render.CodeUnprocessable, "Receipt could not be read")
			return
		}

		render.UploadError(w, r, err)

		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"message": "Receipt scanned successfully",
		"data":    toReceiptResponse(res),
	})
}
