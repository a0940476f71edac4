package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/ai"
	"github.com/smritirangarajan/spenderella/internal/importer"
	"github.com/smritirangarajan/spenderella/internal/storage"
	"github.com/smritirangarajan/spenderella/internal/transaction"
)

var ErrUnreadable = errors.New("receipt could not be read")

const defaultCategory = "Other"

// CategorySuggester looks up a learned category for a title.
type CategorySuggester interface {
	Suggest(ctx context.Context, userID uuid.UUID, title string) (string, error)
}

// Result is a prefilled transaction form. Amount is in cents.
type Result struct {
	Title         string                     `json:"title"`
	Amount        int64                      `json:"amount"`
	Date          time.Time                  `json:"date"`
	Description   string                     `json:"description"`
	Category      string                     `json:"category"`
	Type          transaction.Type           `json:"type"`
	PaymentMethod *transaction.PaymentMethod `json:"paymentMethod"`
	ReceiptURL    string                     `json:"receiptUrl"`
}

type Scanner struct {
	gen     ai.Generator
	uploads storage.Uploader
	rules   CategorySuggester
	maxSize int64
	now     func() time.Time
}

func NewScanner(gen ai.Generator, uploads storage.Uploader, rules CategorySuggester, maxSize int64) *Scanner {
	return &Scanner{gen: gen, uploads: uploads, rules: rules, maxSize: maxSize, now: time.Now}
}

func prompt() string {
	methods := make([]string, len(transaction.PaymentMethods))
	for i, m := range transaction.PaymentMethods {
		methods[i] = string(m)
	}

	return "You are a receipt reader for a personal finance app.\n\n" +
		"Read the attached receipt image and return STRICT JSON only, one object with these fields:\n" +
		"- \"title\": short merchant or purchase name\n" +
		"- \"amount\": total paid as a positive number\n" +
		"- \"date\": purchase date as YYYY-MM-DD\n" +
		"- \"description\": one sentence describing the purchase\n" +
		"- \"category\": a spending category such as Groceries, Dining, Transport, Utilities, Shopping, Health\n" +
		"- \"type\": \"EXPENSE\" unless the receipt is a refund, then \"INCOME\"\n" +
		"- \"paymentMethod\": one of " + strings.Join(methods, ", ") + ", or null\n\n" +
		"If the image is not a receipt, return {}.\n" +
		"Do NOT wrap the response in code fences."
}

type rawReceipt struct {
	Title         any `json:"title"`
	Amount        any `json:"amount"`
	Date          any `json:"date"`
	Description   any `json:"description"`
	Category      any `json:"category"`
	Type          any `json:"type"`
	PaymentMethod any `json:"paymentMethod"`
}

// text renders a decoded JSON value as the raw cell text the normalizers expect.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Scan stores the image and extracts a transaction from it.
func (s *Scanner) Scan(ctx context.Context, userID uuid.UUID, image []byte) (*Result, error) {
	contentType, err := storage.SniffImage(image, s.maxSize)
	if err != nil {
		return nil, err
	}

	url, err := s.uploads.Upload(ctx, storage.ObjectName("receipts", userID, contentType), contentType, image)
	if err != nil {
		return nil, fmt.Errorf("uploading receipt: %w", err)
	}

	out, err := s.gen.GenerateJSON(ctx, prompt(), ai.Attachment{MIMEType: contentType, Data: image})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(out)))
	dec.UseNumber()

	var raw rawReceipt
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decoding model output: %v", ErrUnreadable, err)
	}

	res, err := s.normalize(raw)
	if err != nil {
		return nil, err
	}

	res.ReceiptURL = url

	if learned, err := s.rules.Suggest(ctx, userID, res.Title); err != nil {
		slog.Warn("failed to look up category rule", "error", err)
	} else if learned != "" {
		res.Category = learned
	}

	return res, nil
}

func (s *Scanner) normalize(raw rawReceipt) (*Result, error) {
	amount, ok := importer.NormalizeAmount(text(raw.Amount))
	if !ok {
		return nil, fmt.Errorf("%w: no total found", ErrUnreadable)
	}

	cents, ok := importer.ToCents(amount.Abs())
	if !ok || cents <= 0 {
		return nil, fmt.Errorf("%w: no total found", ErrUnreadable)
	}

	res := &Result{
		Title:       importer.NormalizeText(text(raw.Title)),
		Amount:      cents,
		Description: importer.NormalizeText(text(raw.Description)),
		Category:    importer.NormalizeText(text(raw.Category)),
		Type:        transaction.TypeExpense,
	}

	if res.Title == "" {
		res.Title = "Receipt"
	}

	if res.Category == "" {
		res.Category = defaultCategory
	}

	if d, ok := importer.NormalizeDate(text(raw.Date)); ok {
		res.Date = d
	} else {
		now := s.now().UTC()
		res.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	if t, ok := importer.NormalizeType(text(raw.Type)); ok {
		res.Type = t
	}

	if m, ok := importer.NormalizePaymentMethod(text(raw.PaymentMethod)); ok {
		res.PaymentMethod = &m
	}

	return res, nil
}
