package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smritirangarajan/spenderella/internal/transaction"
)

const (
	pageSize   = 100
	ledgerName = "transactions.csv"
	receiptDir = "receipts"
)

// Lister pages through a user's transactions.
type Lister interface {
	List(ctx context.Context, filter transaction.ListFilter) (*transaction.ListResult, error)
}

// Service builds receipt archives for a user's transactions.
type Service struct {
	transactions Lister
	client       *http.Client
}

// NewService creates a new export service. A nil client gets a 30 second timeout.
func NewService(txs Lister, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Service{transactions: txs, client: client}
}

// Result summarises what went into an archive.
type Result struct {
	Transactions int
	Receipts     int
	Missing      int
}

// Collect returns every transaction of the user dated within [from, to]. Nil bounds are open.
func (s *Service) Collect(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*transaction.Transaction, error) {
	filter := transaction.ListFilter{
		UserID:     userID,
		StartDate:  from,
		EndDate:    to,
		PageSize:   pageSize,
		PageNumber: 1,
	}

	var all []*transaction.Transaction

	for {
		res, err := s.transactions.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("listing transactions: %w", err)
		}

		all = append(all, res.Transactions...)

		if filter.PageNumber >= res.Pagination.TotalPages {
			return all, nil
		}

		filter.PageNumber++
	}
}

// WriteArchive streams a zip holding a CSV ledger of txs and every receipt they
// reference. A receipt that cannot be fetched is left out and marked in the ledger.
func (s *Service) WriteArchive(ctx context.Context, w io.Writer, txs []*transaction.Transaction) (Result, error) {
	zw := zip.NewWriter(w)
	res := Result{Transactions: len(txs)}
	files := make(map[uuid.UUID]string, len(txs))

	for _, tx := range txs {
		if tx.ReceiptURL == "" {
			continue
		}

		name, err := s.addReceipt(ctx, zw, tx)
		if err != nil {
			slog.Warn("receipt not archived", "transaction_id", tx.ID, "url", tx.ReceiptURL, "error", err)

			res.Missing++

			continue
		}

		files[tx.ID] = name
		res.Receipts++
	}

	if err := writeLedger(zw, txs, files); err != nil {
		return res, err
	}

	if err := zw.Close(); err != nil {
		return res, fmt.Errorf("closing archive: %w", err)
	}

	return res, nil
}

func (s *Service) addReceipt(ctx context.Context, zw *zip.Writer, tx *transaction.Transaction) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tx.ReceiptURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	name := receiptDir + "/" + fileName(resp, tx)

	f, err := zw.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating archive entry: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("writing archive entry: %w", err)
	}

	return name, nil
}

// fileName names a receipt YYYYMMDD_title_shortid.ext, taking the extension from the
// server's filename or content type.
func fileName(resp *http.Response, tx *transaction.Transaction) string {
	ext := ".jpg"

	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if e := filepath.Ext(params["filename"]); e != "" {
				ext = strings.ToLower(e)
			}
		}
	} else if ct := resp.Header.Get("Content-Type"); ct != "" {
		if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			ext = exts[0]
		}
	}

	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, tx.Title)

	return fmt.Sprintf("%s_%s_%s%s", tx.Date.Format("20060102"), safe, tx.ID.String()[:8], ext)
}

var ledgerHeader = []string{"date", "type", "amount", "category", "title", "paymentMethod", "description", "receipt"}

func writeLedger(zw *zip.Writer, txs []*transaction.Transaction, files map[uuid.UUID]string) error {
	f, err := zw.Create(ledgerName)
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(ledgerHeader); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	for _, tx := range txs {
		method := ""
		if tx.PaymentMethod != nil {
			method = string(*tx.PaymentMethod)
		}

		receipt := files[tx.ID]
		if receipt == "" && tx.ReceiptURL != "" {
			receipt = "unavailable"
		}

		if err := cw.Write([]string{
			tx.Date.Format(time.DateOnly),
			string(tx.Type),
			decimal.New(tx.Amount, -2).StringFixed(2),
			tx.Category,
			tx.Title,
			method,
			tx.Description,
			receipt,
		}); err != nil {
			return fmt.Errorf("writing ledger: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}
