package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smritirangarajan/spenderella/internal/transaction"
)

var (
	amountNoise   = regexp.MustCompile(`[,\s$£€¥₦₵₽₹₩]+`)
	dateSeparator = regexp.MustCompile(`[/\-]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// isoLayouts are tried against the whole string before any part-wise interpretation.
var isoLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateTime,
}

// generalLayouts are the fallback for strings that are not three-part dates.
var generalLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	time.DateTime,
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Mon, Jan 2, 2006",
	"2006.01.02",
	"02.01.2006",
	"20060102",
}

// NormalizeAmount strips currency glyphs, thousands separators and whitespace and
// parses the remainder as a decimal. An empty remainder is zero. Values too large
// to represent as a float64 are rejected.
// Locale formats with a decimal comma ("1.234,50") are not supported.
func NormalizeAmount(raw string) (decimal.Decimal, bool) {
	s := amountNoise.ReplaceAllString(raw, "")
	if s == "" {
		return decimal.Zero, true
	}

	d, err := decimal.NewFromString(s)
	if err != nil || math.IsInf(d.InexactFloat64(), 0) {
		return decimal.Decimal{}, false
	}

	return d, true
}

// NormalizeDate interprets a cell as a calendar date. Three-part values (split on
// "/" or "-") are tried as ISO-8601, then year-first, then month/day/year and
// day/month/year. Anything else goes through a general parse. Calendar-invalid
// dates never roll over into the next month.
func NormalizeDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	parts := dateSeparator.Split(s, -1)
	if len(parts) == 3 {
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		if t, ok := parseLayouts(s, isoLayouts); ok {
			return t, true
		}

		if len(parts[0]) == 4 {
			if t, ok := calendarDate(parts[0], parts[1], parts[2]); ok {
				return t, true
			}
		} else if len(parts[2]) == 4 {
			if t, ok := calendarDate(parts[2], parts[0], parts[1]); ok {
				return t, true
			}

			if t, ok := calendarDate(parts[2], parts[1], parts[0]); ok {
				return t, true
			}
		}
	}

	return parseLayouts(s, generalLayouts)
}

// NormalizeDateValue accepts a native date value, reducing it to its calendar date.
func NormalizeDateValue(t time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}

	return dateOnly(t), true
}

// NormalizeType matches "INCOME" or "EXPENSE" case-insensitively.
func NormalizeType(raw string) (transaction.Type, bool) {
	t := transaction.Type(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", false
	}

	return t, true
}

// NormalizePaymentMethod maps values such as "bank transfer" to BANK_TRANSFER.
// Unknown or empty values yield ok=false; the field is optional.
func NormalizePaymentMethod(raw string) (transaction.PaymentMethod, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	pm := transaction.PaymentMethod(whitespace.ReplaceAllString(s, "_"))
	if !pm.Valid() {
		return "", false
	}

	return pm, true
}

// NormalizeText trims surrounding whitespace.
func NormalizeText(raw string) string {
	return strings.TrimSpace(raw)
}

func parseLayouts(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}

	return time.Time{}, false
}

func calendarDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 {
		return time.Time{}, false
	}

	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}

	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || t.Month() != time.Month(m) {
		return time.Time{}, false
	}

	return t, true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
