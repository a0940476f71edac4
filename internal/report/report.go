package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrSettingNotFound = errors.New("report setting not found")

type Frequency string

const FrequencyMonthly Frequency = "MONTHLY"

type Status string

const (
	StatusSent       Status = "SENT"
	StatusPending    Status = "PENDING"
	StatusFailed     Status = "FAILED"
	StatusNoActivity Status = "NO_ACTIVITY"
)

type Setting struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"userId"`
	Frequency      Frequency  `json:"frequency"`
	IsEnabled      bool       `json:"isEnabled"`
	NextReportDate *time.Time `json:"nextReportDate"`
	LastSentDate   *time.Time `json:"lastSentDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Report struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Period    string    `json:"period"`
	SentDate  time.Time `json:"sentDate"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NextReportDate is midnight UTC on the first day of the month after now.
func NextReportDate(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// PreviousMonth returns the first and last instant of the calendar month before now.
func PreviousMonth(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	return start, end
}

// DefaultSetting is the enabled monthly schedule every new account starts with.
func DefaultSetting(userID uuid.UUID, now time.Time) *Setting {
	return &Setting{
		UserID:         userID,
		Frequency:      FrequencyMonthly,
		IsEnabled:      true,
		NextReportDate: new(NextReportDate(now)),
	}
}

// PeriodLabel renders a range such as "March 1 - 31, 2024" or "Dec 15, 2023 - Jan 14, 2024".
func PeriodLabel(from, to time.Time) string {
	switch {
	case from.Year() != to.Year():
		return from.Format("Jan 2, 2006") + " - " + to.Format("Jan 2, 2006")
	case from.Month() != to.Month():
		return from.Format("January 2") + " - " + to.Format("January 2, 2006")
	default:
		return from.Format("January 2") + " - " + to.Format("2, 2006")
	}
}
