package analytics

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownPreset = errors.New("unknown date range preset")
	ErrInvalidRange  = errors.New("invalid date range")
)

type Preset string

const (
	PresetLast30Days  Preset = "30days"
	PresetLastMonth   Preset = "lastMonth"
	PresetLast3Months Preset = "last3Months"
	PresetLastYear    Preset = "lastYear"
	PresetThisMonth   Preset = "thisMonth"
	PresetThisYear    Preset = "thisYear"
	PresetAllTime     Preset = "allTime"
	PresetCustom      Preset = "custom"
)

// Presets lists the relative ranges in the order clients cycle through them.
var Presets = []Preset{
	PresetLast30Days,
	PresetThisMonth,
	PresetLastMonth,
	PresetLast3Months,
	PresetThisYear,
	PresetLastYear,
	PresetAllTime,
}

var presetLabels = map[Preset]string{
	PresetLast30Days:  "Last 30 Days",
	PresetLastMonth:   "Last Month",
	PresetLast3Months: "Last 3 Months",
	PresetLastYear:    "Last Year",
	PresetThisMonth:   "This Month",
	PresetThisYear:    "This Year",
	PresetAllTime:     "All Time",
	PresetCustom:      "Custom",
}

func (p Preset) Label() string {
	if l, ok := presetLabels[p]; ok {
		return l
	}

	return string(p)
}

// Range is an inclusive time window.
type Range struct {
	Preset Preset    `json:"preset"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

func (r Range) AllTime() bool {
	return r.Preset == PresetAllTime
}

// Previous is the window of equal length that ends just before r starts.
func (r Range) Previous() Range {
	length := r.To.Sub(r.From)
	to := r.From.Add(-time.Nanosecond)

	return Range{Preset: PresetCustom, From: to.Add(-length), To: to}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Resolve turns a preset, or custom bounds, into a concrete window relative to now.
// An empty preset means the last 30 days.
func Resolve(p Preset, from, to *time.Time, now time.Time) (Range, error) {
	now = now.UTC()

	switch p {
	case "", PresetLast30Days:
		return Range{Preset: PresetLast30Days, From: startOfDay(now).AddDate(0, 0, -30), To: now}, nil
	case PresetThisMonth:
		return Range{Preset: p, From: startOfMonth(now), To: now}, nil
	case PresetLastMonth:
		start := startOfMonth(now).AddDate(0, -1, 0)
		return Range{Preset: p, From: start, To: startOfMonth(now).Add(-time.Nanosecond)}, nil
	case PresetLast3Months:
		start := startOfMonth(now).AddDate(0, -3, 0)
		return Range{Preset: p, From: start, To: startOfMonth(now).Add(-time.Nanosecond)}, nil
	case PresetThisYear:
		return Range{Preset: p, From: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), To: now}, nil
	case PresetLastYear:
		start := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, time.UTC)
		return Range{Preset: p, From: start, To: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}, nil
	case PresetAllTime:
		return Range{Preset: p, From: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), To: now}, nil
	case PresetCustom:
		if from == nil || to == nil {
			return Range{}, fmt.Errorf("%w: custom range needs from and to", ErrInvalidRange)
		}

		r := Range{Preset: p, From: startOfDay(from.UTC()), To: endOfDay(to.UTC())}
		if r.To.Before(r.From) {
			return Range{}, fmt.Errorf("%w: from is after to", ErrInvalidRange)
		}

		return r, nil
	}

	return Range{}, fmt.Errorf("%w: %q", ErrUnknownPreset, p)
}
