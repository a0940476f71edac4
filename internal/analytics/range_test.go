package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smritirangarajan/spenderella/internal/analytics"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	type testCase struct {
		preset   analytics.Preset
		wantFrom time.Time
		wantTo   time.Time
	}

	tests := []testCase{
		{preset: "", wantFrom: date(2024, 2, 14), wantTo: now},
		{preset: analytics.PresetLast30Days, wantFrom: date(2024, 2, 14), wantTo: now},
		{preset: analytics.PresetThisMonth, wantFrom: date(2024, 3, 1), wantTo: now},
		{preset: analytics.PresetLastMonth, wantFrom: date(2024, 2, 1), wantTo: date(2024, 3, 1).Add(-time.Nanosecond)},
		{preset: analytics.PresetLast3Months, wantFrom: date(2023, 12, 1), wantTo: date(2024, 3, 1).Add(-time.Nanosecond)},
		{preset: analytics.PresetThisYear, wantFrom: date(2024, 1, 1), wantTo: now},
		{preset: analytics.PresetLastYear, wantFrom: date(2023, 1, 1), wantTo: date(2024, 1, 1).Add(-time.Nanosecond)},
		{preset: analytics.PresetAllTime, wantFrom: date(1970, 1, 1), wantTo: now},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			got, err := analytics.Resolve(tt.preset, nil, nil, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, got.From)
			assert.Equal(t, tt.wantTo, got.To)
		})
	}
}

func TestResolve_Custom(t *testing.T) {
	now := time.Now()
	from := date(2024, 1, 10)
	to := date(2024, 1, 20)

	got, err := analytics.Resolve(analytics.PresetCustom, &from, &to, now)
	require.NoError(t, err)
	assert.Equal(t, from, got.From)
	assert.Equal(t, date(2024, 1, 21).Add(-time.Nanosecond), got.To)

	_, err = analytics.Resolve(analytics.PresetCustom, &to, &from, now)
	assert.ErrorIs(t, err, analytics.ErrInvalidRange)

	_, err = analytics.Resolve(analytics.PresetCustom, nil, &to, now)
	assert.ErrorIs(t, err, analytics.ErrInvalidRange)

	_, err = analytics.Resolve("fortnight", nil, nil, now)
	assert.ErrorIs(t, err, analytics.ErrUnknownPreset)
}

func TestRange_Previous(t *testing.T) {
	r := analytics.Range{From: date(2024, 2, 1), To: date(2024, 3, 1).Add(-time.Nanosecond)}

	prev := r.Previous()
	assert.Equal(t, date(2024, 2, 1).Add(-time.Nanosecond), prev.To)
	assert.Equal(t, r.To.Sub(r.From), prev.To.Sub(prev.From))
}
