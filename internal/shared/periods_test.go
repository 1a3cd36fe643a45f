package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeriodKeyRoundTrip(t *testing.T) {
	start, err := ParsePeriodKey("2025-06")
	require.NoError(t, err)
	require.Equal(t, 2025, start.Year())
	require.Equal(t, time.June, start.Month())
	require.Equal(t, "2025-06", PeriodKeyFor(start))

	_, err = ParsePeriodKey("June 2025")
	require.ErrorIs(t, err, ErrInvalidPeriodKey)
}

func TestNextPeriodKeyRollsYear(t *testing.T) {
	next, err := NextPeriodKey("2025-12")
	require.NoError(t, err)
	require.Equal(t, "2026-01", next)
}

func TestPeriodRangeIsHalfOpen(t *testing.T) {
	start, end, err := PeriodRange("2025-02")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), end)
}
