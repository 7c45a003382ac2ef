package domain

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeGestationalStateMidPregnancy(t *testing.T) {
	due := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	state := ComputeGestationalState(due, now)
	require.NotNil(t, state)
	require.Equal(t, 151, state.DaysRemaining)
	require.Equal(t, 19, state.CurrentWeek)
	require.Equal(t, 2, state.Trimester)
	require.False(t, state.IsPostpartum)
	require.Equal(t, 0, state.WeeksPostpartum)
	require.Equal(t, 3, state.DaysIntoCurrentWeek)
}

func TestComputeGestationalStateDueToday(t *testing.T) {
	due := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	state := ComputeGestationalState(due, due)
	require.NotNil(t, state)
	require.Equal(t, 0, state.DaysRemaining)
	require.Equal(t, FullTermWeeks, state.CurrentWeek)
	require.Equal(t, 3, state.Trimester)
	require.False(t, state.IsPostpartum)
}

func TestComputeGestationalStatePostpartum(t *testing.T) {
	due := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	state := ComputeGestationalState(due, now)
	require.NotNil(t, state)
	require.True(t, state.IsPostpartum)
	require.Equal(t, -14, state.DaysRemaining)
	require.Equal(t, 2, state.WeeksPostpartum)
	require.Equal(t, FullTermWeeks+2, state.CurrentWeek)
}

func TestComputeGestationalStateIgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2025, time.June, 1, 23, 59, 59, 0, time.UTC)
	early := time.Date(2025, time.March, 10, 0, 0, 1, 0, time.UTC)
	late := time.Date(2025, time.March, 10, 23, 59, 59, 0, time.UTC)

	require.Equal(t, ComputeGestationalState(due, early), ComputeGestationalState(due, late))
}

func TestComputeGestationalStateClampsEarlyWeeks(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	// More than 280 days out still reports week 0, never negative.
	due := now.AddDate(0, 0, 300)

	state := ComputeGestationalState(due, now)
	require.NotNil(t, state)
	require.Equal(t, 0, state.CurrentWeek)
	require.Equal(t, 1, state.Trimester)
}

func TestComputeGestationalStateZeroDueDate(t *testing.T) {
	require.Nil(t, ComputeGestationalState(time.Time{}, time.Now()))
}

func TestTrimesterBoundaries(t *testing.T) {
	require.Equal(t, 1, TrimesterForWeek(0))
	require.Equal(t, 1, TrimesterForWeek(13))
	require.Equal(t, 2, TrimesterForWeek(14))
	require.Equal(t, 2, TrimesterForWeek(27))
	require.Equal(t, 3, TrimesterForWeek(28))
	require.Equal(t, 3, TrimesterForWeek(40))
}

func TestParseDueDateFormats(t *testing.T) {
	want := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	got, ok := ParseDueDate("2025-06-01")
	require.True(t, ok)
	require.Equal(t, want, got)

	got, ok = ParseDueDate("2025-06-01T14:30:00Z")
	require.True(t, ok)
	require.Equal(t, want, got)

	millis := want.Add(8 * time.Hour).UnixMilli()
	got, ok = ParseDueDate(strconv.FormatInt(millis, 10))
	require.True(t, ok)
	require.Equal(t, want, got)

	_, ok = ParseDueDate("not-a-date")
	require.False(t, ok)

	_, ok = ParseDueDate("")
	require.False(t, ok)
}

func TestParseDueDateRejectsCompactNumericDates(t *testing.T) {
	// A compact yyyymmdd string is a tiny number on the millisecond epoch
	// scale and would land in 1970 if treated as one.
	_, ok := ParseDueDate("20250601")
	require.False(t, ok)

	_, ok = ParseDueDate("19991231")
	require.False(t, ok)

	_, ok = ParseDueDate("-1000")
	require.False(t, ok)
}

func TestGuideForWeekClampsLow(t *testing.T) {
	guide, ok := GuideForWeek(0)
	require.True(t, ok)
	require.Equal(t, 1, guide.Week)

	guide, ok = GuideForWeek(1)
	require.True(t, ok)
	require.Equal(t, 1, guide.Week)

	guide, ok = GuideForWeek(12)
	require.True(t, ok)
	require.Equal(t, 12, guide.Week)
}

func TestGuideForWeekPastWindow(t *testing.T) {
	_, ok := GuideForWeek(13)
	require.False(t, ok)
}

func TestDailyReminderDeterministic(t *testing.T) {
	day := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	first := DailyReminder(day)
	require.NotEmpty(t, first)
	// Same calendar day yields the same reminder regardless of clock time.
	require.Equal(t, first, DailyReminder(day.Add(18*time.Hour)))

	// Consecutive days rotate through the pool.
	next := DailyReminder(day.AddDate(0, 0, 1))
	require.NotEqual(t, first, next)
}
