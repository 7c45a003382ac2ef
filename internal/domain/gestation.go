package domain

import (
	"strconv"
	"strings"
	"time"
)

// FullTermWeeks is the gestational length the progress scale is anchored to.
const FullTermWeeks = 40

// fullTermDays is FullTermWeeks expressed in days.
const fullTermDays = FullTermWeeks * 7

// GestationalState is the full set of scalar facts derived from a due date.
// It is recomputed from the due date and the caller's clock on every request
// and never persisted.
type GestationalState struct {
	CurrentWeek         int
	Trimester           int
	IsPostpartum        bool
	DaysRemaining       int
	WeeksPostpartum     int
	DaysIntoCurrentWeek int
}

// ComputeGestationalState derives week, trimester, and postpartum facts from
// a due date. A zero due date returns nil, which callers must treat as
// "onboarding incomplete" rather than an error. Both dates are truncated to
// midnight UTC so time-of-day never shifts the result.
func ComputeGestationalState(dueDate, now time.Time) *GestationalState {
	if dueDate.IsZero() {
		return nil
	}

	due := atMidnightUTC(dueDate)
	today := atMidnightUTC(now)
	daysRemaining := int(due.Sub(today) / (24 * time.Hour))

	state := &GestationalState{DaysRemaining: daysRemaining}

	if daysRemaining < 0 {
		state.IsPostpartum = true
		state.WeeksPostpartum = -daysRemaining / 7
		// Continuous scale past 40 so progress views keep advancing.
		state.CurrentWeek = FullTermWeeks + state.WeeksPostpartum
		return state
	}

	weeksUntilDue := daysRemaining / 7
	state.CurrentWeek = clampWeek(FullTermWeeks - weeksUntilDue)
	elapsed := fullTermDays - daysRemaining
	state.DaysIntoCurrentWeek = ((elapsed % 7) + 7) % 7
	state.Trimester = TrimesterForWeek(state.CurrentWeek)
	return state
}

// TrimesterForWeek maps a gestational week to its trimester. Total on [0,40]
// and monotone: week < 14 is the first, week < 28 the second, the rest the
// third.
func TrimesterForWeek(week int) int {
	switch {
	case week < 14:
		return 1
	case week < 28:
		return 2
	default:
		return 3
	}
}

func clampWeek(week int) int {
	if week < 0 {
		return 0
	}
	if week > FullTermWeeks {
		return FullTermWeeks
	}
	return week
}

func atMidnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDueDate normalizes the date representations accepted at the API
// boundary (calendar date, RFC 3339 timestamp, unix milliseconds) into a
// single canonical midnight-UTC time. The core only ever sees the canonical
// form.
func ParseDueDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return atMidnightUTC(t), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return atMidnightUTC(t), true
	}
	// Compact numeric dates like "20250601" must not be mistaken for a
	// millisecond epoch, so anything before 2000-01-01 is rejected.
	if millis, err := strconv.ParseInt(raw, 10, 64); err == nil && millis >= minEpochMillis {
		return atMidnightUTC(time.UnixMilli(millis)), true
	}
	return time.Time{}, false
}

// minEpochMillis is 2000-01-01T00:00:00Z in unix milliseconds.
const minEpochMillis = 946684800000
