package tracking

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseReps accepts a positive integer.
func ParseReps(raw string) (int, error) {
	input := strings.TrimSpace(raw)
	reps, err := strconv.Atoi(input)
	if err != nil || reps <= 0 {
		return 0, &ValidationError{Field: "reps", Input: raw, Err: ErrInvalidReps}
	}
	return reps, nil
}

// ParseWeight accepts a positive, finite number of kilograms written as plain
// decimal digits. A single decimal comma ("62,5") is read as a decimal point.
// Signs, exponents, hex floats and digit separators are rejected.
func ParseWeight(raw string) (float64, error) {
	input := strings.TrimSpace(raw)
	if strings.Count(input, ",") == 1 && !strings.Contains(input, ".") {
		input = strings.Replace(input, ",", ".", 1)
	}
	if !isPlainDecimal(input) {
		return 0, &ValidationError{Field: "weight", Input: raw, Err: ErrInvalidWeight}
	}

	weight, err := strconv.ParseFloat(input, 64)
	if err != nil || weight <= 0 || math.IsInf(weight, 0) || math.IsNaN(weight) {
		return 0, &ValidationError{Field: "weight", Input: raw, Err: ErrInvalidWeight}
	}
	return weight, nil
}

func isPlainDecimal(s string) bool {
	digits := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
		default:
			return false
		}
	}
	return digits > 0 && strings.Count(s, ".") <= 1
}

// ValidateSet parses both raw fields into a SetResult.
// The reps error wins when both fields are invalid.
func ValidateSet(rawReps, rawWeight string) (SetResult, error) {
	reps, err := ParseReps(rawReps)
	if err != nil {
		return SetResult{}, err
	}
	weight, err := ParseWeight(rawWeight)
	if err != nil {
		return SetResult{}, err
	}
	return SetResult{Reps: reps, Weight: weight}, nil
}

// NormalizeDate pins the time of day to 12:00:00 in the date's own location,
// so the calendar day survives rendering in a neighbouring time zone or
// serialization as a date-only value. Normalizing twice is a no-op.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

// IsNormalized reports whether t already sits on the midday instant.
func IsNormalized(t time.Time) bool {
	return t.Equal(NormalizeDate(t))
}

// ParseDate reads a YYYY-MM-DD calendar date in loc and normalizes it.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Input: raw, Err: ErrInvalidDate}
	}
	return NormalizeDate(t), nil
}
