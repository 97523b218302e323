package tracking

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// Encode renders the series as a JSON array of {"reps","weight"} objects,
// in performed order. This is the only persisted form of a series, so the
// layout must stay stable: historical records are decoded with this codec.
func Encode(series SetSeries) (string, error) {
	for i, set := range series {
		if set.Reps <= 0 {
			return "", fmt.Errorf("set %d: %w", i, ErrInvalidReps)
		}
		if !set.valid() {
			return "", fmt.Errorf("set %d: %w", i, ErrInvalidWeight)
		}
	}
	if series == nil {
		series = SetSeries{}
	}

	b, err := json.Marshal(series)
	if err != nil {
		return "", fmt.Errorf("marshal series: %w", err)
	}
	return string(b), nil
}

// Decode is the strict inverse of Encode.
func Decode(text string) (SetSeries, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &MalformedSeriesError{Text: text, Err: errors.New("not a json array")}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var series SetSeries
	if err := dec.Decode(&series); err != nil {
		return nil, &MalformedSeriesError{Text: text, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &MalformedSeriesError{Text: text, Err: errors.New("trailing data after array")}
	}

	for i, set := range series {
		if !set.valid() {
			return nil, &MalformedSeriesError{
				Text: text,
				Err:  fmt.Errorf("set %d: reps %d, weight %v", i, set.Reps, set.Weight),
			}
		}
	}

	if series == nil {
		series = SetSeries{}
	}
	return series, nil
}

// DecodeOrEmpty decodes text and degrades to an empty series on failure.
// Used wherever a stored record must stay viewable even if its sets are corrupted.
func DecodeOrEmpty(recordID, text string) SetSeries {
	series, err := Decode(text)
	if err != nil {
		log.Warnf("record [%s]: showing zero sets: %s", recordID, err)
		return SetSeries{}
	}
	return series
}
