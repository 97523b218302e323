package tracking

import "math"

// SetResult is one completed set.
type SetResult struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

func (s SetResult) valid() bool {
	return s.Reps > 0 && s.Weight > 0 && !math.IsInf(s.Weight, 0) && !math.IsNaN(s.Weight)
}

// Volume is reps times weight, in kilograms.
func (s SetResult) Volume() float64 {
	return float64(s.Reps) * s.Weight
}

// SetSeries holds sets in the order they were performed.
type SetSeries []SetResult

func (s SetSeries) Len() int {
	return len(s)
}

func (s SetSeries) IsEmpty() bool {
	return len(s) == 0
}

// Clone returns a copy that does not share the backing array.
func (s SetSeries) Clone() SetSeries {
	if s == nil {
		return SetSeries{}
	}
	c := make(SetSeries, len(s))
	copy(c, s)
	return c
}

func (s SetSeries) TotalVolume() float64 {
	var total float64
	for _, set := range s {
		total += set.Volume()
	}
	return total
}

func (s SetSeries) BestWeight() float64 {
	var best float64
	for _, set := range s {
		if set.Weight > best {
			best = set.Weight
		}
	}
	return best
}

func (s SetSeries) TotalReps() int {
	total := 0
	for _, set := range s {
		total += set.Reps
	}
	return total
}
