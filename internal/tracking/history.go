package tracking

import (
	"sort"
	"time"
)

// GroupByExercise buckets records by exercise ID. Each bucket is ordered by
// PerformedAt ascending, ties broken by ID so the output is deterministic.
// The input slice is not modified.
func GroupByExercise(records []Record) map[string][]Record {
	groups := make(map[string][]Record)
	for _, rec := range records {
		groups[rec.ExerciseID] = append(groups[rec.ExerciseID], rec)
	}
	for _, group := range groups {
		sortChronologically(group)
	}
	return groups
}

func sortChronologically(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].PerformedAt.Equal(records[j].PerformedAt) {
			return records[i].PerformedAt.Before(records[j].PerformedAt)
		}
		return records[i].ID < records[j].ID
	})
}

// ExerciseSummary is the per-exercise overview shown in history.
type ExerciseSummary struct {
	ExerciseID    string    `json:"exerciseId"`
	ExerciseName  string    `json:"exerciseName"`
	Records       int       `json:"records"`
	Sets          int       `json:"sets"`
	TotalVolume   float64   `json:"totalVolume"`
	BestWeight    float64   `json:"bestWeight"`
	LastPerformed time.Time `json:"lastPerformed"`
}

// Summarize returns one summary per exercise, ordered by exercise ID.
// The name is taken from the most recent record. Records with corrupted
// set text count with zero sets.
func Summarize(records []Record) []ExerciseSummary {
	groups := GroupByExercise(records)

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summaries := make([]ExerciseSummary, 0, len(ids))
	for _, id := range ids {
		group := groups[id]
		last := group[len(group)-1]
		summary := ExerciseSummary{
			ExerciseID:    id,
			ExerciseName:  last.ExerciseName,
			Records:       len(group),
			LastPerformed: last.PerformedAt,
		}
		for _, rec := range group {
			series := rec.Series()
			summary.Sets += series.Len()
			summary.TotalVolume += series.TotalVolume()
			if best := series.BestWeight(); best > summary.BestWeight {
				summary.BestWeight = best
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// DayStats holds the per-day averages for one exercise.
type DayStats struct {
	AvgWeight float64 `json:"avgWeight"`
	AvgReps   float64 `json:"avgReps"`
	Sets      int     `json:"sets"`
}

// DailyStats averages weight and reps per set for each calendar day.
// Days are keyed by the date at midnight UTC; days without decodable sets are skipped.
func DailyStats(records []Record) map[time.Time]DayStats {
	type acc struct {
		weight float64
		reps   int
		sets   int
	}
	days := make(map[time.Time]*acc)
	for _, rec := range records {
		series := rec.Series()
		if series.IsEmpty() {
			continue
		}
		y, m, d := rec.PerformedAt.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		a, ok := days[day]
		if !ok {
			a = &acc{}
			days[day] = a
		}
		for _, set := range series {
			a.weight += set.Weight
			a.reps += set.Reps
			a.sets++
		}
	}

	stats := make(map[time.Time]DayStats, len(days))
	for day, a := range days {
		stats[day] = DayStats{
			AvgWeight: a.weight / float64(a.sets),
			AvgReps:   float64(a.reps) / float64(a.sets),
			Sets:      a.sets,
		}
	}
	return stats
}
