package session

import (
	"math"
	"time"
)

// ExerciseSummary is one exercise's completed sets in a finished session.
type ExerciseSummary struct {
	Name string      `json:"name"`
	Sets []LoggedSet `json:"sets"`
}

// Summary is the finalized record of a session, handed to the finish sink.
type Summary struct {
	Focus          string            `json:"focus"`
	ElapsedMinutes int               `json:"elapsed_minutes"`
	Exercises      []ExerciseSummary `json:"exercises"`
}

// Finalize converts the record store into a summary. Pure: it reads the
// store and computes elapsed minutes as round((now-start)/60000ms).
func Finalize(store *RecordStore, start, now time.Time, focus string) Summary {
	exercises := make([]ExerciseSummary, 0, store.CompletedExerciseCount())
	for _, name := range store.Exercises() {
		sets := store.Sets(name)
		cp := make([]LoggedSet, len(sets))
		copy(cp, sets)
		exercises = append(exercises, ExerciseSummary{Name: name, Sets: cp})
	}

	minutes := int(math.Round(float64(now.Sub(start).Milliseconds()) / 60000.0))
	return Summary{
		Focus:          focus,
		ElapsedMinutes: minutes,
		Exercises:      exercises,
	}
}
