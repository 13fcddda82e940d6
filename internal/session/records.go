package session

// LoggedSet is one completed unit of work. Exactly one of the two shapes is
// populated: weight/reps for strength sets, seconds for duration sets.
// Immutable once appended.
type LoggedSet struct {
	Round    int     `json:"round"`
	Weight   float64 `json:"weight,omitempty"`
	Reps     int     `json:"reps,omitempty"`
	Seconds  int     `json:"seconds,omitempty"`
	Duration bool    `json:"duration,omitempty"`
}

// StrengthSet builds a rep-based logged set.
func StrengthSet(round int, weight float64, reps int) LoggedSet {
	return LoggedSet{Round: round, Weight: weight, Reps: reps}
}

// DurationSet builds a time-based logged set.
func DurationSet(round, seconds int) LoggedSet {
	return LoggedSet{Round: round, Seconds: seconds, Duration: true}
}

// RecordStore accumulates logged sets per exercise for one session.
// Append-only; discarded (via the summary builder) at session end.
// Numeric validation happens before sets reach the store — Append never
// rejects.
type RecordStore struct {
	order []string
	sets  map[string][]LoggedSet
}

// NewRecordStore returns an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{sets: make(map[string][]LoggedSet)}
}

// Append adds a set to the end of the exercise's list, creating the list on
// first use. Insertion order of exercises is preserved.
func (s *RecordStore) Append(exercise string, set LoggedSet) {
	if _, ok := s.sets[exercise]; !ok {
		s.order = append(s.order, exercise)
	}
	s.sets[exercise] = append(s.sets[exercise], set)
}

// Sets returns the logged sets for one exercise in insertion order.
func (s *RecordStore) Sets(exercise string) []LoggedSet {
	return s.sets[exercise]
}

// Snapshot returns a read-only copy of the store contents.
func (s *RecordStore) Snapshot() map[string][]LoggedSet {
	out := make(map[string][]LoggedSet, len(s.sets))
	for name, sets := range s.sets {
		cp := make([]LoggedSet, len(sets))
		copy(cp, sets)
		out[name] = cp
	}
	return out
}

// Exercises returns the distinct exercise names with at least one logged
// set, in first-logged order.
func (s *RecordStore) Exercises() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// CompletedExerciseCount returns how many distinct exercises have at least
// one logged set.
func (s *RecordStore) CompletedExerciseCount() int {
	return len(s.order)
}
