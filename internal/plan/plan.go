package plan

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BlockKind distinguishes single-exercise blocks from supersets.
type BlockKind string

const (
	BlockSingle   BlockKind = "single"
	BlockSuperset BlockKind = "superset"
)

// MetricKind says how an exercise is measured.
type MetricKind string

const (
	MetricReps     MetricKind = "reps"
	MetricDuration MetricKind = "duration"
)

// Template is an ordered sequence of blocks making up one workout.
// It is immutable for the lifetime of a session.
type Template struct {
	Name   string  `yaml:"name" json:"name"`
	Focus  string  `yaml:"focus" json:"focus"`
	Blocks []Block `yaml:"blocks" json:"blocks"`
}

// Block groups one or more exercises. A single block repeats its one
// exercise for that exercise's target sets; a superset cycles all its
// exercises for Rounds rounds.
type Block struct {
	Kind      BlockKind  `yaml:"kind" json:"kind"`
	Exercises []Exercise `yaml:"exercises" json:"exercises"`
	Rounds    int        `yaml:"rounds,omitempty" json:"rounds,omitempty"`
}

// Exercise describes one movement within a block.
type Exercise struct {
	Name       string     `yaml:"name" json:"name"`
	Metric     MetricKind `yaml:"metric,omitempty" json:"metric,omitempty"`
	TargetSets int        `yaml:"target_sets,omitempty" json:"target_sets,omitempty"`
	TargetReps int        `yaml:"target_reps,omitempty" json:"target_reps,omitempty"`

	// Duration targets, resolved in priority order by TargetDurationSeconds().
	TargetDurationMin *int `yaml:"target_duration_min,omitempty" json:"target_duration_min,omitempty"`
	DurationMin       *int `yaml:"duration_min,omitempty" json:"duration_min,omitempty"`
	TargetDurationSec *int `yaml:"target_duration_sec,omitempty" json:"target_duration_sec,omitempty"`

	RestSeconds int    `yaml:"rest_seconds,omitempty" json:"rest_seconds,omitempty"`
	Notes       string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// DefaultTargetSets is used when a single-block exercise has no target_sets.
const DefaultTargetSets = 3

const (
	cardioDefaultSeconds = 30 * 60
	holdDefaultSeconds   = 30
)

// cardioKeywords mark exercises measured in long durations (default 30 min).
var cardioKeywords = []string{
	"run", "jog", "bike", "cycling", "cycle", "row", "swim",
	"walk", "elliptical", "stair", "cardio", "treadmill", "ruck",
}

// holdKeywords mark short time-based work (default 30 s).
var holdKeywords = []string{
	"plank", "hold", "hang", "stretch", "carry", "wall sit", "l-sit",
}

// IsTimeBased reports whether the exercise is measured by elapsed duration
// rather than weight and reps: either its metric says so explicitly or its
// name matches the cardio/isometric keyword set.
func (e Exercise) IsTimeBased() bool {
	if e.Metric == MetricDuration {
		return true
	}
	if e.Metric == MetricReps {
		return false
	}
	return e.matchesCardio() || e.matchesHold()
}

func (e Exercise) matchesCardio() bool {
	name := strings.ToLower(e.Name)
	for _, kw := range cardioKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func (e Exercise) matchesHold() bool {
	name := strings.ToLower(e.Name)
	for _, kw := range holdKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// TargetDurationSeconds resolves the target duration for a time-based
// exercise. Priority: target_duration_min, then duration_min, then
// target_duration_sec, then a keyword-based default (30 minutes for cardio
// names, 30 seconds otherwise).
func (e Exercise) TargetDurationSeconds() int {
	if e.TargetDurationMin != nil {
		return *e.TargetDurationMin * 60
	}
	if e.DurationMin != nil {
		return *e.DurationMin * 60
	}
	if e.TargetDurationSec != nil {
		return *e.TargetDurationSec
	}
	if e.matchesCardio() {
		return cardioDefaultSeconds
	}
	return holdDefaultSeconds
}

// SetsTarget returns the number of rounds for a single-exercise block.
func (e Exercise) SetsTarget() int {
	if e.TargetSets > 0 {
		return e.TargetSets
	}
	return DefaultTargetSets
}

// TotalRounds returns how many rounds the block requires: the block's round
// count for supersets, the exercise's target sets otherwise.
func (b Block) TotalRounds() int {
	if b.Kind == BlockSuperset {
		if b.Rounds > 0 {
			return b.Rounds
		}
		return DefaultTargetSets
	}
	if len(b.Exercises) == 0 {
		return DefaultTargetSets
	}
	return b.Exercises[0].SetsTarget()
}

// Parse decodes a YAML plan and validates it.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks structural invariants of the template.
func (t *Template) Validate() error {
	if len(t.Blocks) == 0 {
		return fmt.Errorf("plan %q has no blocks", t.Name)
	}
	for i, b := range t.Blocks {
		if len(b.Exercises) == 0 {
			return fmt.Errorf("block %d has no exercises", i)
		}
		switch b.Kind {
		case BlockSingle:
			if len(b.Exercises) != 1 {
				return fmt.Errorf("block %d: single block must have exactly one exercise, got %d", i, len(b.Exercises))
			}
		case BlockSuperset:
			if len(b.Exercises) < 2 {
				return fmt.Errorf("block %d: superset needs at least two exercises", i)
			}
			if b.Rounds <= 0 {
				return fmt.Errorf("block %d: superset needs a positive round count", i)
			}
		default:
			return fmt.Errorf("block %d: unknown kind %q", i, b.Kind)
		}
		for j, e := range b.Exercises {
			if strings.TrimSpace(e.Name) == "" {
				return fmt.Errorf("block %d exercise %d: name is required", i, j)
			}
			if e.RestSeconds < 0 {
				return fmt.Errorf("block %d exercise %d: rest_seconds cannot be negative", i, j)
			}
		}
	}
	return nil
}
