// Package trainlog parses training-log CSV exports: one session per block,
// separated by blank lines, with quoted session and exercise headers and
// semicolon-separated set rows.
package trainlog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Session is one workout in the export.
type Session struct {
	Name      string
	Date      time.Time
	Duration  string
	Exercises []Exercise
}

// Exercise is one movement within a session.
type Exercise struct {
	Number     int
	Name       string
	TargetReps int
	Sets       []Set
}

// Set is one logged set. Warmup sets are marked so importers can exclude
// them from history.
type Set struct {
	Number     int
	WeightKg   float64
	Bodyweight bool
	Reps       int
	Warmup     bool
}

var (
	// sessionHeaderRe matches: "Leg Day";"2026-02-19 17:10";"1:02"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)";"(.*)"$`)

	// exerciseHeaderRe matches: "1. Back Squat · 5 reps"
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)\s+·\s+(\d+)\s+reps"$`)

	// setRowRe matches: 1;100;5 or W1;60;5 (warmup)
	setRowRe = regexp.MustCompile(`^(W?)(\d+);([^;]+);(\d+)$`)

	// columnHeaderRe matches: #;KG;REPS
	columnHeaderRe = regexp.MustCompile(`^#;KG;REPS$`)
)

// Parse reads a training-log CSV export and returns its sessions.
func Parse(r io.Reader) ([]Session, error) {
	scanner := bufio.NewScanner(r)
	var sessions []Session
	var current *Session
	var currentExercise *Exercise

	flushExercise := func() {
		if current != nil && currentExercise != nil {
			current.Exercises = append(current.Exercises, *currentExercise)
			currentExercise = nil
		}
	}
	flushSession := func() {
		flushExercise()
		if current != nil {
			sessions = append(sessions, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Blank line = session boundary
		if line == "" {
			flushSession()
			continue
		}

		if columnHeaderRe.MatchString(line) {
			continue
		}

		if m := sessionHeaderRe.FindStringSubmatch(line); m != nil {
			flushSession()
			date, err := parseSessionDate(m[2])
			if err != nil {
				return nil, fmt.Errorf("parsing session date %q: %w", m[2], err)
			}
			current = &Session{Name: m[1], Date: date, Duration: m[3]}
			continue
		}

		if m := exerciseHeaderRe.FindStringSubmatch(line); m != nil {
			if current == nil {
				return nil, fmt.Errorf("exercise without session: %q", line)
			}
			flushExercise()
			num, _ := strconv.Atoi(m[1])
			targetReps, _ := strconv.Atoi(m[3])
			currentExercise = &Exercise{
				Number:     num,
				Name:       strings.TrimSpace(m[2]),
				TargetReps: targetReps,
			}
			continue
		}

		if m := setRowRe.FindStringSubmatch(line); m != nil {
			if currentExercise == nil {
				return nil, fmt.Errorf("set data without exercise: %q", line)
			}
			setNum, _ := strconv.Atoi(m[2])
			weight, isBW := parseWeight(m[3])
			reps, _ := strconv.Atoi(m[4])
			currentExercise.Sets = append(currentExercise.Sets, Set{
				Number:     setNum,
				WeightKg:   weight,
				Bodyweight: isBW,
				Reps:       reps,
				Warmup:     m[1] == "W",
			})
			continue
		}

		// Unknown line — skip silently (notes or other metadata)
	}

	flushSession()
	return sessions, scanner.Err()
}

// parseSessionDate parses "2026-02-19 17:10" into a time.Time.
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// parseWeight parses a weight cell. European decimal commas are accepted;
// "BW" and "BW+n" mark bodyweight work, with n as the added load.
func parseWeight(s string) (weight float64, bodyweight bool) {
	s = strings.TrimSpace(s)
	if s == "BW" {
		return 0, true
	}
	if rest, ok := strings.CutPrefix(s, "BW+"); ok {
		w := parseEuropeanFloat(rest)
		return w, true
	}
	return parseEuropeanFloat(s), false
}

func parseEuropeanFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
