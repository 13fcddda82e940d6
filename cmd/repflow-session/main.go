// Command repflow-session runs a workout from a YAML plan in the terminal,
// fully offline. Completed sessions are cached locally and synced to a
// RepFlow server when one is reachable.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/claude/repflow/internal/local"
	"github.com/claude/repflow/internal/models"
	"github.com/claude/repflow/internal/plan"
	"github.com/claude/repflow/internal/pr"
	"github.com/claude/repflow/internal/session"
	"github.com/claude/repflow/internal/storage"
	"github.com/google/uuid"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	planPath := flag.String("plan", "", "path to YAML workout plan (required)")
	serverURL := flag.String("server", "", "RepFlow server URL for syncing (optional)")
	apiKey := flag.String("api-key", "", "API key for syncing")
	syncOnly := flag.Bool("sync", false, "sync pending sessions and exit")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repflow-session", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot determine home directory:", err)
		os.Exit(1)
	}
	store, err := local.Open(filepath.Join(homeDir, ".repflow"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot open local store:", err)
		os.Exit(1)
	}
	defer store.Close()

	if *syncOnly {
		syncPending(store, *serverURL, *apiKey)
		return
	}

	if *planPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repflow-session -plan workout.yaml [-server URL -api-key KEY]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*planPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot read plan:", err)
		os.Exit(1)
	}
	tmpl, err := plan.Parse(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid plan:", err)
		os.Exit(1)
	}

	r := newRunner(tmpl, store, log)
	r.run()

	if r.summary != nil && *serverURL != "" {
		syncPending(store, *serverURL, *apiKey)
	}
}

// runner drives one offline session. The engine is serialized under mu;
// the ticker goroutine feeds rest ticks through the same lock.
type runner struct {
	store *local.Store
	log   *slog.Logger

	mu      sync.Mutex
	engine  *session.Engine
	timer   *session.Timer
	started time.Time
	tmpl    *plan.Template

	done    chan struct{}
	stop    sync.Once
	summary *session.Summary
}

func newRunner(tmpl *plan.Template, store *local.Store, log *slog.Logger) *runner {
	heuristic := pr.New(store.BestLookup())
	return &runner{
		store:   store,
		log:     log,
		engine:  session.NewEngine(tmpl, heuristic),
		timer:   session.NewTimer(),
		started: time.Now(),
		tmpl:    tmpl,
		done:    make(chan struct{}),
	}
}

func (r *runner) run() {
	r.timer.Start()
	defer r.timer.Stop()
	go r.tickRest()
	defer r.stop.Do(func() { close(r.done) })

	fmt.Printf("Starting %q (%s) — %d blocks\n", r.tmpl.Name, r.tmpl.Focus, len(r.tmpl.Blocks))
	r.printPosition()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "done", "d":
			r.completeSet(fields[1:])
		case "skip":
			r.apply(session.SkipExercise{})
		case "rest":
			r.apply(session.SkipRest{})
		case "goto":
			r.navigate(fields[1:])
		case "status", "s":
			r.printPosition()
		case "finish", "f":
			r.finish()
			return
		case "quit", "q":
			fmt.Println("Session canceled, nothing saved.")
			return
		case "help", "h":
			fmt.Println("commands: done [weight reps | seconds], skip, rest, goto <block> <exercise>, status, finish, quit")
		default:
			fmt.Println("unknown command (try 'help')")
		}

		r.mu.Lock()
		finished := r.engine.Status() == session.StatusFinished
		r.mu.Unlock()
		if finished {
			r.finish()
			return
		}
	}
}

// tickRest counts active rest down once per second.
func (r *runner) tickRest() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			if rest := r.engine.Rest(); rest != nil {
				r.engine.Apply(session.RestTick{})
				if after := r.engine.Rest(); after == nil {
					fmt.Println("\nrest over")
				}
			}
			r.mu.Unlock()
		}
	}
}

func (r *runner) completeSet(args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ex, ok := r.engine.CurrentExercise()
	if !ok {
		fmt.Println("nothing left to do")
		return
	}

	var set session.LoggedSet
	if ex.IsTimeBased() {
		seconds := ex.TargetDurationSeconds()
		if len(args) >= 1 {
			if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
				seconds = v
			}
		}
		set = session.DurationSet(0, seconds)
	} else {
		if len(args) < 2 {
			last := ""
			if w, reps, ok, _ := r.store.LastPerformance(ex.Name); ok {
				last = fmt.Sprintf(" (last: %.1f kg x %d)", w, reps)
			}
			fmt.Printf("usage: done <weight> <reps>%s\n", last)
			return
		}
		weight, err := strconv.ParseFloat(args[0], 64)
		if err != nil || weight < 0 {
			fmt.Println("bad weight:", args[0])
			return
		}
		reps, err := strconv.Atoi(args[1])
		if err != nil || reps < 1 {
			fmt.Println("bad reps:", args[1])
			return
		}
		set = session.StrengthSet(0, weight, reps)
	}

	intents, err := r.engine.Apply(session.CompleteSet{Set: set})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, in := range intents {
		switch in := in.(type) {
		case session.SaveHistory:
			if err := r.store.SaveSet(in.Exercise, in.Weight, in.Reps, time.Now()); err != nil {
				r.log.Warn("local history save failed", "exercise", in.Exercise, "error", err)
			}
		case session.CelebratePR:
			fmt.Printf("*** new PR: %s %.1f kg x %d ***\n", in.Exercise, in.Weight, in.Reps)
		}
	}
	r.printPositionLocked()
}

func (r *runner) navigate(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: goto <block> <exercise>")
		return
	}
	block, err1 := strconv.Atoi(args[0])
	exercise, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Println("usage: goto <block> <exercise>")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.engine.Apply(session.Navigate{Block: block, Exercise: exercise}); err != nil {
		fmt.Println(err)
		return
	}
	r.printPositionLocked()
}

func (r *runner) apply(ev session.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.engine.Apply(ev); err != nil {
		fmt.Println(err)
		return
	}
	r.printPositionLocked()
}

func (r *runner) printPosition() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printPositionLocked()
}

func (r *runner) printPositionLocked() {
	if r.engine.Status() != session.StatusInProgress {
		return
	}
	pos := r.engine.Position()
	ex, ok := r.engine.CurrentExercise()
	if !ok {
		return
	}
	elapsed := r.timer.ElapsedSeconds()
	fmt.Printf("[%02d:%02d] block %d, round %d: %s", elapsed/60, elapsed%60, pos.Block+1, pos.Round, ex.Name)
	if ex.IsTimeBased() {
		fmt.Printf(" (%ds)", ex.TargetDurationSeconds())
	} else if ex.TargetReps > 0 {
		fmt.Printf(" (target %d reps)", ex.TargetReps)
	}
	if rest := r.engine.Rest(); rest != nil {
		fmt.Printf(" — resting %ds", rest.RemainingSeconds)
	}
	fmt.Println()
}

func (r *runner) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.summary != nil {
		return
	}

	sum := session.Finalize(r.engine.Store(), r.started, time.Now(), r.tmpl.Focus)
	r.summary = &sum

	id := uuid.New()
	detail := storage.SessionDetail{
		SessionLogRow: models.SessionLogRow{
			ID:             id,
			Focus:          sum.Focus,
			PlanName:       r.tmpl.Name,
			ElapsedMinutes: sum.ElapsedMinutes,
			StartedAt:      r.started,
			FinishedAt:     time.Now(),
		},
	}
	setNum := 0
	for _, ex := range sum.Exercises {
		for _, set := range ex.Sets {
			setNum++
			detail.Sets = append(detail.Sets, models.SessionSetRow{
				SessionID:    id,
				ExerciseName: ex.Name,
				SetNumber:    setNum,
				Round:        set.Round,
				WeightKg:     set.Weight,
				Reps:         set.Reps,
				DurationSec:  set.Seconds,
			})
		}
	}
	if err := r.store.QueueSession(detail); err != nil {
		r.log.Warn("queuing session failed", "error", err)
	}

	fmt.Printf("\nDone: %s — %d min, %d exercises\n", sum.Focus, sum.ElapsedMinutes, len(sum.Exercises))
	for _, ex := range sum.Exercises {
		fmt.Printf("  %s: %d sets\n", ex.Name, len(ex.Sets))
	}
}

func syncPending(store *local.Store, serverURL, apiKey string) {
	if serverURL == "" {
		fmt.Fprintln(os.Stderr, "sync requires -server")
		return
	}
	pending, err := store.PendingSessions()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot read pending sessions:", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	client := local.NewClient(serverURL, apiKey)
	synced := 0
	for _, detail := range pending {
		if err := client.UploadSession(detail); err != nil {
			fmt.Fprintf(os.Stderr, "sync %s failed: %v\n", detail.ID, err)
			continue
		}
		if err := store.MarkSynced(detail.ID); err != nil {
			fmt.Fprintf(os.Stderr, "marking %s synced failed: %v\n", detail.ID, err)
			continue
		}
		synced++
	}
	fmt.Printf("synced %d of %d sessions\n", synced, len(pending))
}
