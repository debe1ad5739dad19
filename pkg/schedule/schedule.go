// Package schedule runs background jobs on 5-field cron expressions.
//
//	schedule.Cron("0 0 * * *").
//	    Name("password-reset-token-sweep").
//	    WithoutOverlapping().
//	    Run(func(ctx context.Context) error { return resets.PurgeExpired(ctx) })
//
//	schedule.Start(ctx) // once, at boot
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Task is a scheduled job. The context is cancelled on shutdown.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	cronExpr  string
	task      Task
	noOverlap bool

	mu        sync.Mutex
	running   bool
	lastFired time.Time // minute the entry last fired in
}

// Schedule is a fluent builder for a single entry before it is registered.
type Schedule struct {
	e *entry
}

// ── Registry ─────────────────────────────────────────────────────────────────

var (
	regMu   sync.Mutex
	entries []*entry
)

// Cron schedules on a 5-field expression: minute hour day-of-month month
// day-of-week. Each field accepts *, n, a-b, */step and comma lists.
func Cron(expr string) *Schedule {
	return &Schedule{e: &entry{cronExpr: expr}}
}

// Daily fires at midnight.
func Daily() *Schedule { return Cron("0 0 * * *") }

// Hourly fires at minute zero of every hour.
func Hourly() *Schedule { return Cron("0 * * * *") }

// WithoutOverlapping skips a run while the previous one is still executing.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.e.noOverlap = true
	return s
}

// Name gives the entry an identifier for logs and schedule:list.
func (s *Schedule) Name(id string) *Schedule {
	s.e.id = id
	return s
}

// Run registers the task. It returns an error for malformed expressions.
func (s *Schedule) Run(fn Task) error {
	if err := Validate(s.e.cronExpr); err != nil {
		return err
	}

	s.e.task = fn

	regMu.Lock()
	defer regMu.Unlock()
	if s.e.id == "" {
		s.e.id = fmt.Sprintf("task-%d", len(entries)+1)
	}
	entries = append(entries, s.e)
	return nil
}

// Reset drops every registered entry.
func Reset() {
	regMu.Lock()
	entries = nil
	regMu.Unlock()
}

// ── Scheduler loop ───────────────────────────────────────────────────────────

// Start dispatches due tasks in the background until ctx is done.
func Start(ctx context.Context) {
	go run(ctx)
	logger.Info("schedule: scheduler started", "entries", len(List()))
}

func run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			Tick(ctx, now)
		}
	}
}

// Tick dispatches every entry due at now. Each entry fires at most once per
// calendar minute.
func Tick(ctx context.Context, now time.Time) {
	regMu.Lock()
	current := append([]*entry(nil), entries...)
	regMu.Unlock()

	minute := now.Truncate(time.Minute)
	for _, e := range current {
		if !Match(e.cronExpr, now) {
			continue
		}
		e.mu.Lock()
		fired := e.lastFired.Equal(minute)
		if !fired {
			e.lastFired = minute
		}
		e.mu.Unlock()

		if !fired {
			dispatch(ctx, e)
		}
	}
}

func dispatch(ctx context.Context, e *entry) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.mu.Unlock()

	go func() {
		start := time.Now()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()

		logger.Info("schedule: running task", "id", e.id)
		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "id", e.id, "error", err)
			return
		}
		logger.Info("schedule: task finished", "id", e.id, "duration", time.Since(start).String())
	}()
}

// ── Cron matching ────────────────────────────────────────────────────────────

var fieldBounds = [5][2]int{
	{0, 59}, // minute
	{0, 23}, // hour
	{1, 31}, // day of month
	{1, 12}, // month
	{0, 6},  // day of week, 0 = Sunday
}

// Validate reports whether expr is a well-formed 5-field expression.
func Validate(expr string) error {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("schedule: %q: want 5 fields, got %d", expr, len(fields))
	}
	for i, f := range fields {
		for _, part := range strings.Split(f, ",") {
			if _, err := matchPart(part, fieldBounds[i][0], fieldBounds[i]); err != nil {
				return fmt.Errorf("schedule: %q: %w", expr, err)
			}
		}
	}
	return nil
}

// Match reports whether t falls on expr. Malformed expressions never match.
func Match(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	values := [5]int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, values[i], fieldBounds[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, val int, bounds [2]int) bool {
	for _, part := range strings.Split(field, ",") {
		if ok, err := matchPart(part, val, bounds); err == nil && ok {
			return true
		}
	}
	return false
}

func matchPart(part string, val int, bounds [2]int) (bool, error) {
	step := 1
	if base, s, ok := strings.Cut(part, "/"); ok {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return false, fmt.Errorf("bad step %q", part)
		}
		step, part = n, base
	}

	lo, hi := bounds[0], bounds[1]
	switch {
	case part == "*":
	case strings.Contains(part, "-"):
		a, b, _ := strings.Cut(part, "-")
		var err1, err2 error
		lo, err1 = strconv.Atoi(a)
		hi, err2 = strconv.Atoi(b)
		if err1 != nil || err2 != nil || lo > hi {
			return false, fmt.Errorf("bad range %q", part)
		}
	default:
		n, err := strconv.Atoi(part)
		if err != nil {
			return false, fmt.Errorf("bad value %q", part)
		}
		lo = n
		if step == 1 {
			hi = n
		}
	}
	if lo < bounds[0] || hi > bounds[1] {
		return false, fmt.Errorf("%q out of range %d-%d", part, bounds[0], bounds[1])
	}

	return val >= lo && val <= hi && (val-lo)%step == 0, nil
}

// List returns the registered entries for schedule:list.
func List() []string {
	regMu.Lock()
	defer regMu.Unlock()

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, e.cronExpr))
	}
	return out
}
