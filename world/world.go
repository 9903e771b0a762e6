package world

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/angelini/generals/unit"
)

var (
	ErrDuplicateUnit = errors.New("unit already exists")
	ErrResultsClosed = errors.New("script results channel closed")
	ErrTickRate      = errors.New("tick rate must be positive")
)

// Dispatcher hands events to the script layer. It must not block.
type Dispatcher interface {
	Dispatch(ev unit.Event) ksuid.KSUID
}

// Behaviors reports whether any script reacts to key. Events nobody reacts
// to are still detected, just never dispatched.
type Behaviors interface {
	Has(key unit.BehaviorKey) bool
}

type TickLogger interface {
	WriteTick(r *Report) error
}

type Options struct {
	Dispatcher Dispatcher
	Behaviors  Behaviors
	Results    <-chan unit.Delta
	TickLogger TickLogger
	// RosterEvery logs every unit once per this many ticks. Values below one
	// disable it.
	RosterEvery int
}

type relations map[unit.ID]struct{}

// World owns every unit and both relationship caches. It is driven by one
// goroutine and is not safe for concurrent use.
type World struct {
	opts Options

	units map[unit.ID]*unit.Unit
	order []unit.ID

	collisionSeen map[unit.ID]relations
	viewSeen      map[unit.ID]relations

	tick int64
}

func NewWorld(opts Options) *World {
	return &World{
		opts:          opts,
		units:         make(map[unit.ID]*unit.Unit),
		collisionSeen: make(map[unit.ID]relations),
		viewSeen:      make(map[unit.ID]relations),
	}
}

func (w *World) AddUnit(u *unit.Unit) error {
	if _, ok := w.units[u.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUnit, u.ID)
	}
	w.units[u.ID] = u
	w.order = append(w.order, u.ID)
	w.collisionSeen[u.ID] = relations{}
	w.viewSeen[u.ID] = relations{}
	return nil
}

func (w *World) Unit(id unit.ID) *unit.Unit {
	return w.units[id]
}

func (w *World) Len() int {
	return len(w.units)
}

func (w *World) Tick() int64 {
	return w.tick
}

// ForEachUnit visits units in the order they joined.
func (w *World) ForEachUnit(callback func(*unit.Unit)) {
	for _, id := range w.order {
		callback(w.units[id])
	}
}

func (w *World) view() unit.View {
	view := make(unit.View, len(w.units))
	for id, u := range w.units {
		view[id] = u.Placement()
	}
	return view
}

// Step advances the world by dt seconds. Deltas drained before the results
// channel turned out closed are still applied; ErrResultsClosed is returned
// alongside the report.
func (w *World) Step(dt float64) (*Report, error) {
	start := time.Now()
	report := &Report{Tick: w.tick}

	changed := w.updateUnits(dt, report)
	for _, id := range changed {
		w.dispatch(report, unit.StateChange, w.units[id], nil)
	}

	w.detect(report)

	deltas, err := w.drain()
	changed = changed[:0]
	for _, d := range deltas {
		if id, ok := w.apply(d, report); ok && !slices.Contains(changed, id) {
			changed = append(changed, id)
		}
	}
	for _, id := range changed {
		if u, ok := w.units[id]; ok {
			w.dispatch(report, unit.StateChange, u, nil)
		}
	}

	w.reap(report)

	report.Duration = time.Since(start)
	if report.Duration > time.Millisecond {
		log.Printf("tick %d took %s (%d units)", w.tick, report.Duration, len(w.units))
	}
	if every := w.opts.RosterEvery; every > 0 && w.tick%int64(every) == 0 {
		w.logRoster()
	}
	if w.opts.TickLogger != nil {
		if err := w.opts.TickLogger.WriteTick(report); err != nil {
			log.Printf("tick log: %v", err)
		}
	}
	w.tick++

	return report, err
}

// Run steps the world at tickRate until ctx is done or the results channel
// closes.
func (w *World) Run(ctx context.Context, tickRate int) error {
	if tickRate <= 0 {
		return fmt.Errorf("%w: %d", ErrTickRate, tickRate)
	}
	interval := time.Second / time.Duration(tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dt := interval.Seconds()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Step(dt); err != nil {
				return err
			}
		}
	}
}

// updateUnits runs every state machine against one shared view and returns
// the units whose state changed.
func (w *World) updateUnits(dt float64, report *Report) []unit.ID {
	view := w.view()

	var changed []unit.ID
	var spawned []*unit.Unit
	var commands []unit.UpdateState
	for _, id := range w.order {
		u := w.units[id]
		before := u.State
		result := u.Update(dt, view)
		if u.State != before {
			changed = append(changed, id)
		}
		if result.Spawned != nil {
			spawned = append(spawned, result.Spawned)
		}
		if result.Command != nil {
			commands = append(commands, *result.Command)
		}
	}

	for _, c := range commands {
		if id, ok := w.apply(c, report); ok && !slices.Contains(changed, id) {
			changed = append(changed, id)
		}
	}
	for _, u := range spawned {
		if err := w.AddUnit(u); err != nil {
			log.Printf("spawn: %v", err)
			continue
		}
		report.Spawned = append(report.Spawned, u.ID)
	}
	return changed
}

func (w *World) reap(report *Report) {
	kept := w.order[:0]
	for _, id := range w.order {
		u := w.units[id]
		if !unit.IsDead(u.State) {
			kept = append(kept, id)
			continue
		}
		delete(w.units, id)
		delete(w.collisionSeen, id)
		delete(w.viewSeen, id)
		report.Removed = append(report.Removed, id)
	}
	w.order = kept
}

func (w *World) logRoster() {
	log.Printf("roster: tick %d, %d units", w.tick, len(w.units))
	w.ForEachUnit(func(u *unit.Unit) {
		log.Printf("roster: %s %s team %d at (%.2f, %.2f) %s next %s",
			u.Role, u.ID, u.Team, u.Pose.X, u.Pose.Y, u.State, u.Next())
	})
}
