package world

import (
	"log"

	"github.com/angelini/generals/unit"
)

// drain takes every delta that is ready without waiting for more.
func (w *World) drain() ([]unit.Delta, error) {
	if w.opts.Results == nil {
		return nil, nil
	}
	var deltas []unit.Delta
	for {
		select {
		case d, ok := <-w.opts.Results:
			if !ok {
				return deltas, ErrResultsClosed
			}
			deltas = append(deltas, d)
		default:
			return deltas, nil
		}
	}
}

// apply mutates the world with d and reports which unit changed state, if
// any. Dead units ignore updates.
func (w *World) apply(d unit.Delta, report *Report) (unit.ID, bool) {
	switch d := d.(type) {
	case unit.UpdateState:
		u, ok := w.units[d.ID]
		if !ok {
			log.Printf("apply %s: missing unit", d)
			return unit.ID{}, false
		}
		if !u.SetState(d.State) {
			return unit.ID{}, false
		}
		report.Applied = append(report.Applied, d.String())
		return d.ID, true

	case unit.NewUnit:
		u := unit.FromDelta(d)
		if err := w.AddUnit(u); err != nil {
			log.Printf("apply %s: %v", d, err)
			return unit.ID{}, false
		}
		report.Applied = append(report.Applied, d.String())
		report.Spawned = append(report.Spawned, u.ID)
	}
	return unit.ID{}, false
}
