package world

import (
	"github.com/angelini/generals/geometry"
	"github.com/angelini/generals/unit"
)

// detect recomputes every unit's overlap and view sets, dispatches events
// for the transitions since last tick and replaces both caches.
func (w *World) detect(report *Report) {
	bodies := make(map[unit.ID]geometry.Polygon, len(w.units))
	for id, u := range w.units {
		bodies[id] = u.Body()
	}

	for _, id := range w.order {
		u := w.units[id]
		body := bodies[id]
		fov := u.FieldOfView()

		overlaps := relations{}
		sees := relations{}
		var entered, collided []unit.ID
		for _, otherID := range w.order {
			if otherID == id {
				continue
			}
			other := bodies[otherID]
			if body.Intersects(other) {
				overlaps[otherID] = struct{}{}
				if _, seen := w.collisionSeen[id][otherID]; !seen {
					collided = append(collided, otherID)
				}
			}
			if fov.Intersects(other) {
				sees[otherID] = struct{}{}
				if _, seen := w.viewSeen[id][otherID]; !seen {
					entered = append(entered, otherID)
				}
			}
		}

		for _, otherID := range collided {
			w.dispatch(report, unit.Collision, u, w.units[otherID])
		}
		for _, otherID := range entered {
			w.dispatch(report, unit.EnterView, u, w.units[otherID])
		}
		for otherID := range w.viewSeen[id] {
			if _, still := sees[otherID]; still {
				continue
			}
			// Units removed since last tick leave without an exit event.
			if other, ok := w.units[otherID]; ok {
				w.dispatch(report, unit.ExitView, u, other)
			}
		}

		w.collisionSeen[id] = overlaps
		w.viewSeen[id] = sees
	}
}

func (w *World) dispatch(report *Report, kind unit.EventKind, self, other *unit.Unit) {
	if w.opts.Dispatcher == nil {
		return
	}
	key := unit.BehaviorKey{Role: self.Role, Kind: kind}
	if w.opts.Behaviors != nil && !w.opts.Behaviors.Has(key) {
		return
	}

	ev := unit.Event{Key: key, Self: self.Snapshot()}
	entry := Dispatched{Key: key.String(), Unit: self.ID}
	if other != nil {
		snap := other.Snapshot()
		ev.Other = &snap
		entry.Other = &snap.ID
	}
	entry.Trace = w.opts.Dispatcher.Dispatch(ev)
	report.Dispatched = append(report.Dispatched, entry)
}
