package world

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/angelini/generals/unit"
)

type Dispatched struct {
	Trace ksuid.KSUID `json:"trace"`
	Key   string      `json:"key"`
	Unit  unit.ID     `json:"unit"`
	Other *unit.ID    `json:"other,omitempty"`
}

// Report is what one tick did to the world.
type Report struct {
	Tick       int64         `json:"tick"`
	Dispatched []Dispatched  `json:"dispatched,omitempty"`
	Applied    []string      `json:"applied,omitempty"`
	Spawned    []unit.ID     `json:"spawned,omitempty"`
	Removed    []unit.ID     `json:"removed,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

func (r *Report) Count(kind unit.EventKind) int {
	n := 0
	for _, d := range r.Dispatched {
		key, err := unit.ParseBehaviorKey(d.Key)
		if err == nil && key.Kind == kind {
			n++
		}
	}
	return n
}
