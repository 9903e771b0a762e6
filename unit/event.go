package unit

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelini/generals/codec"
)

type ID = uuid.UUID

func NewID() ID {
	return uuid.New()
}

type EventKind int

const (
	Collision EventKind = iota
	StateChange
	EnterView
	ExitView
)

const EventKindCount = 4

var eventKindNames = [EventKindCount]string{
	Collision:   "collision",
	StateChange: "state_change",
	EnterView:   "enter_view",
	ExitView:    "exit_view",
}

func (k EventKind) Valid() bool {
	return k >= 0 && k < EventKindCount
}

func (k EventKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("event(%d)", int(k))
	}
	return eventKindNames[k]
}

// BehaviorKey names the script entry point for a role reacting to an event,
// e.g. "soldier_on_enter_view".
type BehaviorKey struct {
	Role Role
	Kind EventKind
}

func (k BehaviorKey) String() string {
	return k.Role.String() + "_on_" + k.Kind.String()
}

func ParseBehaviorKey(s string) (BehaviorKey, error) {
	for r := Role(0); r < RoleCount; r++ {
		for k := EventKind(0); k < EventKindCount; k++ {
			key := BehaviorKey{Role: r, Kind: k}
			if key.String() == s {
				return key, nil
			}
		}
	}
	return BehaviorKey{}, fmt.Errorf("unknown behavior %q", s)
}

// Snapshot is a value copy of what a script may know about a unit. It never
// aliases World state.
type Snapshot struct {
	ID    ID
	X, Y  float64
	Team  int
	Role  Role
	State State
}

type Event struct {
	Key   BehaviorKey
	Self  Snapshot
	Other *Snapshot
}

// Delta is a mutation of the World produced off the simulation goroutine:
// either UpdateState or NewUnit.
type Delta interface {
	fmt.Stringer
	delta()
}

type UpdateState struct {
	ID    ID
	State State
}

type NewUnit struct {
	Role     Role
	ID       ID
	X, Y     float64
	Rotation float64
	Team     int
}

func (UpdateState) delta() {}
func (NewUnit) delta()     {}

func (d UpdateState) String() string {
	return codec.Call("update_state", codec.FormatID(d.ID), d.State.String())
}

func (d NewUnit) String() string {
	return codec.Call("new_unit",
		d.Role.String(),
		codec.FormatID(d.ID),
		codec.FormatFloat(d.X),
		codec.FormatFloat(d.Y),
		codec.FormatFloat(d.Rotation),
		codec.FormatInt(d.Team),
	)
}
