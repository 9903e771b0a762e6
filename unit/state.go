package unit

import "github.com/angelini/generals/codec"

// State is one of Idle, Move, Look, Shoot, Command or Dead. All variants are
// comparable values, so two states can be checked with ==.
type State interface {
	Kind() StateKind
	String() string
}

type StateKind int

const (
	KindIdle StateKind = iota
	KindMove
	KindLook
	KindShoot
	KindCommand
	KindDead
)

type Idle struct{}

type Move struct {
	X, Y float64
}

type Look struct {
	X, Y float64
}

type Shoot struct {
	Target ID
}

// Command walks into range of Target and hands it Order.
type Command struct {
	Target ID
	Order  State
}

// Dead is terminal.
type Dead struct{}

func (Idle) Kind() StateKind    { return KindIdle }
func (Move) Kind() StateKind    { return KindMove }
func (Look) Kind() StateKind    { return KindLook }
func (Shoot) Kind() StateKind   { return KindShoot }
func (Command) Kind() StateKind { return KindCommand }
func (Dead) Kind() StateKind    { return KindDead }

func (Idle) String() string { return codec.Call("idle") }
func (Dead) String() string { return codec.Call("dead") }

func (s Move) String() string {
	return codec.Call("move", codec.FormatFloat(s.X), codec.FormatFloat(s.Y))
}

func (s Look) String() string {
	return codec.Call("look", codec.FormatFloat(s.X), codec.FormatFloat(s.Y))
}

func (s Shoot) String() string {
	return codec.Call("shoot", codec.FormatID(s.Target))
}

func (s Command) String() string {
	order := "idle"
	if s.Order != nil {
		order = s.Order.String()
	}
	return codec.Call("command", codec.FormatID(s.Target), order)
}

func IsDead(s State) bool {
	return s != nil && s.Kind() == KindDead
}

// StateQueue holds the states to resume once the current one completes. It
// is a stack: the most recently pushed state runs first.
type StateQueue struct {
	states []State
}

func (q *StateQueue) Push(s State) {
	q.states = append(q.states, s)
}

// Pop returns Idle when the queue is empty.
func (q *StateQueue) Pop() State {
	if len(q.states) == 0 {
		return Idle{}
	}
	last := len(q.states) - 1
	s := q.states[last]
	q.states[last] = nil
	q.states = q.states[:last]
	return s
}

// Peek returns what Pop would, without removing it.
func (q *StateQueue) Peek() State {
	if len(q.states) == 0 {
		return Idle{}
	}
	return q.states[len(q.states)-1]
}

func (q *StateQueue) Len() int {
	return len(q.states)
}
