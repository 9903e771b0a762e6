package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/angelini/generals/unit"
)

var ErrNoState = errors.New("script left no self.state")

// Engine evaluates behaviors. An engine belongs to exactly one worker and is
// never called concurrently.
type Engine interface {
	// Run executes b against the snapshots and returns the state text the
	// script declared for self.
	Run(b *Behavior, self unit.Snapshot, other *unit.Snapshot) (string, error)
	Close()
}

type EngineFactory func() Engine

type LuaEngine struct {
	state *lua.LState
}

func NewLuaEngine() Engine {
	return &LuaEngine{state: lua.NewState()}
}

func (e *LuaEngine) Run(b *Behavior, self unit.Snapshot, other *unit.Snapshot) (string, error) {
	L := e.state
	defer L.SetTop(0)

	L.SetGlobal("self", snapshotTable(L, self))
	if other != nil {
		L.SetGlobal("other", snapshotTable(L, *other))
	} else {
		L.SetGlobal("other", lua.LNil)
	}

	L.Push(L.NewFunctionFromProto(b.proto))
	if err := L.PCall(0, 0, nil); err != nil {
		return "", fmt.Errorf("%s: %w", b.Key, err)
	}

	table, ok := L.GetGlobal("self").(*lua.LTable)
	if !ok {
		return "", fmt.Errorf("%s: %w", b.Key, ErrNoState)
	}
	state, ok := table.RawGetString("state").(lua.LString)
	if !ok {
		return "", fmt.Errorf("%s: %w", b.Key, ErrNoState)
	}
	return string(state), nil
}

func (e *LuaEngine) Close() {
	e.state.Close()
}

func snapshotTable(L *lua.LState, s unit.Snapshot) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(s.ID.String()))
	t.RawSetString("x", lua.LNumber(s.X))
	t.RawSetString("y", lua.LNumber(s.Y))
	t.RawSetString("team", lua.LNumber(s.Team))
	t.RawSetString("role", lua.LString(s.Role.String()))
	state := "idle"
	if s.State != nil {
		state = s.State.String()
	}
	t.RawSetString("state", lua.LString(state))
	return t
}
