package script

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelini/generals/unit"
)

func newEvent(kind unit.EventKind, self, other *unit.Unit) unit.Event {
	ev := unit.Event{Key: unit.BehaviorKey{Role: self.Role, Kind: kind}, Self: self.Snapshot()}
	if other != nil {
		snap := other.Snapshot()
		ev.Other = &snap
	}
	return ev
}

func receive(t *testing.T, results <-chan unit.Delta) unit.Delta {
	t.Helper()
	select {
	case d := <-results:
		return d
	case <-time.After(2 * time.Second):
		t.Fatalf(`no delta received`)
	}
	return nil
}

func testLibrary(t *testing.T, sources map[unit.BehaviorKey]string) *Library {
	t.Helper()
	lib := NewLibrary()
	for key, source := range sources {
		if err := lib.Bind(key, source); err != nil {
			t.Fatalf(`bind %s: %v`, key, err)
		}
	}
	return lib
}

func TestLoadLibraryBuiltins(t *testing.T) {
	lib, err := LoadLibrary("")
	if err != nil {
		t.Fatal(err)
	}
	if !lib.Has(unit.BehaviorKey{Role: unit.Soldier, Kind: unit.EnterView}) {
		t.Fatalf(`soldier_on_enter_view not bound`)
	}
	if lib.Has(unit.BehaviorKey{Role: unit.Soldier, Kind: unit.ExitView}) {
		t.Fatalf(`soldier_on_exit_view should not be bound`)
	}
	if lib.Len() != 6 {
		t.Fatalf(`bound %d behaviors, want 6`, lib.Len())
	}
}

func TestLoadLibraryOverridesFromDir(t *testing.T) {
	dir := t.TempDir()
	source := `self.state = "idle"`
	if err := os.WriteFile(filepath.Join(dir, "soldier_on_exit_view.lua"), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	lib, err := LoadLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}
	b, ok := lib.Lookup(unit.BehaviorKey{Role: unit.Soldier, Kind: unit.ExitView})
	if !ok || b.Source != source {
		t.Fatalf(`override not loaded: %v`, b)
	}
	if lib.Len() != 7 {
		t.Fatalf(`bound %d behaviors, want 7`, lib.Len())
	}
}

func TestBindRejectsBadSource(t *testing.T) {
	lib := NewLibrary()
	if err := lib.Bind(unit.BehaviorKey{Role: unit.Bullet, Kind: unit.Collision}, "if then"); err == nil {
		t.Fatalf(`expected a parse error`)
	}
	if lib.Len() != 0 {
		t.Fatalf(`bad source was bound`)
	}
}

func TestLuaEngineSeesSnapshots(t *testing.T) {
	key := unit.BehaviorKey{Role: unit.Soldier, Kind: unit.EnterView}
	b, err := Compile(key, `self.state = string.format("move(%.2f, %.2f)", other.x, other.y + self.team)`)
	if err != nil {
		t.Fatal(err)
	}
	engine := NewLuaEngine()
	defer engine.Close()

	self := unit.New(unit.Soldier, unit.NewID(), 0, 0, 0, 3)
	other := unit.New(unit.General, unit.NewID(), 12.5, 40, 0, 2)
	ev := newEvent(unit.EnterView, self, other)

	text, err := engine.Run(b, ev.Self, ev.Other)
	if err != nil {
		t.Fatal(err)
	}
	if text != "move(12.50, 43.00)" {
		t.Fatalf(`state = %q`, text)
	}
}

func TestActorEmitsOnlyChanges(t *testing.T) {
	lib := testLibrary(t, map[unit.BehaviorKey]string{
		{Role: unit.Soldier, Kind: unit.StateChange}: `self.state = string.format("move(%.2f, %.2f)", self.x, self.y)`,
	})
	actor := NewActor(lib, Options{Workers: 2, Threshold: 0.005})
	defer actor.Close()

	u := unit.New(unit.Soldier, unit.NewID(), 1.001, 2.002, 0, 1)
	// Same target, within rounding: no delta.
	u.State = unit.Move{X: 1.001, Y: 2.002}
	actor.Dispatch(newEvent(unit.StateChange, u, nil))

	u.State = unit.Idle{}
	actor.Dispatch(newEvent(unit.StateChange, u, nil))

	got := receive(t, actor.Results())
	want := unit.UpdateState{ID: u.ID, State: unit.Move{X: 1, Y: 2}}
	if got != want {
		t.Fatalf(`delta = %s, want %s`, got, want)
	}
}

func TestActorKeepsPerUnitOrder(t *testing.T) {
	lib := testLibrary(t, map[unit.BehaviorKey]string{
		{Role: unit.Soldier, Kind: unit.StateChange}: `self.state = string.format("move(%.2f, 0.00)", self.x)`,
	})
	actor := NewActor(lib, Options{Workers: 4})
	defer actor.Close()

	id := unit.NewID()
	for i := 0; i < 50; i++ {
		u := unit.New(unit.Soldier, id, float64(i), 0, 0, 1)
		actor.Dispatch(newEvent(unit.StateChange, u, nil))
	}
	for i := 0; i < 50; i++ {
		got := receive(t, actor.Results())
		want := unit.UpdateState{ID: id, State: unit.Move{X: float64(i), Y: 0}}
		if got != want {
			t.Fatalf(`delta %d = %s, want %s`, i, got, want)
		}
	}
}

func TestActorTerminatesOnFault(t *testing.T) {
	lib := testLibrary(t, map[unit.BehaviorKey]string{
		{Role: unit.Soldier, Kind: unit.Collision}: `error("boom")`,
		{Role: unit.Soldier, Kind: unit.EnterView}: `self.state = "dead"`,
	})
	actor := NewActor(lib, Options{Workers: 1, FaultPolicy: Terminate})

	u := unit.New(unit.Soldier, unit.NewID(), 0, 0, 0, 1)
	actor.Dispatch(newEvent(unit.Collision, u, u))
	actor.Dispatch(newEvent(unit.EnterView, u, u))

	deadline := time.Now().Add(2 * time.Second)
	for actor.Alive() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if actor.Alive() != 0 {
		t.Fatalf(`worker still alive after fault`)
	}
	actor.Dispatch(newEvent(unit.EnterView, u, u))
	actor.Close()

	for d := range actor.Results() {
		t.Fatalf(`stopped worker produced %s`, d)
	}
	if actor.Faults() != 1 {
		t.Fatalf(`faults = %d`, actor.Faults())
	}
}

func TestActorDropPolicyKeepsWorking(t *testing.T) {
	lib := testLibrary(t, map[unit.BehaviorKey]string{
		{Role: unit.Soldier, Kind: unit.Collision}: `self.state = "fly(1.00)"`,
		{Role: unit.Soldier, Kind: unit.EnterView}: `self.state = "dead"`,
	})
	actor := NewActor(lib, Options{Workers: 1, FaultPolicy: Drop})
	defer actor.Close()

	u := unit.New(unit.Soldier, unit.NewID(), 0, 0, 0, 1)
	actor.Dispatch(newEvent(unit.Collision, u, u))
	actor.Dispatch(newEvent(unit.EnterView, u, u))

	got := receive(t, actor.Results())
	if got != (unit.UpdateState{ID: u.ID, State: unit.Dead{}}) {
		t.Fatalf(`delta = %s`, got)
	}
	if actor.Alive() != 1 || actor.Faults() != 1 {
		t.Fatalf(`alive = %d, faults = %d`, actor.Alive(), actor.Faults())
	}
}

func TestUnboundEventIsIgnored(t *testing.T) {
	actor := NewActor(NewLibrary(), Options{})
	u := unit.New(unit.Bullet, unit.NewID(), 0, 0, 0, 1)
	actor.Dispatch(newEvent(unit.ExitView, u, u))
	actor.Close()
	for d := range actor.Results() {
		t.Fatalf(`unexpected delta %s`, d)
	}
}

func TestSameState(t *testing.T) {
	id := unit.NewID()
	for _, c := range []struct {
		a, b unit.State
		want bool
	}{
		{unit.Idle{}, unit.Idle{}, true},
		{unit.Idle{}, unit.Dead{}, false},
		{unit.Move{X: 1, Y: 2}, unit.Move{X: 1.004, Y: 1.996}, true},
		{unit.Move{X: 1, Y: 2}, unit.Move{X: 1.01, Y: 2}, false},
		{unit.Move{X: 1, Y: 2}, unit.Look{X: 1, Y: 2}, false},
		{unit.Shoot{Target: id}, unit.Shoot{Target: id}, true},
		{unit.Shoot{Target: id}, unit.Shoot{Target: unit.NewID()}, false},
		{unit.Command{Target: id, Order: unit.Look{X: 3, Y: 4}}, unit.Command{Target: id, Order: unit.Look{X: 3.001, Y: 4}}, true},
	} {
		if got := SameState(c.a, c.b, 0.005); got != c.want {
			t.Fatalf(`SameState(%s, %s) = %v`, c.a, c.b, got)
		}
	}
}

type stubEngine struct {
	state  string
	closed *atomic.Int32
}

func (e *stubEngine) Run(b *Behavior, self unit.Snapshot, other *unit.Snapshot) (string, error) {
	return e.state, nil
}

func (e *stubEngine) Close() { e.closed.Add(1) }

func TestActorOwnsOneEnginePerWorker(t *testing.T) {
	lib := testLibrary(t, map[unit.BehaviorKey]string{
		{Role: unit.General, Kind: unit.Collision}: `-- evaluated by the stub`,
	})
	created := 0
	var closed atomic.Int32
	actor := NewActor(lib, Options{Workers: 3, NewEngine: func() Engine {
		created++
		return &stubEngine{state: "dead", closed: &closed}
	}})
	if created != 3 {
		t.Fatalf(`created %d engines for 3 workers`, created)
	}

	u := unit.New(unit.General, unit.NewID(), 0, 0, 0, 1)
	actor.Dispatch(newEvent(unit.Collision, u, u))
	if got := receive(t, actor.Results()); got != (unit.UpdateState{ID: u.ID, State: unit.Dead{}}) {
		t.Fatalf(`delta = %s`, got)
	}

	actor.Close()
	if closed.Load() != 3 {
		t.Fatalf(`closed %d engines`, closed.Load())
	}
}
