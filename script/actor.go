package script

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/segmentio/ksuid"

	"github.com/angelini/generals/unit"
	"github.com/angelini/generals/utils"
)

var ErrWorkerStopped = errors.New("script worker stopped")

// FaultPolicy decides what a worker does after a script fails.
type FaultPolicy string

const (
	// Terminate stops the worker; its shard silently drops later events.
	Terminate FaultPolicy = "terminate"
	// Drop logs the failure and keeps the worker running.
	Drop FaultPolicy = "drop"
)

func ParseFaultPolicy(s string) (FaultPolicy, error) {
	switch FaultPolicy(s) {
	case "", Terminate:
		return Terminate, nil
	case Drop:
		return Drop, nil
	}
	return "", fmt.Errorf("unknown fault policy %q", s)
}

type Options struct {
	Workers      int
	ResultBuffer int
	FaultPolicy  FaultPolicy
	// Threshold is the largest coordinate difference still treated as the
	// same state when comparing a script's answer to the snapshot.
	Threshold float64
	NewEngine EngineFactory
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.ResultBuffer <= 0 {
		o.ResultBuffer = 1024
	}
	if o.FaultPolicy == "" {
		o.FaultPolicy = Terminate
	}
	if o.NewEngine == nil {
		o.NewEngine = NewLuaEngine
	}
	return o
}

// Actor runs behaviors off the simulation goroutine. Events for one unit
// always land on the same worker, so they are evaluated in dispatch order.
type Actor struct {
	library *Library
	opts    Options

	boxes   []*mailbox
	results chan unit.Delta
	done    chan struct{}
	wg      sync.WaitGroup

	alive  atomic.Int32
	faults atomic.Uint64
	once   sync.Once
}

func NewActor(library *Library, opts Options) *Actor {
	opts = opts.withDefaults()
	a := &Actor{
		library: library,
		opts:    opts,
		boxes:   make([]*mailbox, opts.Workers),
		results: make(chan unit.Delta, opts.ResultBuffer),
		done:    make(chan struct{}),
	}
	for i := range a.boxes {
		a.boxes[i] = newMailbox()
		a.wg.Add(1)
		a.alive.Add(1)
		go a.work(i, a.boxes[i], opts.NewEngine())
	}
	return a
}

// Dispatch queues ev for evaluation and returns its trace id. It never
// blocks; events for a stopped worker are dropped.
func (a *Actor) Dispatch(ev unit.Event) ksuid.KSUID {
	req := Request{Trace: ksuid.New(), Event: ev}
	a.boxes[a.shard(ev.Self.ID)].Push(req)
	return req.Trace
}

func (a *Actor) Results() <-chan unit.Delta {
	return a.results
}

// Sink lets other producers, such as a scripted timeline, feed deltas into
// the same channel the simulation drains.
func (a *Actor) Sink() chan<- unit.Delta {
	return a.results
}

func (a *Actor) Alive() int {
	return int(a.alive.Load())
}

func (a *Actor) Faults() uint64 {
	return a.faults.Load()
}

// Close stops accepting events, lets workers finish what is queued and
// closes the results channel. Producers writing to Sink must stop first.
func (a *Actor) Close() {
	a.once.Do(func() {
		for _, box := range a.boxes {
			box.Close()
		}
		close(a.done)
		a.wg.Wait()
		close(a.results)
	})
}

func (a *Actor) shard(id unit.ID) int {
	return int(binary.BigEndian.Uint64(id[8:]) % uint64(len(a.boxes)))
}

func (a *Actor) work(n int, box *mailbox, engine Engine) {
	defer a.wg.Done()
	defer a.alive.Add(-1)
	defer engine.Close()

	for {
		req, ok := box.Pop()
		if !ok {
			return
		}

		delta, err := a.evaluate(engine, req.Event)
		if err != nil {
			a.faults.Add(1)
			log.Printf("script worker %d: %s %s: %v", n, req.Trace, req.Event.Key, err)
			if a.opts.FaultPolicy == Terminate {
				box.Stop()
				log.Printf("script worker %d: %v", n, ErrWorkerStopped)
				return
			}
			continue
		}
		if delta == nil {
			continue
		}
		if !a.emit(delta) {
			return
		}
	}
}

func (a *Actor) emit(d unit.Delta) bool {
	select {
	case a.results <- d:
		return true
	default:
	}
	select {
	case a.results <- d:
		return true
	case <-a.done:
		return false
	}
}

func (a *Actor) evaluate(engine Engine, ev unit.Event) (unit.Delta, error) {
	b, ok := a.library.Lookup(ev.Key)
	if !ok {
		return nil, nil
	}
	text, err := engine.Run(b, ev.Self, ev.Other)
	if err != nil {
		return nil, err
	}
	state, err := unit.DecodeState(text)
	if err != nil {
		return nil, fmt.Errorf("declared %q: %w", text, err)
	}
	if SameState(state, ev.Self.State, a.opts.Threshold) {
		return nil, nil
	}
	return unit.UpdateState{ID: ev.Self.ID, State: state}, nil
}

// SameState compares states, allowing coordinates to differ by threshold.
// Decoded states carry two decimals, so exact comparison would report
// changes the script never made.
func SameState(a, b unit.State, threshold float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case unit.Move:
		y, ok := b.(unit.Move)
		return ok && utils.AlmostEqual(x.X, y.X, threshold) && utils.AlmostEqual(x.Y, y.Y, threshold)
	case unit.Look:
		y, ok := b.(unit.Look)
		return ok && utils.AlmostEqual(x.X, y.X, threshold) && utils.AlmostEqual(x.Y, y.Y, threshold)
	case unit.Command:
		y, ok := b.(unit.Command)
		return ok && x.Target == y.Target && SameState(x.Order, y.Order, threshold)
	}
	return a == b
}
