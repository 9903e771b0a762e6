// Package battle wires the simulation, script workers, scenario timeline
// and tick journal together from a Config.
package battle

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/angelini/generals/journal"
	"github.com/angelini/generals/scenario"
	"github.com/angelini/generals/script"
	"github.com/angelini/generals/utils"
	"github.com/angelini/generals/world"
)

type Battle struct {
	Config *utils.Config
	World  *world.World
	Actor  *script.Actor

	timeline scenario.Timeline
	ticks    *journal.TickLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func Setup(cfg *utils.Config) (*Battle, error) {
	policy, err := script.ParseFaultPolicy(cfg.Scripts.FaultPolicy)
	if err != nil {
		return nil, err
	}
	library, err := script.LoadLibrary(cfg.Scripts.Dir)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %d behaviors", library.Len())

	var s *scenario.Scenario
	if cfg.Scenario.Path != "" {
		s, err = scenario.Load(cfg.Scenario.Path)
	} else {
		s, err = scenario.Default()
	}
	if err != nil {
		return nil, err
	}

	actor := script.NewActor(library, script.Options{
		Workers:      cfg.Scripts.Workers,
		ResultBuffer: cfg.Scripts.ResultBuffer,
		FaultPolicy:  policy,
		Threshold:    cfg.Math.Float64EqualityThreshold,
	})

	b := &Battle{
		Config:   cfg,
		Actor:    actor,
		timeline: s.Timeline,
	}

	opts := world.Options{
		Dispatcher:  actor,
		Behaviors:   library,
		Results:     actor.Results(),
		RosterEvery: cfg.Simulation.RosterEvery,
	}
	if cfg.Journal.Dir != "" {
		b.ticks = journal.NewTickLogger(cfg.Journal.Dir)
		opts.TickLogger = b.ticks
	}
	b.World = world.NewWorld(opts)

	if err := s.Populate(b.World); err != nil {
		actor.Close()
		return nil, err
	}
	log.Printf("battle: %d units, %d timeline entries, %d script workers",
		b.World.Len(), len(s.Timeline), cfg.Scripts.Workers)
	return b, nil
}

// Start plays the timeline in the background. It must be called at most
// once.
func (b *Battle) Start(ctx context.Context) {
	ctx, b.cancel = context.WithCancel(ctx)
	if len(b.timeline) == 0 {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.timeline.Play(ctx, b.Actor.Sink()); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("timeline: %v", err)
		}
	}()
}

// Run starts the battle and steps the world at the configured rate until
// ctx is done.
func (b *Battle) Run(ctx context.Context) error {
	b.Start(ctx)
	err := b.World.Run(ctx, b.Config.Simulation.TickRate)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops the timeline before the actor so nothing writes to a closed
// results channel.
func (b *Battle) Close() error {
	var err error
	b.once.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		b.wg.Wait()
		b.Actor.Close()
		if b.ticks != nil {
			err = b.ticks.Close()
		}
	})
	return err
}
