package utils

import (
	"log"
	"regexp"
	"testing"
)

// TestReadTOML calls ReadTOML with a known test config, checking
// for a valid return value for each key
func TestReadTOML(t *testing.T) {
	cfg, err := ReadTOML("testConf.toml")
	if err != nil {
		t.Fatal(err)
	}
	log.Printf("config: %v", cfg)

	var wantRegex = regexp.MustCompile("test")
	if !wantRegex.MatchString(cfg.Scripts.Dir) {
		t.Fatalf(`Scripts.Dir = %q, want match for %#q`, cfg.Scripts.Dir, wantRegex)
	}

	var wantInt = 30
	if cfg.Simulation.TickRate != wantInt {
		t.Fatalf(`Simulation.TickRate = %v, want match for %#v`, cfg.Simulation.TickRate, wantInt)
	}

	wantInt = 2
	if cfg.Scripts.Workers != wantInt {
		t.Fatalf(`Scripts.Workers = %v, want match for %#v`, cfg.Scripts.Workers, wantInt)
	}

	wantInt = 1
	if cfg.UI.Resolution.X != wantInt || cfg.UI.Resolution.Y != wantInt {
		t.Fatalf(`UI.Resolution = %v, want match for %#v`, cfg.UI.Resolution, wantInt)
	}

	var wantFloat = 0.01
	if cfg.Math.Float64EqualityThreshold != wantFloat {
		t.Fatalf(`Math.Float64EqualityThreshold = %v, want match for %#v`, cfg.Math.Float64EqualityThreshold, wantFloat)
	}
}

// Keys missing from the file fall back to defaults.
func TestReadTOMLDefaults(t *testing.T) {
	cfg, err := ReadTOML("testConf.toml")
	if err != nil {
		t.Fatal(err)
	}
	d := DefaultConfig()
	if cfg.Scripts.ResultBuffer != d.Scripts.ResultBuffer {
		t.Fatalf(`Scripts.ResultBuffer = %v, want %v`, cfg.Scripts.ResultBuffer, d.Scripts.ResultBuffer)
	}
	if cfg.Simulation.RosterEvery != d.Simulation.RosterEvery {
		t.Fatalf(`Simulation.RosterEvery = %v, want %v`, cfg.Simulation.RosterEvery, d.Simulation.RosterEvery)
	}
	if cfg.Journal.Dir != "" || cfg.Scenario.Path != "" {
		t.Fatalf(`unexpected paths %q %q`, cfg.Journal.Dir, cfg.Scenario.Path)
	}
}

// An empty file and no file at all must agree.
func TestEmptyConfigMatchesDefaults(t *testing.T) {
	var cfg Config
	if *cfg.WithDefaults() != *DefaultConfig() {
		t.Fatalf(`config = %+v`, cfg)
	}
}

func TestNegativeRosterEveryDisablesRoster(t *testing.T) {
	cfg := Config{Simulation: SimulationConfig{RosterEvery: -1}}
	if got := cfg.WithDefaults().Simulation.RosterEvery; got != -1 {
		t.Fatalf(`Simulation.RosterEvery = %v, want -1`, got)
	}
}

func TestReadTOMLMissingFile(t *testing.T) {
	if _, err := ReadTOML("missing.toml"); err == nil {
		t.Fatalf(`expected an error`)
	}
}

func TestAlmostEqual(t *testing.T) {
	if !AlmostEqual(1, 1.004, 0.005) {
		t.Fatalf(`1 and 1.004 should be equal within 0.005`)
	}
	if AlmostEqual(1, 1.006, 0.005) {
		t.Fatalf(`1 and 1.006 should differ beyond 0.005`)
	}
}
