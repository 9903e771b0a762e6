package utils

import (
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type SimulationConfig struct {
	// TickRate is simulation steps per second.
	TickRate int
	// RosterEvery logs every unit once per this many ticks. Zero means the
	// default, a negative value disables it.
	RosterEvery int
}

type ScriptsConfig struct {
	Workers      int
	Dir          string
	FaultPolicy  string
	ResultBuffer int
}

type ResolutionConfig struct {
	X, Y int
}

type UIConfig struct {
	Resolution ResolutionConfig
}

type MathConfig struct {
	Float64EqualityThreshold float64
}

type ScenarioConfig struct {
	Path string
}

type JournalConfig struct {
	// Dir receives the compressed tick journal. Empty disables it.
	Dir string
}

type Config struct {
	Simulation SimulationConfig
	Scripts    ScriptsConfig
	UI         UIConfig
	Math       MathConfig
	Scenario   ScenarioConfig
	Journal    JournalConfig
}

func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{TickRate: 60, RosterEvery: 600},
		Scripts:    ScriptsConfig{Workers: 4, FaultPolicy: "terminate", ResultBuffer: 1024},
		UI:         UIConfig{Resolution: ResolutionConfig{X: 1280, Y: 720}},
		Math:       MathConfig{Float64EqualityThreshold: 0.005},
	}
}

// WithDefaults fills every unset field from DefaultConfig.
func (c *Config) WithDefaults() *Config {
	d := DefaultConfig()
	if c.Simulation.TickRate <= 0 {
		c.Simulation.TickRate = d.Simulation.TickRate
	}
	if c.Simulation.RosterEvery == 0 {
		c.Simulation.RosterEvery = d.Simulation.RosterEvery
	}
	if c.Scripts.Workers <= 0 {
		c.Scripts.Workers = d.Scripts.Workers
	}
	if c.Scripts.FaultPolicy == "" {
		c.Scripts.FaultPolicy = d.Scripts.FaultPolicy
	}
	if c.Scripts.ResultBuffer <= 0 {
		c.Scripts.ResultBuffer = d.Scripts.ResultBuffer
	}
	if c.UI.Resolution.X <= 0 || c.UI.Resolution.Y <= 0 {
		c.UI.Resolution = d.UI.Resolution
	}
	if c.Math.Float64EqualityThreshold <= 0 {
		c.Math.Float64EqualityThreshold = d.Math.Float64EqualityThreshold
	}
	return c
}

func ReadTOML(fileName string) (*Config, error) {
	file, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := toml.Unmarshal(file, &config); err != nil {
		return nil, err
	}
	return config.WithDefaults(), nil
}

func AlmostEqual(a, b, threshold float64) bool {
	return math.Abs(a-b) <= threshold
}
