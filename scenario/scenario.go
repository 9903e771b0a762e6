// Package scenario loads the opening roster and the scripted timeline of a
// battle from YAML.
package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/angelini/generals/unit"
	"github.com/angelini/generals/world"
)

type UnitSpec struct {
	ID       string   `yaml:"id"`
	Role     string   `yaml:"role"`
	Team     int      `yaml:"team"`
	X        float64  `yaml:"x"`
	Y        float64  `yaml:"y"`
	Rotation float64  `yaml:"rotation"`
	Speed    float64  `yaml:"speed"`
	State    string   `yaml:"state"`
	Then     []string `yaml:"then"`
}

type EntrySpec struct {
	At    float64 `yaml:"at"`
	Delta string  `yaml:"delta"`
}

type document struct {
	Units    []UnitSpec  `yaml:"units"`
	Timeline []EntrySpec `yaml:"timeline"`
}

// Scenario is a decoded battle setup. Every state and delta text has
// already been parsed.
type Scenario struct {
	Units    []*unit.Unit
	Timeline Timeline
}

//go:embed default.yaml
var defaultScenario []byte

// Default is the built-in skirmish used when no scenario file is configured.
func Default() (*Scenario, error) {
	return Parse(defaultScenario)
}

func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(raw []byte) (*Scenario, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	s := &Scenario{}
	seen := make(map[unit.ID]bool, len(doc.Units))
	for i, spec := range doc.Units {
		u, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("units[%d]: %w", i, err)
		}
		if seen[u.ID] {
			return nil, fmt.Errorf("units[%d]: duplicate id %s", i, u.ID)
		}
		seen[u.ID] = true
		s.Units = append(s.Units, u)
	}

	for i, spec := range doc.Timeline {
		d, err := unit.DecodeDelta(spec.Delta)
		if err != nil {
			return nil, fmt.Errorf("timeline[%d]: %w", i, err)
		}
		s.Timeline = append(s.Timeline, Entry{
			At:    time.Duration(spec.At * float64(time.Second)),
			Delta: d,
		})
	}
	sort.SliceStable(s.Timeline, func(i, j int) bool {
		return s.Timeline[i].At < s.Timeline[j].At
	})
	return s, nil
}

func (spec UnitSpec) build() (*unit.Unit, error) {
	role, err := unit.ParseRole(spec.Role)
	if err != nil {
		return nil, err
	}
	id := unit.NewID()
	if spec.ID != "" {
		if id, err = uuid.Parse(spec.ID); err != nil {
			return nil, err
		}
	}

	u := unit.New(role, id, spec.X, spec.Y, spec.Rotation, spec.Team)
	if spec.Speed > 0 {
		u.Speed = spec.Speed
	}
	if spec.State != "" {
		if u.State, err = unit.DecodeState(spec.State); err != nil {
			return nil, fmt.Errorf("state: %w", err)
		}
	}
	then := make([]unit.State, 0, len(spec.Then))
	for i, text := range spec.Then {
		state, err := unit.DecodeState(text)
		if err != nil {
			return nil, fmt.Errorf("then[%d]: %w", i, err)
		}
		then = append(then, state)
	}
	u.Queue(then...)
	return u, nil
}

// Populate adds every unit to w.
func (s *Scenario) Populate(w *world.World) error {
	for _, u := range s.Units {
		if err := w.AddUnit(u); err != nil {
			return err
		}
	}
	return nil
}
