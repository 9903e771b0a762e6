package script

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/angelini/generals/unit"
)

//go:embed lua/*.lua
var embedded embed.FS

// Behavior is a compiled script for one (role, event) pair. The compiled
// proto is immutable and may be instantiated by any worker's own state.
type Behavior struct {
	Key    unit.BehaviorKey
	Source string
	proto  *lua.FunctionProto
}

func Compile(key unit.BehaviorKey, source string) (*Behavior, error) {
	name := key.String()
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return &Behavior{Key: key, Source: source, proto: proto}, nil
}

// Library is the fixed role x event table of bound behaviors. It is filled
// before any worker starts and read-only afterwards.
type Library struct {
	behaviors [unit.RoleCount][unit.EventKindCount]*Behavior
}

func NewLibrary() *Library {
	return &Library{}
}

func (l *Library) Bind(key unit.BehaviorKey, source string) error {
	if !key.Role.Valid() || !key.Kind.Valid() {
		return fmt.Errorf("invalid behavior key %v", key)
	}
	b, err := Compile(key, source)
	if err != nil {
		return err
	}
	l.behaviors[key.Role][key.Kind] = b
	return nil
}

func (l *Library) Lookup(key unit.BehaviorKey) (*Behavior, bool) {
	if l == nil || !key.Role.Valid() || !key.Kind.Valid() {
		return nil, false
	}
	b := l.behaviors[key.Role][key.Kind]
	return b, b != nil
}

func (l *Library) Has(key unit.BehaviorKey) bool {
	_, ok := l.Lookup(key)
	return ok
}

func (l *Library) Len() int {
	n := 0
	for r := range l.behaviors {
		for k := range l.behaviors[r] {
			if l.behaviors[r][k] != nil {
				n++
			}
		}
	}
	return n
}

// Load binds every `{role}_on_{event}.lua` found in fsys. Files that are
// absent leave the current binding untouched.
func (l *Library) Load(fsys fs.FS) error {
	for r := unit.Role(0); r < unit.RoleCount; r++ {
		for k := unit.EventKind(0); k < unit.EventKindCount; k++ {
			key := unit.BehaviorKey{Role: r, Kind: k}
			source, err := fs.ReadFile(fsys, key.String()+".lua")
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return err
			}
			if err := l.Bind(key, string(source)); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadLibrary binds the built-in behaviors, then overrides them with any
// found in dir. An empty dir means built-ins only.
func LoadLibrary(dir string) (*Library, error) {
	l := NewLibrary()
	builtins, err := fs.Sub(embedded, "lua")
	if err != nil {
		return nil, err
	}
	if err := l.Load(builtins); err != nil {
		return nil, fmt.Errorf("built-in behaviors: %w", err)
	}
	if dir == "" {
		return l, nil
	}
	if err := l.Load(os.DirFS(dir)); err != nil {
		return nil, fmt.Errorf("behaviors in %s: %w", dir, err)
	}
	return l, nil
}
