package unit

import (
	"strings"

	"github.com/angelini/generals/codec"
)

// DecodeState parses the text form written by State.String. Float fields
// only survive a round trip to two decimals.
func DecodeState(s string) (State, error) {
	s = strings.TrimSpace(s)
	name, tuple, err := codec.ReadFunction(s)
	if err != nil {
		return decodeBareState(s)
	}
	args, err := readArgs(tuple)
	if err != nil {
		return nil, err
	}

	switch name {
	case "move", "look":
		x, rest, err := codec.ReadFloat(args)
		if err != nil {
			return nil, err
		}
		y, rest, err := codec.ReadFloat(rest)
		if err != nil {
			return nil, err
		}
		if err := codec.End(rest); err != nil {
			return nil, err
		}
		if name == "move" {
			return Move{X: x, Y: y}, nil
		}
		return Look{X: x, Y: y}, nil

	case "shoot":
		id, rest, err := codec.ReadID(args)
		if err != nil {
			return nil, err
		}
		if err := codec.End(rest); err != nil {
			return nil, err
		}
		return Shoot{Target: id}, nil

	case "command":
		id, rest, err := codec.ReadID(args)
		if err != nil {
			return nil, err
		}
		nested, _, err := codec.ReadRest(rest)
		if err != nil {
			return nil, err
		}
		order, err := DecodeState(nested)
		if err != nil {
			return nil, err
		}
		return Command{Target: id, Order: order}, nil
	}
	return nil, &codec.SyntaxError{Input: s, Expected: codec.Function}
}

// readArgs returns the arguments of a call whose tuple must close the input.
func readArgs(s string) (string, error) {
	args, rest, err := codec.ReadTuple(s)
	if err != nil {
		return "", err
	}
	if err := codec.End(rest); err != nil {
		return "", err
	}
	return args, nil
}

func decodeBareState(s string) (State, error) {
	symbol, rest, err := codec.ReadSymbol(s)
	if err != nil {
		return nil, err
	}
	if err := codec.End(rest); err != nil {
		return nil, err
	}
	switch symbol {
	case "idle":
		return Idle{}, nil
	case "dead":
		return Dead{}, nil
	}
	return nil, &codec.SyntaxError{Input: s, Expected: codec.Symbol}
}

func DecodeDelta(s string) (Delta, error) {
	s = strings.TrimSpace(s)
	name, tuple, err := codec.ReadFunction(s)
	if err != nil {
		return nil, err
	}
	args, err := readArgs(tuple)
	if err != nil {
		return nil, err
	}

	switch name {
	case "update_state":
		id, rest, err := codec.ReadID(args)
		if err != nil {
			return nil, err
		}
		nested, _, err := codec.ReadRest(rest)
		if err != nil {
			return nil, err
		}
		state, err := DecodeState(nested)
		if err != nil {
			return nil, err
		}
		return UpdateState{ID: id, State: state}, nil

	case "new_unit":
		roleName, rest, err := codec.ReadSymbol(args)
		if err != nil {
			return nil, err
		}
		role, err := ParseRole(roleName)
		if err != nil {
			return nil, &codec.SyntaxError{Input: args, Expected: codec.Symbol}
		}
		id, rest, err := codec.ReadID(rest)
		if err != nil {
			return nil, err
		}
		var xyr [3]float64
		for i := range xyr {
			if xyr[i], rest, err = codec.ReadFloat(rest); err != nil {
				return nil, err
			}
		}
		team, rest, err := codec.ReadInt(rest)
		if err != nil {
			return nil, err
		}
		if err := codec.End(rest); err != nil {
			return nil, err
		}
		return NewUnit{Role: role, ID: id, X: xyr[0], Y: xyr[1], Rotation: xyr[2], Team: team}, nil
	}
	return nil, &codec.SyntaxError{Input: s, Expected: codec.Function}
}
