// Package codec reads and writes the small call-like text grammar used to
// hand unit states and deltas across the script boundary:
//
//	ident '(' arg {', ' arg} ')'
//
// Every reader takes the remaining input and returns the value it consumed
// together with whatever input follows, so decoders are written as a chain of
// reads: ReadFunction, then ReadTuple, then one reader per argument. Floats
// are written with two decimals.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type TokenType int

const (
	Float TokenType = iota
	Function
	ID
	Int
	Other
	Rest
	Symbol
	Tuple
)

func (t TokenType) String() string {
	switch t {
	case Float:
		return "float"
	case Function:
		return "function"
	case ID:
		return "id"
	case Int:
		return "int"
	case Rest:
		return "rest"
	case Symbol:
		return "symbol"
	case Tuple:
		return "tuple"
	}
	return "other"
}

// SyntaxError reports the input a reader could not consume and what it
// expected to find there.
type SyntaxError struct {
	Input    string
	Expected TokenType
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expected %s at %q", e.Expected, e.Input)
}

func fail(s string, t TokenType) error {
	return &SyntaxError{Input: s, Expected: t}
}

const idLength = 36

// ReadFunction reads the name of a call. The rest starts at its argument
// tuple.
func ReadFunction(s string) (string, string, error) {
	n := identLength(s, false)
	if n == 0 || n >= len(s) || s[n] != '(' {
		return "", s, fail(s, Function)
	}
	return s[:n], s[n:], nil
}

// ReadTuple reads a parenthesised argument list up to its matching closing
// paren. It returns the arguments and whatever follows the tuple.
func ReadTuple(s string) (string, string, error) {
	if !strings.HasPrefix(s, "(") {
		return "", s, fail(s, Tuple)
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[1:i]), s[i+1:], nil
			}
		}
	}
	return "", s, fail(s, Tuple)
}

func ReadSymbol(s string) (string, string, error) {
	n := identLength(s, true)
	if n == 0 {
		return "", s, fail(s, Symbol)
	}
	rest, err := separator(s[n:])
	return s[:n], rest, err
}

func ReadID(s string) (uuid.UUID, string, error) {
	if len(s) < idLength {
		return uuid.Nil, s, fail(s, ID)
	}
	id, err := uuid.Parse(s[:idLength])
	if err != nil {
		return uuid.Nil, s, fail(s, ID)
	}
	rest, err := separator(s[idLength:])
	return id, rest, err
}

func ReadFloat(s string) (float64, string, error) {
	n := numberLength(s, true)
	if n == 0 {
		return 0, s, fail(s, Float)
	}
	f, err := strconv.ParseFloat(s[:n], 64)
	if err != nil {
		return 0, s, fail(s, Float)
	}
	rest, err := separator(s[n:])
	return f, rest, err
}

func ReadInt(s string) (int, string, error) {
	n := numberLength(s, false)
	if n == 0 {
		return 0, s, fail(s, Int)
	}
	i, err := strconv.Atoi(s[:n])
	if err != nil {
		return 0, s, fail(s, Int)
	}
	rest, err := separator(s[n:])
	return i, rest, err
}

// ReadRest takes the remaining arguments of a tuple as one value. It is how
// a nested call in last position is read.
func ReadRest(s string) (string, string, error) {
	rest := strings.TrimSpace(s)
	if rest == "" {
		return "", s, fail(s, Rest)
	}
	return rest, "", nil
}

// End fails unless only whitespace is left.
func End(s string) error {
	if strings.TrimSpace(s) != "" {
		return fail(s, Other)
	}
	return nil
}

// Call formats `name(arg, arg)`. A call without arguments is written as the
// bare name.
func Call(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}

func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func FormatInt(i int) string {
	return strconv.Itoa(i)
}

func FormatID(id uuid.UUID) string {
	return id.String()
}

// separator drops the comma between two arguments. The last argument of a
// tuple is followed by nothing at all.
func separator(s string) (string, error) {
	s = strings.TrimLeft(s, " ")
	if s == "" {
		return "", nil
	}
	if s[0] != ',' {
		return s, fail(s, Other)
	}
	next := strings.TrimLeft(s[1:], " ")
	if next == "" {
		return s, fail(s, Other)
	}
	return next, nil
}

func identLength(s string, dash bool) int {
	n := 0
	for n < len(s) {
		c := s[n]
		ok := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || (dash && c == '-')
		if !ok {
			break
		}
		n++
	}
	return n
}

func numberLength(s string, fraction bool) int {
	n := 0
	if n < len(s) && s[n] == '-' {
		n++
	}
	digits := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
		digits++
	}
	if fraction && n < len(s) && s[n] == '.' {
		n++
		for n < len(s) && s[n] >= '0' && s[n] <= '9' {
			n++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	return n
}
