package codec

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestReadCall(t *testing.T) {
	name, rest, err := ReadFunction("move(1.50, -2.25)")
	if err != nil || name != "move" {
		t.Fatalf(`ReadFunction = %q, %v`, name, err)
	}
	args, rest, err := ReadTuple(rest)
	if err != nil || args != "1.50, -2.25" || rest != "" {
		t.Fatalf(`ReadTuple = %q, %q, %v`, args, rest, err)
	}

	x, rest, err := ReadFloat(args)
	if err != nil || x != 1.5 {
		t.Fatalf(`first ReadFloat = %v, %v`, x, err)
	}

	y, rest, err := ReadFloat(rest)
	if err != nil || y != -2.25 {
		t.Fatalf(`second ReadFloat = %v, %v`, y, err)
	}
	if err := End(rest); err != nil {
		t.Fatalf(`End(%q) = %v`, rest, err)
	}
}

func TestReadIDAndRest(t *testing.T) {
	id := uuid.New()
	input := "command(" + id.String() + ", look(1.00, 2.00))"

	_, rest, err := ReadFunction(input)
	if err != nil {
		t.Fatal(err)
	}
	args, rest, err := ReadTuple(rest)
	if err != nil || rest != "" {
		t.Fatalf(`ReadTuple = %q, %q, %v`, args, rest, err)
	}
	got, rest, err := ReadID(args)
	if err != nil || got != id {
		t.Fatalf(`ReadID = %v, %v`, got, err)
	}
	nested, rest, err := ReadRest(rest)
	if err != nil || nested != "look(1.00, 2.00)" || rest != "" {
		t.Fatalf(`ReadRest = %q, %q, %v`, nested, rest, err)
	}
}

func TestReadTupleMatchesNestedParens(t *testing.T) {
	args, rest, err := ReadTuple("(a, b(c, d)) tail")
	if err != nil || args != "a, b(c, d)" || rest != " tail" {
		t.Fatalf(`ReadTuple = %q, %q, %v`, args, rest, err)
	}
	for _, input := range []string{"(a, b(c, d)", "(1.00", "1.00)"} {
		if _, _, err := ReadTuple(input); err == nil {
			t.Fatalf(`ReadTuple(%q) accepted an unclosed tuple`, input)
		}
	}
}

func TestArgumentsNeedSeparators(t *testing.T) {
	if _, _, err := ReadFloat("1.00 2.00"); err == nil {
		t.Fatalf(`missing comma accepted`)
	}
	if _, _, err := ReadInt("1,"); err == nil {
		t.Fatalf(`trailing comma accepted`)
	}
	if _, rest, err := ReadInt("1 ,  2"); err != nil || rest != "2" {
		t.Fatalf(`ReadInt = %q, %v`, rest, err)
	}
}

func TestReadErrorsCarryTokenType(t *testing.T) {
	for _, c := range []struct {
		name string
		read func() error
		want TokenType
	}{
		{"function", func() error { _, _, err := ReadFunction("(1)"); return err }, Function},
		{"tuple", func() error { _, _, err := ReadTuple("1)"); return err }, Tuple},
		{"unclosed tuple", func() error { _, _, err := ReadTuple("(1, 2"); return err }, Tuple},
		{"separator", func() error { _, _, err := ReadFloat("1.00 2.00"); return err }, Other},
		{"float", func() error { _, _, err := ReadFloat("abc"); return err }, Float},
		{"int", func() error { _, _, err := ReadInt("-"); return err }, Int},
		{"id", func() error { _, _, err := ReadID("not-an-id"); return err }, ID},
		{"symbol", func() error { _, _, err := ReadSymbol("(x"); return err }, Symbol},
		{"rest", func() error { _, _, err := ReadRest("  "); return err }, Rest},
		{"end", func() error { return End("garbage") }, Other},
	} {
		err := c.read()
		var syntax *SyntaxError
		if !errors.As(err, &syntax) {
			t.Fatalf(`%s: error %v is not a SyntaxError`, c.name, err)
		}
		if syntax.Expected != c.want {
			t.Fatalf(`%s: expected token %s, want %s`, c.name, syntax.Expected, c.want)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Call("move", FormatFloat(1), FormatFloat(2.345)); got != "move(1.00, 2.35)" && got != "move(1.00, 2.34)" {
		t.Fatalf(`Call = %q`, got)
	}
	if got := Call("idle"); got != "idle" {
		t.Fatalf(`bare Call = %q`, got)
	}
	if got := FormatInt(3); got != "3" {
		t.Fatalf(`FormatInt = %q`, got)
	}
}
