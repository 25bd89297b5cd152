// Released under an MIT license. See LICENSE.

package lexer

import (
	"testing"

	"github.com/michaelmacinnis/mu/internal/reader/token"
)

type expected struct {
	class token.Class
	value string
}

type harness struct {
	lexer *T
	t     *testing.T
}

func setup(t *testing.T, label string) *harness {
	return &harness{lexer: New(label), t: t}
}

func (h *harness) expect(tokens ...expected) {
	h.t.Helper()

	for _, e := range tokens {
		a := h.lexer.Token()

		switch {
		case a == nil:
			h.t.Fatalf("Expected %v %q but there are no tokens", e.class, e.value)
		case !a.Is(e.class) || a.Value() != e.value:
			h.t.Fatalf("Expected %v %q; got %v", e.class, e.value, a)
		}
	}

	if a := h.lexer.Token(); a != nil {
		h.t.Fatalf("Expected no tokens; got %v", a)
	}
}

func (h *harness) scan(s string, tokens ...expected) {
	h.t.Helper()

	h.lexer.Scan(s)
	h.expect(tokens...)
}

func literal(s string) expected {
	return expected{token.Class(s[0]), s}
}

func other(c token.Class, s string) expected {
	return expected{c, s}
}

func symbol(s string) expected {
	return expected{token.Symbol, s}
}

func TestList(t *testing.T) {
	h := setup(t, "List")

	h.scan("(add 1 2)\n",
		literal("("),
		symbol("add"),
		symbol("1"),
		symbol("2"),
		literal(")"),
	)
}

func TestPrefixes(t *testing.T) {
	h := setup(t, "Prefixes")

	h.scan("'a `(b ,c ,@d)\n",
		literal("'"),
		symbol("a"),
		literal("`"),
		literal("("),
		symbol("b"),
		literal(","),
		symbol("c"),
		other(token.CommaAt, ",@"),
		symbol("d"),
		literal(")"),
	)
}

func TestSharpSyntax(t *testing.T) {
	h := setup(t, "SharpSyntax")

	h.scan(`#(:t 1) #s(:point) #*0101 #:loose #xff #\a #\space #\( #q`+"\n",
		other(token.VectorOpen, "#("),
		symbol(":t"),
		symbol("1"),
		literal(")"),
		other(token.StructOpen, "#s("),
		symbol(":point"),
		literal(")"),
		other(token.Bits, "#*0101"),
		other(token.Uninterned, "#:loose"),
		other(token.Hex, "#xff"),
		other(token.Char, `#\a`),
		other(token.Char, `#\space`),
		other(token.Char, `#\(`),
		other(token.Error, "#q"),
	)
}

func TestStrings(t *testing.T) {
	h := setup(t, "Strings")

	h.scan(`"plain" "with \"escapes\"" "(not a list)"`+"\n",
		other(token.DoubleQuoted, `"plain"`),
		other(token.DoubleQuoted, `"with \"escapes\""`),
		other(token.DoubleQuoted, `"(not a list)"`),
	)
}

func TestComments(t *testing.T) {
	h := setup(t, "Comments")

	h.scan("a ; to the end of the line\n#| block\ncomment |# b\n",
		symbol("a"),
		symbol("b"),
	)
}

func TestDelimiters(t *testing.T) {
	h := setup(t, "Delimiters")

	h.scan("(a(b)c'd\"e\")\n",
		literal("("),
		symbol("a"),
		literal("("),
		symbol("b"),
		literal(")"),
		symbol("c"),
		literal("'"),
		symbol("d"),
		other(token.DoubleQuoted, `"e"`),
		literal(")"),
	)
}

func TestEscapedSymbol(t *testing.T) {
	h := setup(t, "EscapedSymbol")

	h.scan(`a\ b`+"\n",
		symbol(`a\ b`),
	)
}

func TestPartialInput(t *testing.T) {
	h := setup(t, "PartialInput")

	h.scan("(defin",
		literal("("),
	)

	h.scan("e \"two",
		symbol("define"),
	)

	h.scan(" lines\")",
		other(token.DoubleQuoted, `"two lines"`),
		literal(")"),
	)
}

func TestRemainder(t *testing.T) {
	l := New("Remainder")

	l.Scan("(a) (b")

	for _, v := range []string{"(", "a", ")"} {
		if tok := l.Token(); tok == nil || tok.Value() != v {
			t.Fatalf("Expected %q; got %v", v, tok)
		}
	}

	if r := l.Remainder(); r != " (b" {
		t.Fatalf("Expected remainder %q; got %q", " (b", r)
	}

	l.Scan("c")

	if r := l.Remainder(); r != " (bc" {
		t.Fatalf("Expected remainder %q; got %q", " (bc", r)
	}
}

func TestLocation(t *testing.T) {
	l := New("Location")

	l.Scan("a\n  (b")

	a := l.Token()
	if s := a.Source(); s.Line != 1 || s.Char != 1 {
		t.Fatalf("Expected 1:1; got %v", a)
	}

	p := l.Token()
	if s := p.Source(); s.Line != 2 || s.Char != 3 {
		t.Fatalf("Expected 2:3; got %v", p)
	}
}
