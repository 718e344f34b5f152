package hesper

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// TokType is a category type for a Token. Concrete token types are assigned
// by a compiled grammar (see package lr), not hard-coded here.
type TokType int

// TokTypeStringer prints a human-readable name for a TokType, as assigned
// by a particular grammar.
type TokTypeStringer func(TokType) string

// Position is a line/column location within a grammar's input, 1-based on
// both axes (per spec: "line starts at 1, column at 1").
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents an input token, usually produced by a lexer and
// reflecting a terminal of a grammar. Tokens are immutable once emitted.
//
// An example would be a token for a floating point number:
//
//	TokType = Float       // identifier for this kind of token (grammar-specific)
//	Lexeme  = "3.1416"    // lexeme as it appeared in the input stream
//	Value   = 3.1416      // converted value, usually filled in by a tree transform
//	Span    = 67…73       // byte offsets within the input
//	Start   = 3:12        // line:column of the first rune
//	End     = 3:18        // line:column just behind the last rune
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
	Start() Position
	End() Position
}

// TokenRetriever fetches the token recorded at a given input position.
// Factored out into a type since not every parser engine keeps a full
// token history (e.g. the LALR driver normally doesn't need to).
type TokenRetriever func(uint64) Token

// --- Spans ------------------------------------------------------------

// Span captures an extent within the input stream, as (x…y): from position
// x up to, but not including, position y. Every terminal and non-terminal in
// a parse tree/forest carries a Span.
type Span [2]uint64 // (x…y)

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y).
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

// IsNull returns true for the zero-value span.
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend grows s so that it covers other as well.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
