package lex

import "github.com/hesperix/hesper"

// Sentinel token values recognized by the parser drivers (packages lalr
// and earley), mirroring the teacher's lr/scanner.Tokenizer contract.
const (
	EOF = 0 // end-of-input token type
)

// AnyToken is the legal-terminal set meaning "request the next token
// regardless of type": a nil slice is never a valid narrowed set (an
// empty parser state has no legal terminals at all, not nil), so nil is
// free to serve as the sentinel for "don't narrow". The basic lexer
// never inspects legal; only a Lexer built WithMode(Contextual) does.
var AnyToken []hesper.TokType

// Tokenizer is implemented by a Lexer (and by any hand-written scanner a
// caller supplies instead). Parser drivers pull tokens one at a time via
// NextToken, and register a callback for lexical errors via
// SetErrorHandler. legal, when non-nil, is the set of terminal types
// that are syntactically possible at the current point (spec.md §4.4's
// contextual lexer); a basic-mode Lexer ignores it.
type Tokenizer interface {
	NextToken(legal []hesper.TokType) hesper.Token
	SetErrorHandler(func(error))
}

// token is the concrete hesper.Token implementation produced by a Lexer.
type token struct {
	typ    hesper.TokType
	lexeme string
	value  interface{}
	span   hesper.Span
	start  hesper.Position
	end    hesper.Position
}

func (t *token) TokType() hesper.TokType { return t.typ }
func (t *token) Lexeme() string          { return t.lexeme }
func (t *token) Value() interface{}      { return t.value }
func (t *token) Span() hesper.Span       { return t.span }
func (t *token) Start() hesper.Position  { return t.start }
func (t *token) End() hesper.Position    { return t.end }

// eofToken is returned once scanning reaches the end of input.
func eofToken(at hesper.Position, offset uint64) hesper.Token {
	return &token{
		typ:    EOF,
		lexeme: "",
		span:   hesper.Span{offset, offset},
		start:  at,
		end:    at,
	}
}
