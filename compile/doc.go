/*
Package compile lowers a resolved grammar (package load, component C3)
into a flat lr.Grammar plus the terminal table package lex needs to build
a lexer (component C4). Every EBNF+ sugar — repetition (*, +, ?, ~n..m),
parenthesized groups, and multi-alternative rules — is desugared into
plain productions before reaching package lr, which only ever sees a
context-free grammar in Chomsky-ish flat form.

Grounded in the teacher's lr.GrammarBuilder fluent API (lr/builder.go):
compile drives LHS/N/T/End the same way lr/doc.go's own example does
(an empty production is an LHS followed directly by End), generating
synthetic non-terminal names for sugar the builder itself knows nothing
about.
*/
package compile

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'hesper.compile'.
func tracer() tracing.Trace {
	return tracing.Select("hesper.compile")
}
