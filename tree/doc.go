/*
Package tree implements component C9, the parse-tree model both parser
drivers (package lalr and package earley, via package lr/sppf's
disambiguated forest) build into: a Tree of named nodes and retained
Tokens, with the shaping rules a grammar author attaches to a rule —
alias renaming, inline-if-single-child collapsing, and filter-out
splicing — applied as each production reduces.

Grounded in the teacher's terex.GCons/Element pair (terex/gcons.go,
terex/elem.go): an untyped node holding either an atom or a list of
further nodes, walked generically by name rather than by concrete Go
type. Pretty-printing follows terex/terexlang/trepl/repl.go's use of
pterm.DefaultTree for rendering S-expressions as indented trees.
*/
package tree

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'hesper.tree'.
func tracer() tracing.Trace {
	return tracing.Select("hesper.tree")
}
