/*
Package lalr implements component C6, a deterministic shift-reduce LALR(1)
parser driver running over the tables package lr builds. It consumes a
lex.Tokenizer and produces a tree.Tree (or, with keep_all_tokens and a
single-token production, a bare *tree.Token) directly — no SPPF is
needed, since an LALR(1) derivation is never ambiguous by construction.

Grounded in the teacher's former lr/slr package (a bare SLR(1) stack
machine, since deleted in favor of this LALR(1)/Earley pair — see
DESIGN.md): the stack-of-(state,node) shape and the shift/reduce/accept
dispatch loop follow that shape directly, extended for true LALR(1)
lookaheads, on_error resume, and building a tree.Tree rather than a bare
parse count.

With Options.Contextual set, every lookahead fetch narrows tok's
candidate terminals to exactly those TableGenerator.ExpectedTerminals
reports legal in the current state (spec.md §4.4's contextual lexer,
component C8) rather than always requesting lex.AnyToken.
*/
package lalr

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'hesper.lalr'.
func tracer() tracing.Trace {
	return tracing.Select("hesper.lalr")
}
