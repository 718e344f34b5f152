/*
Package transform implements component C10: post-parse tree rewriting,
as a Transformer (bottom-up, name-keyed handler dispatch) and a Visitor
(top-down or bottom-up read-only walk).

Grounded in the teacher's terex/termr package (rewrite.go): that package
matches s-expression patterns against a TeREx list and calls a Rewriter
function on the match. This package keeps the same bottom-up,
call-a-function-per-match shape but dispatches by a tree.Tree's Name
directly instead of a pattern match — the compiled grammar already
guarantees children line up with a known rule shape, so a full pattern
matcher buys nothing a name lookup does not already give for free.
*/
package transform

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'hesper.transform'.
func tracer() tracing.Trace {
	return tracing.Select("hesper.transform")
}
