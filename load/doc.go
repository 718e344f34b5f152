/*
Package load resolves a parsed grammar.File (component C3): it expands
%import statements against an external Loader, applies %declare,
%override and %extend, and promotes anonymous string literals to
terminals. The result is a *Resolved grammar, ready for package compile
to lower into a flat lr.Grammar.

Grounded in the teacher's pattern of factoring "things that touch the
outside world" behind a small interface (compare lr/scanner.Tokenizer,
which the concrete lexmachine scanner implements): here, Loader is the
seam between this package and whatever supplies grammar source for an
%import path — file discovery from disk is explicitly out of scope
(spec.md §1), so the caller supplies an implementation.
*/
package load

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'hesper.load'.
func tracer() tracing.Trace {
	return tracing.Select("hesper.load")
}
