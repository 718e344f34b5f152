/*
Package lex implements the terminal/token layer for hesper (components
C5 and C8 of the design): compiling a grammar's terminal definitions into
a runnable lexer, and scanning an input string into a token stream for
the LALR(1) and Earley parser drivers.

Two lexer modes are implemented:

  - basic: one fixed, priority-ordered set of terminal patterns, active
    for the whole input (the default).
  - contextual: for LALR parses only (package lalr, Options.Contextual),
    the driver narrows each NextToken call to the terminals
    TableGenerator.ExpectedTerminals reports legal in the current
    state, compiling and caching one lexmachine sub-lexer per distinct
    legal-terminal set it is asked for. This resolves lexical
    collisions that depend on syntactic context (e.g. a keyword that is
    also a valid identifier) without needing the whole-input pattern
    set to stay unambiguous on its own.

Earley's per-chart-column dynamic lexer (spec.md §4.4's "dynamic" mode,
which would fork the scan at each input position across every terminal
the chart predicts there, rather than narrowing to one parser state) is
not implemented: package earley always scans with a Basic-mode Lexer.
See DESIGN.md's Open Question on the dynamic lexer for the gap and why
it's a materially larger change than the contextual lexer above.

Longest-match wins; ties are broken by declared priority, then by
specificity (a literal string terminal beats a regex terminal matching
the same text), then by declaration order — mirroring the teacher's
wrapping of timtadh/lexmachine in lr/scanner/lexmach.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Hesper Authors
*/
package lex

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return gtrace.SyntaxTracer
}
