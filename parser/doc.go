/*
Package parser is the public entry point for hesper: it ties package
grammar (parsing EBNF+ source), package load (import/declare resolution),
package compile (lowering to a flat lr.Grammar), package lex (terminal
scanning) and one of the two parser engines — package lalr or package
lr/earley — together behind a single Parser type, configured with
functional options the way the teacher configures lr/scanner.Scanner and
lr/earley.Parser.

It cannot live in the root hesper package, since every package it wires
together already imports hesper for Token/Span/TokType — importing them
back from there would cycle.
*/
package parser

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'hesper.parser'.
func tracer() tracing.Trace {
	return tracing.Select("hesper.parser")
}
