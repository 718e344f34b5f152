/*
Package grammar parses the EBNF+ grammar meta-language into an abstract
syntax tree (component C2 of the hesper pipeline).

The meta-grammar itself is:

	start    : (_item | _NL)*
	_item    : rule | token | statement
	rule     : RULE (":" | ".") expansions
	token    : TOKEN ":" expansions
	expansions : alias ("|" alias)*
	alias    : expansion ["->" RULE]
	expansion: (expr)*
	expr     : atom ["?" | "*" | "+" | "~" NUMBER [".." NUMBER]]
	atom     : "(" expansions ")"
	         | "[" expansions "]"        // optional
	         | STRING ["i"]
	         | REGEXP
	         | RULE | TOKEN
	statement: "%ignore" TOKEN
	         | "%import" dotted-path ["(" name-list ")"]
	         | "%declare" TOKEN+
	         | "%override" rule-or-token
	         | "%extend"   rule-or-token

Package grammar does not use package lex: the meta-grammar's own lexical
layer (rule/token identifiers, strings, regexes, directives) is a small
lexer built directly on lexmachine (mirroring the teacher's
lr/scanner/lexmach wrapper), and the structural grammar above is recognized by a hand-written
recursive-descent parser, since the parser generator for the user's target
grammar is exactly what this package is bootstrapping.

Tree (1) = Source text; Tree (2) = *grammar.File. Package load consumes
the File AST to resolve %import/%declare/%override/%extend; package
compile lowers the resolved File into a flat lr.Grammar.
*/
package grammar

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'hesper.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("hesper.grammar")
}
