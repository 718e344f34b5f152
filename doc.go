/*
Package hesper is an EBNF+ grammar compiler and parser-runtime toolbox.

Hesper turns a user-written context-free grammar, expressed in an extended
BNF dialect with repetition, optional and alternation sugar, into a runtime
parser producing a concrete parse tree. Package structure is as follows:

■ grammar: parses the EBNF+ meta-grammar into an AST.

■ load: resolves %import/%declare/%override/%extend directives against an
external grammar-source loader, producing a fully resolved AST.

■ compile: lowers the resolved AST into a flat lr.Grammar (terminals and
rules over bare symbol references).

■ lex: compiles terminals into a longest-match lexer (basic and contextual
variants).

■ lr: grammar data model, FIRST/FOLLOW analysis and LALR(1) table
construction.

■ earley: an Earley chart parser over the same lowered grammar, for the full
class of context-free grammars including ambiguous ones.

■ sppf: the shared packed parse forest the Earley parser builds ambiguous
derivations into, plus disambiguation to one or more trees.

■ lalr: a deterministic LALR(1) shift-reduce driver over a compiled grammar,
producing a tree directly since its derivations are unambiguous.

■ tree: the parse-tree/token data model shared by both parser engines.

■ transform: bottom-up Transformer and top-down Visitor dispatch over
parse trees.

■ parser: the public Parser facade, wiring grammar/load/compile/lex to
whichever engine (lalr or earley) a caller selects.

The base package contains data types used throughout all the other
packages: Token, TokType and Span.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Hesper Authors
*/
package hesper
