/*
Package lr implements the grammar data model (component C3 of the design),
FIRST/FOLLOW analysis and LALR(1) table construction (component C6) for
hesper. It is the static, build-once half of the parsing pipeline; the
runtime drivers live in packages lalr and earley, which consume the types
defined here.

Grounded in the teacher's lr/tables.go (closure/goto-set construction, CFSM
and table generation) and lr/doc.go (the GrammarBuilder usage pattern),
generalized from the teacher's example grammar to the output of the
grammar/load/compile pipeline.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Hesper Authors
*/
package lr

import (
	"fmt"

	"github.com/hesperix/hesper"
)

// Symbol is either a terminal or a non-terminal of a grammar. Every symbol
// carries an integer Value, used as the column index into ACTION/GOTO
// tables; the numbering is assigned by GrammarBuilder and is shared between
// terminals and non-terminals (a GOTO transition may be labeled with
// either kind of symbol).
type Symbol struct {
	Name     string
	Value    int  // unique ID within the grammar, doubles as table column
	terminal bool
}

// NewTerminal creates a terminal symbol with a given token value. name is
// used for diagnostics only; value must be unique within the grammar and is
// typically the scanner's token type.
func NewTerminal(name string, value int) *Symbol {
	return &Symbol{Name: name, Value: value, terminal: true}
}

// NewNonTerminal creates a non-terminal symbol. value must be unique within
// the grammar (including terminal values).
func NewNonTerminal(name string, value int) *Symbol {
	return &Symbol{Name: name, Value: value, terminal: false}
}

// IsTerminal returns true if sym is a terminal symbol.
func (sym *Symbol) IsTerminal() bool {
	return sym != nil && sym.terminal
}

// IsEps returns true if sym denotes the empty-string pseudo-symbol.
func (sym *Symbol) IsEps() bool {
	return sym == epsilonSymbol
}

// TokenType returns the symbol's value as a scanner token type. Only
// meaningful for terminals.
func (sym *Symbol) TokenType() hesper.TokType {
	return hesper.TokType(sym.Value)
}

func (sym *Symbol) String() string {
	if sym == nil {
		return "<nil symbol>"
	}
	if sym.terminal {
		return fmt.Sprintf("T(%s)", sym.Name)
	}
	return fmt.Sprintf("N(%s)", sym.Name)
}

// epsilonSymbol is the shared sentinel for the empty-string production,
// matched by pointer identity.
var epsilonSymbol = &Symbol{Name: "ε", Value: -1}

// Epsilon returns the grammar-wide epsilon pseudo-symbol.
func Epsilon() *Symbol {
	return epsilonSymbol
}

// pseudoEOF is the end-of-input terminal, always present in a grammar's
// symbol table with token value 0.
var pseudoEOF = &Symbol{Name: "$", Value: 0, terminal: true}

// EOFSymbol returns the shared end-of-input terminal.
func EOFSymbol() *Symbol {
	return pseudoEOF
}
