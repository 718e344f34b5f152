package lr

import (
	"fmt"

	"github.com/hesperix/hesper"
)

// GrammarBuilder assembles a Grammar rule by rule with a small fluent API,
// grounded on the usage shown in the teacher's lr/doc.go:
//
//	b := lr.NewGrammarBuilder("example")
//	b.LHS("S").N("A").T("b", tokB).End()
//	b.LHS("A").N("A").T("a", tokA).End()
//	b.LHS("A").Epsilon()
//	g, err := b.Grammar()
//
// Package compile drives this API while lowering a resolved grammar AST
// (component C4); package load has already resolved %import/%declare by
// the time compile runs, so the builder itself does no name resolution
// beyond interning.
type GrammarBuilder struct {
	name    string
	symtab  *SymbolTable
	grammar *Grammar
	errs    []error
}

// NewGrammarBuilder creates a builder for a grammar named name.
func NewGrammarBuilder(name string) *GrammarBuilder {
	symtab := NewSymbolTable(name)
	return &GrammarBuilder{
		name:    name,
		symtab:  symtab,
		grammar: NewGrammar(name, symtab),
	}
}

// SymbolTable exposes the builder's symbol table, so a caller can
// pre-declare terminals (e.g. from a %declare directive) before rules
// referencing them are added.
func (b *GrammarBuilder) SymbolTable() *SymbolTable {
	return b.symtab
}

// LHS starts a new rule with the given non-terminal as its left-hand side.
func (b *GrammarBuilder) LHS(name string) *RuleBuilder {
	lhs := b.symtab.DeclareNonTerminal(name)
	if b.grammar.Start() == nil {
		b.grammar.SetStart(lhs)
	}
	return &RuleBuilder{b: b, lhs: lhs}
}

// SetStart explicitly sets the grammar's start symbol, overriding the
// default of "first LHS seen" (package compile calls it with
// Options.Start, or with the first rule's name when that is empty).
func (b *GrammarBuilder) SetStart(name string) {
	b.grammar.SetStart(b.symtab.DeclareNonTerminal(name))
}

func (b *GrammarBuilder) fail(format string, a ...interface{}) {
	b.errs = append(b.errs, fmt.Errorf(format, a...))
}

// Grammar finalizes and returns the built grammar. Returns a *GrammarError
// (from the root hesper package, wrapped) if any rule-construction error
// was recorded.
//
// The grammar is augmented with a pseudo start rule S' → start, always
// occupying rule 0, unless the caller already declared "S'" explicitly.
// Both the LR table builder and the Earley parser rely on Rule(0) being
// this augmenting rule.
func (b *GrammarBuilder) Grammar() (*Grammar, error) {
	if len(b.errs) > 0 {
		return nil, &hesper.GrammarError{Msg: b.errs[0].Error()}
	}
	start := b.grammar.Start()
	if start == nil {
		return nil, &hesper.GrammarError{Msg: fmt.Sprintf("lr: grammar %q has no rules", b.name)}
	}
	if start.Name != "S'" {
		aug := b.symtab.DeclareNonTerminal("S'")
		augRule := NewRule(aug, start)
		b.grammar.rules = append([]*Rule{augRule}, b.grammar.rules...)
		for i, r := range b.grammar.rules {
			r.Serial = i
		}
		b.grammar.start = aug
	}
	return b.grammar, nil
}

// RuleBuilder accumulates the RHS symbols of a single rule under
// construction.
type RuleBuilder struct {
	b           *GrammarBuilder
	lhs         *Symbol
	rhs         []*Symbol
	pendingPrio int
}

// N appends a non-terminal reference to the rule's RHS.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.symtab.DeclareNonTerminal(name))
	return rb
}

// T appends a terminal reference to the rule's RHS, declaring it with
// token value tokval if not already known. A later declaration with a
// different tokval is a builder error, surfaced from Grammar().
func (rb *RuleBuilder) T(name string, tokval int) *RuleBuilder {
	sym := rb.b.symtab.Lookup(name)
	if sym == nil {
		sym = &Symbol{Name: name, Value: tokval, terminal: true}
		rb.b.symtab.intern(sym)
	} else if sym.IsTerminal() && sym.Value != tokval {
		rb.b.fail("lr: terminal %q redeclared with conflicting token value %d (was %d)",
			name, tokval, sym.Value)
	} else if !sym.IsTerminal() {
		rb.b.fail("lr: %q already declared as a non-terminal", name)
	}
	rb.rhs = append(rb.rhs, sym)
	return rb
}

// Prio sets the rule's priority, used to break shift/reduce ties in the
// LALR table builder (higher wins; default 0).
func (rb *RuleBuilder) Prio(p int) *RuleBuilder {
	rb.pendingPrio = p
	return rb
}

// End finalizes the rule and adds it to the grammar.
func (rb *RuleBuilder) End() *Rule {
	r := NewRule(rb.lhs, rb.rhs...)
	r.Prio = rb.pendingPrio
	return rb.b.grammar.AddRule(r)
}

// Epsilon finalizes an empty production for the rule's LHS.
func (rb *RuleBuilder) Epsilon() *Rule {
	r := NewRule(rb.lhs)
	return rb.b.grammar.AddRule(r)
}
