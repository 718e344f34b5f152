package lr

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/hesperix/hesper/lr/iteratable"
)

// Grammar is a flat, compiled context-free grammar: a list of Rules over an
// interned set of Symbols, with a distinguished start symbol. It is the
// output of package compile and the input to both parser engines, package
// lalr and package earley.
type Grammar struct {
	Name     string
	symtab   *SymbolTable
	rules    []*Rule
	start    *Symbol
	EpsRules map[*Symbol]bool // non-terminals with a direct epsilon rule
}

// NewGrammar creates an empty grammar named name, backed by symtab.
func NewGrammar(name string, symtab *SymbolTable) *Grammar {
	return &Grammar{
		Name:     name,
		symtab:   symtab,
		EpsRules: make(map[*Symbol]bool),
	}
}

// SymbolTable returns the grammar's symbol table.
func (g *Grammar) SymbolTable() *SymbolTable {
	return g.symtab
}

// Start returns the grammar's start symbol.
func (g *Grammar) Start() *Symbol {
	return g.start
}

// SetStart sets the grammar's start symbol.
func (g *Grammar) SetStart(sym *Symbol) {
	g.start = sym
}

// AddRule appends rule to the grammar, assigning it the next serial number.
func (g *Grammar) AddRule(rule *Rule) *Rule {
	rule.Serial = len(g.rules)
	g.rules = append(g.rules, rule)
	if rule.IsEps() {
		g.EpsRules[rule.LHS] = true
	}
	return rule
}

// Rule returns the rule at serial position i.
func (g *Grammar) Rule(i int) *Rule {
	if i < 0 || i >= len(g.rules) {
		return nil
	}
	return g.rules[i]
}

// RuleCount returns the number of rules in the grammar.
func (g *Grammar) RuleCount() int {
	return len(g.rules)
}

// Terminal returns the terminal symbol registered for a given scanner
// token value, or nil. Used by the Earley parser (component C7) to map a
// scanned token back to its grammar symbol.
func (g *Grammar) Terminal(tokval int) *Symbol {
	var found *Symbol
	g.symtab.Each(func(sym *Symbol) {
		if found == nil && sym.IsTerminal() && sym.Value == tokval {
			found = sym
		}
	})
	return found
}

// SymbolByName looks up a symbol interned in the grammar's symbol table by
// name, returning nil if no such symbol exists.
func (g *Grammar) SymbolByName(name string) *Symbol {
	return g.symtab.Lookup(name)
}

// Dump writes a human-readable listing of the grammar's rules to the trace
// log, useful while debugging grammar construction.
func (g *Grammar) Dump() {
	tracer().Infof("Grammar %s, start=%v", g.Name, g.start)
	for _, r := range g.rules {
		tracer().Infof("  [%d] %s", r.Serial, r.String())
	}
}

// EachSymbol calls f once for every interned symbol of the grammar.
func (g *Grammar) EachSymbol(f func(*Symbol)) {
	g.symtab.Each(f)
}

// EachNonTerminal calls f once for every non-terminal symbol of the
// grammar.
func (g *Grammar) EachNonTerminal(f func(*Symbol)) {
	g.symtab.Each(func(sym *Symbol) {
		if !sym.IsTerminal() {
			f(sym)
		}
	})
}

// FindNonTermRules returns the set of rules with A as their LHS. If
// asClosureStartItems is true the rules are wrapped as start Items (dot at
// position 0), ready to be added to an LR item-set closure or an Earley
// chart prediction; otherwise the bare *Rule values are returned.
func (g *Grammar) FindNonTermRules(A *Symbol, asClosureStartItems bool) *iteratable.Set {
	set := iteratable.NewSet(4)
	for _, r := range g.rules {
		if r.LHS == A {
			if asClosureStartItems {
				it, _ := StartItem(r)
				set.Add(it)
			} else {
				set.Add(r)
			}
		}
	}
	return set
}

// matchesRHS finds the rule with the given LHS whose RHS starts with
// prefix, returning the rule and the length of the matched prefix.
func (g *Grammar) matchesRHS(lhs *Symbol, prefix []*Symbol) (*Rule, int) {
	for _, r := range g.rules {
		if r.LHS != lhs || len(r.RHS()) < len(prefix) {
			continue
		}
		match := true
		for i, s := range prefix {
			if r.RHS()[i] != s {
				match = false
				break
			}
		}
		if match {
			return r, len(prefix)
		}
	}
	return nil, 0
}

// terminalSet collects the terminal symbols of the grammar into a sorted
// gods treeset, for deterministic iteration order (grounded on the teacher's use of emirpasic/gods
// treeset/arraylist for CFSM state sets in lr/tables.go).
func (g *Grammar) terminalSet() *treeset.Set {
	set := treeset.NewWith(utils.StringComparator)
	g.symtab.Each(func(sym *Symbol) {
		if sym.IsTerminal() {
			set.Add(sym.Name)
		}
	})
	return set
}
