package lr

import (
	"github.com/hesperix/hesper/lr/iteratable"
)

// LRAnalysis holds the FIRST/FOLLOW sets and epsilon-derivation facts for a
// Grammar, computed once and reused by both the LALR(1) table builder
// (package lalr) and the Earley chart parser's prediction step (package
// earley). Grounded on the fix-point worklist algorithm in the teacher's
// lr/tables.go (closure/closureSet/gotoSet), generalized from computing
// only item-set closures to also computing FIRST/FOLLOW over the whole
// grammar.
type LRAnalysis struct {
	grammar *Grammar
	first   map[*Symbol]*iteratable.Set
	follow  map[*Symbol]*iteratable.Set
	epsilon map[*Symbol]bool
}

// Analysis computes the LRAnalysis for g. Nothing is cached: every call
// computes the sets anew.
func Analysis(g *Grammar) *LRAnalysis {
	ga := &LRAnalysis{
		grammar: g,
		first:   make(map[*Symbol]*iteratable.Set),
		follow:  make(map[*Symbol]*iteratable.Set),
		epsilon: make(map[*Symbol]bool),
	}
	ga.computeEpsilon()
	ga.computeFirst()
	ga.computeFollow()
	return ga
}

// Grammar returns the analyzed grammar.
func (ga *LRAnalysis) Grammar() *Grammar {
	return ga.grammar
}

// DerivesEpsilon reports whether sym can derive the empty string.
func (ga *LRAnalysis) DerivesEpsilon(sym *Symbol) bool {
	if sym.IsTerminal() {
		return false
	}
	return ga.epsilon[sym]
}

func (ga *LRAnalysis) computeEpsilon() {
	changed := true
	for changed {
		changed = false
		for i := 0; i < ga.grammar.RuleCount(); i++ {
			r := ga.grammar.Rule(i)
			if ga.epsilon[r.LHS] {
				continue
			}
			if r.IsEps() {
				ga.epsilon[r.LHS] = true
				changed = true
				continue
			}
			all := true
			for _, s := range r.RHS() {
				if s.IsTerminal() || !ga.epsilon[s] {
					all = false
					break
				}
			}
			if all {
				ga.epsilon[r.LHS] = true
				changed = true
			}
		}
	}
}

// First returns the FIRST set of sym, as a freshly copied iteratable.Set of
// *Symbol terminals (never containing Epsilon(); check DerivesEpsilon
// separately).
func (ga *LRAnalysis) First(sym *Symbol) *iteratable.Set {
	if sym.IsTerminal() {
		s := iteratable.NewSet(1)
		s.Add(sym)
		return s
	}
	return ga.first[sym].Copy()
}

// firstOfSeq computes FIRST(alpha) for a sequence of symbols, used while
// computing FOLLOW sets and while building LALR lookaheads.
func (ga *LRAnalysis) firstOfSeq(seq []*Symbol) *iteratable.Set {
	result := iteratable.NewSet(4)
	for _, s := range seq {
		if s.IsTerminal() {
			result.Add(s)
			break
		}
		result.Union(ga.first[s])
		if !ga.epsilon[s] {
			break
		}
	}
	return result
}

func (ga *LRAnalysis) computeFirst() {
	ga.grammar.EachNonTerminal(func(nt *Symbol) {
		ga.first[nt] = iteratable.NewSet(4)
	})
	changed := true
	for changed {
		changed = false
		for i := 0; i < ga.grammar.RuleCount(); i++ {
			r := ga.grammar.Rule(i)
			before := ga.first[r.LHS].Size()
			for _, s := range r.RHS() {
				if s.IsTerminal() {
					ga.first[r.LHS].Add(s)
					break
				}
				ga.first[r.LHS].Union(ga.first[s])
				if !ga.epsilon[s] {
					break
				}
			}
			if ga.first[r.LHS].Size() != before {
				changed = true
			}
		}
	}
}

func (ga *LRAnalysis) computeFollow() {
	ga.grammar.EachNonTerminal(func(nt *Symbol) {
		ga.follow[nt] = iteratable.NewSet(4)
	})
	ga.follow[ga.grammar.Start()].Add(EOFSymbol())
	changed := true
	for changed {
		changed = false
		for i := 0; i < ga.grammar.RuleCount(); i++ {
			r := ga.grammar.Rule(i)
			rhs := r.RHS()
			for pos, s := range rhs {
				if s.IsTerminal() {
					continue
				}
				before := ga.follow[s].Size()
				rest := rhs[pos+1:]
				firstRest := ga.firstOfSeq(rest)
				ga.follow[s].Union(firstRest)
				restNullable := true
				for _, t := range rest {
					if t.IsTerminal() || !ga.epsilon[t] {
						restNullable = false
						break
					}
				}
				if restNullable {
					ga.follow[s].Union(ga.follow[r.LHS])
				}
				if ga.follow[s].Size() != before {
					changed = true
				}
			}
		}
	}
}

// Follow returns the FOLLOW set of a non-terminal, as a freshly copied set.
func (ga *LRAnalysis) Follow(sym *Symbol) *iteratable.Set {
	return ga.follow[sym].Copy()
}

// closure computes the LR(0) closure of an initial set of items: for every
// item with the dot before a non-terminal A, add start-items for every
// A-rule. Mirrors the teacher's closure()/closureSet() in lr/tables.go,
// generalized to operate on the from-scratch Item/Grammar types here.
func (ga *LRAnalysis) closure(items *iteratable.Set) *iteratable.Set {
	items.IterateOnce()
	for items.Next() {
		it := items.Item().(Item)
		sym := it.PeekSymbol()
		if sym == nil || sym.IsTerminal() {
			continue
		}
		starts := ga.grammar.FindNonTermRules(sym, true)
		starts.Each(func(el interface{}) {
			items.Add(el)
		})
	}
	return items
}

// Closure is the exported entry point for closure(), used by the LALR(1)
// table builder (package lalr) when constructing the canonical CFSM.
func (ga *LRAnalysis) Closure(items *iteratable.Set) *iteratable.Set {
	return ga.closure(items)
}

// GotoSet computes the item set reached from items by shifting over sym,
// closed under Closure. Mirrors the teacher's gotoSet() in lr/tables.go.
func (ga *LRAnalysis) GotoSet(items *iteratable.Set, sym *Symbol) *iteratable.Set {
	moved := iteratable.NewSet(4)
	items.Each(func(el interface{}) {
		it := el.(Item)
		if it.PeekSymbol() == sym {
			moved.Add(it.Advance())
		}
	})
	if moved.Empty() {
		return moved
	}
	return ga.closure(moved)
}
