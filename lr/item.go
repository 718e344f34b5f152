package lr

import "fmt"

// Item is a dotted rule: a grammar rule with a marker ("dot") indicating how
// far a derivation has progressed. LR item sets use Item without Origin;
// Earley items (package earley) additionally interpret Origin as the chart
// column the item was predicted from.
//
// Item is a value type so it can be used as a map/set key directly.
type Item struct {
	rule   *Rule
	Dot    int
	Origin uint64 // Earley-only: chart position this item was predicted at
}

// NullItem is the zero-value sentinel for "no item".
var NullItem = Item{}

// IsNull reports whether item is the null item.
func (item Item) IsNull() bool {
	return item.rule == nil
}

// Rule returns the rule item is dotting through.
func (item Item) Rule() *Rule {
	return item.rule
}

// StartItem creates the initial item of rule, with the dot before the first
// RHS symbol, and returns it together with the first symbol after the dot
// (nil for an epsilon rule).
func StartItem(rule *Rule) (Item, *Symbol) {
	it := Item{rule: rule, Dot: 0}
	return it, it.PeekSymbol()
}

// PeekSymbol returns the RHS symbol immediately following the dot, or nil
// if the dot is at the end of the rule (a completed item).
func (item Item) PeekSymbol() *Symbol {
	if item.rule == nil {
		return nil
	}
	rhs := item.rule.RHS()
	if item.Dot < 0 || item.Dot >= len(rhs) {
		return nil
	}
	return rhs[item.Dot]
}

// Advance returns a copy of item with the dot moved one position to the
// right. Panics if item is already complete.
func (item Item) Advance() Item {
	if item.PeekSymbol() == nil {
		panic("lr: cannot advance a completed item")
	}
	return Item{rule: item.rule, Dot: item.Dot + 1, Origin: item.Origin}
}

// IsComplete reports whether the dot has reached the end of the rule.
func (item Item) IsComplete() bool {
	return !item.IsNull() && item.PeekSymbol() == nil
}

// Prefix returns the RHS symbols already consumed by the dot.
func (item Item) Prefix() []*Symbol {
	if item.rule == nil {
		return nil
	}
	return item.rule.RHS()[:item.Dot]
}

// Suffix returns the RHS symbols still to the right of the dot.
func (item Item) Suffix() []*Symbol {
	if item.rule == nil {
		return nil
	}
	return item.rule.RHS()[item.Dot:]
}

func (item Item) String() string {
	if item.rule == nil {
		return "[nil item]"
	}
	rhs := item.rule.RHS()
	s := item.rule.LHS.Name + " ->"
	for i, sym := range rhs {
		if i == item.Dot {
			s += " ."
		}
		s += " " + sym.Name
	}
	if item.Dot == len(rhs) {
		s += " ."
	}
	if item.Origin > 0 {
		s += fmt.Sprintf(" (%d)", item.Origin)
	}
	return s
}
