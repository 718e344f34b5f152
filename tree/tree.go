package tree

import (
	"strings"

	"github.com/hesperix/hesper"
)

// Token is a retained terminal: a leaf of the parse tree carrying the
// lexeme the lexer matched, for terminals whose definition was not
// filtered (leading "_" on a TOKEN name, or an anonymous literal dropped
// unless keep_all_tokens is set).
type Token struct {
	Name  string // terminal name
	Text  string // matched lexeme
	Span  hesper.Span
	Value interface{} // the scanner's token value, if richer than Text
}

// Tree is one non-terminal node: its Name is the rule name, or the
// alias a "-> name" production renamed it to. Children are either *Tree
// or *Token, in left-to-right derivation order.
type Tree struct {
	Name     string
	Children []interface{}
	Span     hesper.Span
}

// spliced marks the result of reducing a filter_out rule: it carries no
// node of its own, so the parent production's child list absorbs
// Children directly in its place. Shape never returns a *spliced to a
// caller outside this package — Flatten resolves it first.
type spliced struct {
	Children []interface{}
}

// Flatten expands any filter_out productions among children into their
// own children, in place. Every driver calls this immediately before
// handing a rule's popped RHS to Shape, since a filtered-out rule may sit
// anywhere in that RHS, not only as its sole element.
func Flatten(children []interface{}) []interface{} {
	var hasSplice bool
	for _, c := range children {
		if _, ok := c.(*spliced); ok {
			hasSplice = true
			break
		}
	}
	if !hasSplice {
		return children
	}
	out := make([]interface{}, 0, len(children))
	for _, c := range children {
		if sp, ok := c.(*spliced); ok {
			out = append(out, sp.Children...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Shape builds the tree node (or splice marker, or bare passthrough)
// that a completed production contributes to its parent, applying the
// rule's alias, inline and filter_out flags in that order:
//
//   - alias, if non-empty, always wins: an aliased alternative ("-> name")
//     names an explicit node the grammar author wanted to see, so it is
//     never collapsed away even if the rule as a whole is marked inline.
//   - inline (checked only when there is no alias) collapses a
//     single-child production to that child, discarding the wrapping
//     node entirely.
//   - filterOut (checked last, since an inlined single child never
//     needed a wrapper to begin with) produces a splice marker instead
//     of a node, so the parent absorbs these children as its own.
func Shape(ruleName, alias string, inline, filterOut bool, children []interface{}, span hesper.Span) interface{} {
	children = Flatten(children)
	if alias == "" && inline && len(children) == 1 {
		return children[0]
	}
	if alias == "" && filterOut {
		return &spliced{Children: children}
	}
	name := ruleName
	if alias != "" {
		name = alias
	}
	return &Tree{Name: name, Children: children, Span: span}
}

// KeepToken reports whether a matched terminal should be retained as a
// *Token child, given whether its TokenDef was filtered (leading "_", or
// a %ignore'd pattern — never retained) and whether the terminal is an
// anonymous literal synthesized by package load while promoting string
// literals (only retained under keep_all_tokens).
func KeepToken(filtered, anonymous, keepAllTokens bool) bool {
	if filtered {
		return false
	}
	if anonymous {
		return keepAllTokens
	}
	return true
}

// Walk visits every node of t and its descendants, depth-first,
// pre-order, calling visit with t itself first. Token leaves are not
// recursed into, since they have no children.
func Walk(t *Tree, visit func(*Tree)) {
	if t == nil {
		return
	}
	visit(t)
	for _, c := range t.Children {
		if sub, ok := c.(*Tree); ok {
			Walk(sub, visit)
		}
	}
}

// String renders t as a single-line, parenthesized S-expression, mainly
// useful in test failure messages; Dump (dump.go) renders a multi-line,
// colorized tree for interactive use.
func (t *Tree) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tree) write(b *strings.Builder) {
	b.WriteByte('(')
	b.WriteString(t.Name)
	for _, c := range t.Children {
		b.WriteByte(' ')
		switch v := c.(type) {
		case *Tree:
			v.write(b)
		case *Token:
			b.WriteString(v.Text)
		}
	}
	b.WriteByte(')')
}
