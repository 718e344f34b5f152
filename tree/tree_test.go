package tree

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/hesperix/hesper"
)

func TestShapePlain(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.tree")
	defer teardown()
	//
	tok := &Token{Name: "NUMBER", Text: "42"}
	got := Shape("atom", "", false, false, []interface{}{tok}, hesper.Span{0, 2})
	tr, ok := got.(*Tree)
	if !ok {
		t.Fatalf("expected *Tree, got %T", got)
	}
	if tr.Name != "atom" || len(tr.Children) != 1 {
		t.Errorf("unexpected shape: %s", tr.String())
	}
}

func TestShapeAlias(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.tree")
	defer teardown()
	//
	got := Shape("list", "items", false, false, []interface{}{&Token{Name: "A", Text: "a"}}, hesper.Span{})
	tr := got.(*Tree)
	if tr.Name != "items" {
		t.Errorf("expected alias to override rule name, got %q", tr.Name)
	}
}

func TestShapeInlineCollapsesSingleChild(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.tree")
	defer teardown()
	//
	child := &Tree{Name: "inner"}
	got := Shape("wrapper", "", true, false, []interface{}{child}, hesper.Span{})
	if got != interface{}(child) {
		t.Errorf("expected inline rule with one child to collapse to that child")
	}
}

func TestShapeAliasWinsOverInlineCollapse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.tree")
	defer teardown()
	//
	// An inline rule ("?factor: ... -> neg | atom") must still name its
	// aliased alternative, even though that alternative's only surviving
	// child (after its literal operator token is filtered) would
	// otherwise collapse away under the rule's inline flag.
	child := &Tree{Name: "factor"}
	got := Shape("factor", "neg", true, false, []interface{}{child}, hesper.Span{})
	tr, ok := got.(*Tree)
	if !ok {
		t.Fatalf("expected alias to produce a named *Tree, got %T", got)
	}
	if tr.Name != "neg" || len(tr.Children) != 1 || tr.Children[0] != interface{}(child) {
		t.Errorf("expected neg(factor), got %s", tr.String())
	}
}

func TestShapeFilterOutSplicesIntoParent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.tree")
	defer teardown()
	//
	a := &Token{Name: "A", Text: "a"}
	b := &Token{Name: "B", Text: "b"}
	inner := Shape("_punct", "", false, true, []interface{}{a, b}, hesper.Span{})
	outer := Shape("outer", "", false, false, []interface{}{inner}, hesper.Span{})
	tr := outer.(*Tree)
	if len(tr.Children) != 2 {
		t.Fatalf("expected filter_out children spliced into parent, got %d children", len(tr.Children))
	}
	if tr.Children[0] != interface{}(a) || tr.Children[1] != interface{}(b) {
		t.Errorf("expected spliced children in original order")
	}
}

func TestKeepToken(t *testing.T) {
	cases := []struct {
		filtered, anonymous, keepAll, want bool
	}{
		{filtered: true, want: false},
		{anonymous: true, keepAll: false, want: false},
		{anonymous: true, keepAll: true, want: true},
		{want: true},
	}
	for _, c := range cases {
		if got := KeepToken(c.filtered, c.anonymous, c.keepAll); got != c.want {
			t.Errorf("KeepToken(%v,%v,%v) = %v, want %v", c.filtered, c.anonymous, c.keepAll, got, c.want)
		}
	}
}
