package transform

import (
	"strconv"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/hesperix/hesper/tree"
)

func num(s string) *tree.Token { return &tree.Token{Name: "NUMBER", Text: s} }

func TestTransformCalculatorFoldsToNumber(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.transform")
	defer teardown()
	//
	// (add (mul 6 7 31) 5) encodes 6*7*31 + 5 = 1302+5 = 1307.
	ast := &tree.Tree{Name: "add", Children: []interface{}{
		&tree.Tree{Name: "mul", Children: []interface{}{num("6"), num("7"), num("31")}},
		num("5"),
	}}

	tr := New()
	tr.On("NUMBER", func(name string, children []interface{}) interface{} {
		panic("NUMBER is a token, never a tree node")
	})
	tr.On("mul", func(name string, children []interface{}) interface{} {
		product := 1.0
		for _, c := range children {
			product *= c.(float64)
		}
		return product
	})
	tr.On("add", func(name string, children []interface{}) interface{} {
		sum := 0.0
		for _, c := range children {
			sum += c.(float64)
		}
		return sum
	})
	tr.Default(func(name string, children []interface{}) interface{} {
		return name
	})

	// Tokens never reach a Handler through Transform (they are passed
	// through verbatim); fold them to float64 first.
	foldTokens(ast)

	got, err := tr.Transform(ast)
	if err != nil {
		t.Fatalf("unexpected transform error: %v", err)
	}
	want := 6.0*7.0*31.0 + 5.0
	if got.(float64) != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

// foldTokens replaces every NUMBER *tree.Token child in place with its
// parsed float64 value, since Transform only ever calls a Handler for
// *tree.Tree nodes (tokens pass through Transform untouched by design).
func foldTokens(t *tree.Tree) {
	for i, c := range t.Children {
		switch v := c.(type) {
		case *tree.Token:
			f, _ := strconv.ParseFloat(v.Text, 64)
			t.Children[i] = f
		case *tree.Tree:
			foldTokens(v)
		}
	}
}

func TestVisitorCountsNodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.transform")
	defer teardown()
	//
	ast := &tree.Tree{Name: "add", Children: []interface{}{
		&tree.Tree{Name: "mul", Children: []interface{}{num("1"), num("2")}},
		num("3"),
	}}
	var names []string
	v := NewVisitor(TopDown, func(node interface{}, depth int) bool {
		if tr, ok := node.(*tree.Tree); ok {
			names = append(names, tr.Name)
		}
		return true
	})
	v.Walk(ast)
	if len(names) != 2 || names[0] != "add" || names[1] != "mul" {
		t.Errorf("expected top-down visit order [add mul], got %v", names)
	}
}

func TestTransformerRecoversHandlerPanic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.transform")
	defer teardown()
	//
	ast := &tree.Tree{Name: "broken", Children: nil}
	tr := New().On("broken", func(name string, children []interface{}) interface{} {
		panic("boom")
	})
	_, err := tr.Transform(ast)
	if err == nil {
		t.Fatalf("expected a VisitError from the recovered panic")
	}
}
