package lalr

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/hesperix/hesper/compile"
	"github.com/hesperix/hesper/grammar"
	"github.com/hesperix/hesper/lex"
	"github.com/hesperix/hesper/load"
	"github.com/hesperix/hesper/tree"
)

func compileCalculator(t *testing.T) *compile.Compiled {
	t.Helper()
	src := []byte(`
sum: product "+" sum -> add
   | product
product: atom "*" product -> mul
   | atom
atom: NUMBER
   | "(" sum ")"
NUMBER: /[0-9]+/
%ignore " "
`)
	f, err := grammar.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res, err := load.Resolve(f, nil)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	c, err := compile.Compile(res, compile.Options{})
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return c
}

func makeTokenizer(t *testing.T, c *compile.Compiled, input string) lex.Tokenizer {
	t.Helper()
	lx, err := lex.NewLexer(c.Terminals, c.Ignores)
	if err != nil {
		t.Fatalf("building lexer: %v", err)
	}
	tz, err := lx.Scan([]byte(input))
	if err != nil {
		t.Fatalf("scanning input: %v", err)
	}
	return tz
}

func TestLALRParseCalculator(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.lalr")
	defer teardown()
	//
	c := compileCalculator(t)
	p, err := NewParser(c, Options{})
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	result, err := p.Parse(makeTokenizer(t, c, "1 + 2 * 3"))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	root, ok := result.(*tree.Tree)
	if !ok {
		t.Fatalf("expected *tree.Tree root, got %T", result)
	}
	if root.Name != "add" {
		t.Errorf("expected top-level node 'add', got %q (%s)", root.Name, root.String())
	}
}

func TestLALRUnexpectedToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.lalr")
	defer teardown()
	//
	c := compileCalculator(t)
	p, err := NewParser(c, Options{})
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	_, err = p.Parse(makeTokenizer(t, c, "1 + + 2"))
	if err == nil {
		t.Fatalf("expected an UnexpectedToken error")
	}
}
