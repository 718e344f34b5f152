package compile

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/hesperix/hesper/grammar"
	"github.com/hesperix/hesper/load"
)

func resolve(t *testing.T, src string) *load.Resolved {
	t.Helper()
	f, err := grammar.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res, err := load.Resolve(f, nil)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	return res
}

func TestCompileFlatGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.compile")
	defer teardown()
	//
	res := resolve(t, `
start: WORD "," WORD "!"
WORD: /\w+/
%ignore " "
`)
	c, err := Compile(res, Options{})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if c.Grammar.Rule(0).LHS.Name != "S'" {
		t.Fatalf("expected rule 0 to be the augmenting S' rule, got %s", c.Grammar.Rule(0).String())
	}
	if len(c.Terminals) != 3 {
		t.Errorf("expected 3 terminals (WORD plus promoted \",\" and \"!\" literals), got %d: %v", len(c.Terminals), c.Terminals)
	}
	if len(c.Ignores) != 1 || c.Ignores[0] != " " {
		t.Errorf("expected ignore pattern \" \", got %v", c.Ignores)
	}
}

func TestCompileRepetition(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.compile")
	defer teardown()
	//
	res := resolve(t, `
list: item* -> items
item: NUMBER
NUMBER: /[0-9]+/
`)
	c, err := Compile(res, Options{})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	found := false
	for i := 0; i < c.Grammar.RuleCount(); i++ {
		r := c.Grammar.Rule(i)
		if r.LHS.Name == "list" {
			found = true
			if len(r.RHS()) != 1 {
				t.Errorf("expected 'list' to desugar to a single synthetic helper symbol, got %s", r.String())
			}
		}
	}
	if !found {
		t.Fatalf("expected a rule with LHS 'list'")
	}
}

func TestCompileDeclaredTerminal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.compile")
	defer teardown()
	//
	res := resolve(t, `
%declare EXTERNAL
start: EXTERNAL
`)
	c, err := Compile(res, Options{})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if _, ok := c.Declared["EXTERNAL"]; !ok {
		t.Errorf("expected EXTERNAL in Declared, got %v", c.Declared)
	}
	for _, td := range c.Terminals {
		if td.Name == "EXTERNAL" {
			t.Errorf("declared terminal EXTERNAL should not appear in the pattern-backed Terminals table")
		}
	}
}

func TestCompilePriorityInvert(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.compile")
	defer teardown()
	//
	res := resolve(t, `
start: A | B
A.5: "a"
B: "b"
`)
	c, err := Compile(res, Options{Priority: PriorityInvert})
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	for _, td := range c.Terminals {
		if td.Name == "A" && td.Priority != -5 {
			t.Errorf("expected inverted priority -5 for A, got %d", td.Priority)
		}
		if td.Name == "B" && td.Priority != 0 {
			t.Errorf("expected unannotated priority 0 for B, got %d", td.Priority)
		}
	}
}
