package grammar

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestParseHello(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.grammar")
	defer teardown()
	//
	src := []byte(`
start: WORD "," WORD "!"
WORD: /\w+/
%ignore " "
`)
	f, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(f.Rules) != 1 || f.Rules[0].Name != "start" {
		t.Errorf("expected one rule named 'start', got %v", f.Rules)
	}
	if len(f.Tokens) != 1 || f.Tokens[0].Name != "WORD" {
		t.Errorf("expected one terminal named 'WORD', got %v", f.Tokens)
	}
	if len(f.Ignores) != 1 || f.Ignores[0] != " " {
		t.Errorf("expected ignore pattern \" \", got %v", f.Ignores)
	}
}

func TestParseRepetitionAndAlias(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.grammar")
	defer teardown()
	//
	src := []byte(`
list: item* -> items
item: NUMBER
NUMBER: /[0-9]+/
`)
	f, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(f.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(f.Rules))
	}
	list := f.Rules[0]
	if len(list.Expansions) != 1 || len(list.Expansions[0].Expansion.Exprs) != 1 {
		t.Fatalf("expected a single expr in 'list' expansion")
	}
	e := list.Expansions[0].Expansion.Exprs[0]
	if e.Op != RepeatStar {
		t.Errorf("expected '*' repetition, got %v", e.Op)
	}
	if list.Expansions[0].RenameTo != "items" {
		t.Errorf("expected alias 'items', got %q", list.Expansions[0].RenameTo)
	}
}

func TestParseImportAndDeclare(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.grammar")
	defer teardown()
	//
	src := []byte(`
%import common.NUMBER
%declare EXTERNAL
start: NUMBER EXTERNAL
`)
	f, err := Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(f.Imports) != 1 || f.Imports[0].Path[len(f.Imports[0].Path)-1] != "NUMBER" {
		t.Errorf("expected import of common.NUMBER, got %v", f.Imports)
	}
	if len(f.Declares) != 1 || f.Declares[0].Names[0] != "EXTERNAL" {
		t.Errorf("expected declare of EXTERNAL, got %v", f.Declares)
	}
}

func TestParseSyntaxError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.grammar")
	defer teardown()
	//
	src := []byte(`start: (A B`)
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected a GrammarSyntaxError, got none")
	}
}
