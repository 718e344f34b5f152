package lex

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/hesperix/hesper"
)

// keywordVsIdent is the canonical specificity-tie-break scenario from
// spec.md §4.4: IDENT matches "if" just as well as the literal keyword
// does, at equal priority, so the literal terminal must win.
func keywordVsIdent() []TerminalDef {
	return []TerminalDef{
		{Name: "IDENT", Pattern: `[a-z]+`, TokVal: 1, Priority: 0, Literal: false},
		{Name: "IF", Pattern: `if`, TokVal: 2, Priority: 0, Literal: true},
	}
}

func TestNewLexerSpecificityBreaksTie(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.lex")
	defer teardown()
	//
	l, err := NewLexer(keywordVsIdent(), []string{`[ \t\n]+`})
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	if l.terminals[0].Name != "IF" {
		t.Fatalf("expected literal IF to sort before regex IDENT, got order %v", l.terminals)
	}
	tok, err := l.Scan([]byte("if"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	got := tok.NextToken(AnyToken)
	if got.TokType() != 2 {
		t.Errorf("expected \"if\" to scan as the IF literal (TokType 2), got %d", got.TokType())
	}
}

func TestNewLexerPriorityBeatsSpecificity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.lex")
	defer teardown()
	//
	defs := keywordVsIdent()
	defs[0].Priority = 5 // IDENT declared higher priority than the IF literal
	l, err := NewLexer(defs, nil)
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	if l.terminals[0].Name != "IDENT" {
		t.Fatalf("expected higher-priority IDENT to sort first regardless of specificity, got %v", l.terminals)
	}
}

func identVsIf() ([]TerminalDef, map[string]hesper.TokType) {
	defs := keywordVsIdent()
	names := map[string]hesper.TokType{"IDENT": 1, "IF": 2}
	return defs, names
}

func TestContextualModeNarrowsCandidates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.lex")
	defer teardown()
	//
	defs, names := identVsIf()
	l, err := NewLexer(defs, []string{`[ \t\n]+`}, WithMode(Contextual))
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	tok, err := l.Scan([]byte("if"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// Narrowed to IDENT only: the IF-literal sub-lexer is never compiled
	// for this call, so "if" must scan as a plain identifier.
	got := tok.NextToken([]hesper.TokType{names["IDENT"]})
	if got.TokType() != names["IDENT"] {
		t.Errorf("expected contextual scan restricted to IDENT to yield IDENT, got %d", got.TokType())
	}
}

func TestContextualModeCachesSubLexerPerSignature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.lex")
	defer teardown()
	//
	defs, names := identVsIf()
	l, err := NewLexer(defs, nil, WithMode(Contextual))
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	legal := []hesper.TokType{names["IDENT"], names["IF"]}
	tok, err := l.Scan([]byte("if foo"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	first := tok.NextToken(legal)
	if first.TokType() != names["IF"] {
		t.Fatalf("expected first token to scan as IF, got %d", first.TokType())
	}
	second := tok.NextToken(legal)
	if second.TokType() != names["IDENT"] {
		t.Fatalf("expected second token to scan as IDENT, got %d", second.TokType())
	}
	if len(l.subs) != 1 {
		t.Errorf("expected exactly one cached sub-lexer for the repeated signature, got %d", len(l.subs))
	}
}

func TestBasicModeIgnoresLegalSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.lex")
	defer teardown()
	//
	defs, names := identVsIf()
	l, err := NewLexer(defs, nil) // Basic is the default
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	tok, err := l.Scan([]byte("if"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// Passing a narrowed set in Basic mode must be a no-op.
	got := tok.NextToken([]hesper.TokType{names["IDENT"]})
	if got.TokType() != names["IF"] {
		t.Errorf("expected Basic mode to ignore the legal-set argument and still yield IF, got %d", got.TokType())
	}
}

func TestNextTokenReachesEOF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.lex")
	defer teardown()
	//
	l, err := NewLexer(keywordVsIdent(), []string{`[ \t\n]+`})
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	tok, err := l.Scan([]byte("if"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	tok.NextToken(AnyToken)
	eof := tok.NextToken(AnyToken)
	if eof.TokType() != EOF {
		t.Errorf("expected EOF after consuming all input, got %d", eof.TokType())
	}
}
