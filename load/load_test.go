package load

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/hesperix/hesper/grammar"
)

// stdlibLoader serves a tiny in-memory stand-in for the kind of "common"
// terminal library a real Loader would back with an embedded filesystem.
type stdlibLoader struct {
	modules map[string][]byte
}

func (l *stdlibLoader) Load(path []string) (*grammar.File, error) {
	key := ""
	for i, p := range path {
		if i > 0 {
			key += "."
		}
		key += p
	}
	src, ok := l.modules[key]
	if !ok {
		return nil, &unknownModule{key}
	}
	return grammar.Parse(src)
}

type unknownModule struct{ name string }

func (e *unknownModule) Error() string { return "no such module: " + e.name }

func newStdlib() *stdlibLoader {
	return &stdlibLoader{modules: map[string][]byte{
		"common": []byte(`
NUMBER: /[0-9]+(\.[0-9]+)?/
WS: /[ \t]+/
`),
	}}
}

func TestResolveImportCommonNumber(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.load")
	defer teardown()
	//
	src := []byte(`
%import common.NUMBER
start: NUMBER
`)
	f, err := grammar.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	res, err := Resolve(f, newStdlib())
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if _, ok := res.Tokens["NUMBER"]; !ok {
		t.Fatalf("expected NUMBER to be imported, got tokens %v", res.TokenOrder)
	}
	if _, ok := res.Rules["start"]; !ok {
		t.Fatalf("expected rule 'start' to survive resolution")
	}
}

func TestResolveCyclicImportRejected(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.load")
	defer teardown()
	//
	loader := &stdlibLoader{modules: map[string][]byte{
		"a": []byte("%import b.X\nA: \"a\"\n"),
		"b": []byte("%import a.A\nX: \"x\"\n"),
	}}
	src := []byte(`
%import a.A
start: A
`)
	f, err := grammar.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := Resolve(f, loader); err == nil {
		t.Fatalf("expected a cyclic %%import error, got none")
	}
}

func TestResolveDeclareAndOverride(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.load")
	defer teardown()
	//
	src := []byte(`
%declare EXTERNAL
start: A EXTERNAL
%override start: A
A: "a"
`)
	f, err := grammar.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	res, err := Resolve(f, newStdlib())
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if !res.Declared["EXTERNAL"] {
		t.Errorf("expected EXTERNAL to be declared")
	}
	rule := res.Rules["start"]
	if len(rule.Expansions[0].Expansion.Exprs) != 1 {
		t.Errorf("expected %%override to replace 'start' with a single-symbol expansion, got %d exprs",
			len(rule.Expansions[0].Expansion.Exprs))
	}
}

func TestPromoteLiteralsCollapsesIdenticalStrings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "hesper.load")
	defer teardown()
	//
	src := []byte(`
start: a_side | b_side
a_side: "x" "+"
b_side: "+" "x"
`)
	f, err := grammar.Parse(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	res, err := Resolve(f, newStdlib())
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	aSide := res.Rules["a_side"].Expansions[0].Expansion.Exprs
	bSide := res.Rules["b_side"].Expansions[0].Expansion.Exprs
	plusFromA := aSide[1].Atom.Name
	plusFromB := bSide[0].Atom.Name
	if plusFromA == "" || plusFromA != plusFromB {
		t.Errorf("expected both literal \"+\" atoms to resolve to the same terminal, got %q and %q",
			plusFromA, plusFromB)
	}
}
