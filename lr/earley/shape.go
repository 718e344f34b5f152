package earley

import (
	"github.com/hesperix/hesper"
	"github.com/hesperix/hesper/compile"
	"github.com/hesperix/hesper/lr/sppf"
	"github.com/hesperix/hesper/tree"
)

// ShapeOptions configures how a parse forest is flattened into a tree,
// mirroring the relevant slice of spec.md's constructor option table.
type ShapeOptions struct {
	KeepAllTokens bool
	// Explicit selects ambiguity='explicit': every alternative derivation
	// of an ambiguous span is kept, wrapped in a synthetic "_ambig" node.
	// The default, ambiguity='resolve', picks one alternative outright.
	Explicit bool
}

// Shape flattens forest into a tree.Tree (or a bare leaf, for a grammar
// whose start rule is inline), resolving ambiguity per spec.md §4: at each
// fork, the alternative with the highest rule priority wins, ties broken
// by lower rule serial — unless Explicit is set, in which case every
// alternative survives under a "_ambig" node.
func Shape(forest *sppf.Forest, p *Parser, compiled *compile.Compiled, opts ShapeOptions) (interface{}, error) {
	root := forest.RootNode()
	if root == nil {
		return nil, &hesper.GrammarError{Msg: "empty parse forest"}
	}
	s := &shaper{forest: forest, p: p, compiled: compiled, opts: opts}
	if root.Symbol.Name != "S'" {
		return s.shapeSymbol(root), nil
	}
	alts := forest.Alternatives(root)
	if len(alts) == 0 {
		return nil, &hesper.GrammarError{Msg: "parse forest root has no derivation"}
	}
	alt := s.pickAlternative(alts)
	if len(alt.Children) == 0 {
		return nil, &hesper.GrammarError{Msg: "empty grammar: start rule has no productions"}
	}
	return s.shapeSymbol(alt.Children[0]), nil
}

type shaper struct {
	forest   *sppf.Forest
	p        *Parser
	compiled *compile.Compiled
	opts     ShapeOptions
}

func (s *shaper) shapeSymbol(sym *sppf.SymbolNode) interface{} {
	if sym.Symbol.IsTerminal() {
		return s.shapeTerminal(sym)
	}
	alts := s.forest.Alternatives(sym)
	if len(alts) == 0 {
		return nil
	}
	if len(alts) == 1 || !s.opts.Explicit {
		return s.shapeAlt(sym, s.pickAlternative(alts))
	}
	children := make([]interface{}, 0, len(alts))
	for _, alt := range alts {
		children = append(children, s.shapeAlt(sym, alt))
	}
	return &tree.Tree{Name: "_ambig", Children: children, Span: sym.Extent}
}

// pickAlternative resolves an ambiguity fork for ambiguity='resolve' (and
// for picking the single surviving derivation of each further-nested fork
// under 'explicit', once its own _ambig node has already been emitted): the
// highest-priority rule wins; ties go to the lower (earlier-declared) rule
// serial, approximating spec.md's "fewer _ambig markers, then
// leftmost-longest" tie-break without re-deriving subtree ambiguity counts.
func (s *shaper) pickAlternative(alts []sppf.RHSAlt) sppf.RHSAlt {
	best := alts[0]
	bestPrio := s.compiled.Grammar.Rule(best.Rule).Prio
	for _, alt := range alts[1:] {
		prio := s.compiled.Grammar.Rule(alt.Rule).Prio
		if prio > bestPrio || (prio == bestPrio && alt.Rule < best.Rule) {
			best, bestPrio = alt, prio
		}
	}
	return best
}

func (s *shaper) shapeAlt(sym *sppf.SymbolNode, alt sppf.RHSAlt) interface{} {
	kids := make([]interface{}, 0, len(alt.Children))
	for _, c := range alt.Children {
		if v := s.shapeSymbol(c); v != nil {
			kids = append(kids, v)
		}
	}
	meta := s.compiled.RuleMeta[alt.Rule]
	if meta == nil {
		return &tree.Tree{Name: sym.Symbol.Name, Children: kids, Span: sym.Extent}
	}
	return tree.Shape(meta.Source, meta.Rename, meta.Inline, meta.FilterOut, kids, sym.Extent)
}

func (s *shaper) shapeTerminal(sym *sppf.SymbolNode) interface{} {
	name := sym.Symbol.Name
	if !tree.KeepToken(s.compiled.Filtered[name], s.compiled.Anonymous[name], s.opts.KeepAllTokens) {
		return nil
	}
	if htok, ok := s.p.TokenAt(sym.Extent.From()).(hesper.Token); ok {
		return &tree.Token{Name: name, Text: htok.Lexeme(), Span: htok.Span(), Value: htok.Value()}
	}
	return &tree.Token{Name: name, Span: sym.Extent}
}
