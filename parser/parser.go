package parser

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"

	"github.com/hesperix/hesper"
	"github.com/hesperix/hesper/compile"
	"github.com/hesperix/hesper/grammar"
	"github.com/hesperix/hesper/lalr"
	"github.com/hesperix/hesper/lex"
	"github.com/hesperix/hesper/load"
	"github.com/hesperix/hesper/lr"
	"github.com/hesperix/hesper/lr/earley"
)

// Engine selects which parser engine drives the compiled grammar.
type Engine int

const (
	// LALR is a deterministic shift-reduce parser; New fails if the
	// grammar has an LALR conflict it cannot resolve by rule priority.
	LALR Engine = iota
	// Earley accepts the full class of context-free grammars, including
	// ambiguous ones; see Ambiguity for how a fork is resolved.
	Earley
)

// Ambiguity selects how an Earley parse resolves an ambiguous derivation.
// Ignored for LALR, which is unambiguous by construction.
type Ambiguity int

const (
	// Resolve picks the highest-priority alternative at every fork,
	// breaking ties by the lower (earlier-declared) rule.
	Resolve Ambiguity = iota
	// Explicit keeps every alternative of a fork, wrapped in a
	// synthetic "_ambig" tree node.
	Explicit
)

// LexerMode selects how the scanner narrows its candidate terminal set;
// see package lex's doc comment for the distinction (spec.md §4.4).
type LexerMode int

const (
	// BasicLexer matches the grammar's whole, fixed terminal set for the
	// entire input. Works with either engine; the default.
	BasicLexer LexerMode = iota
	// ContextualLexer narrows every lookahead fetch to the terminals
	// legal in the LALR driver's current state. LALR only: New rejects
	// ContextualLexer combined with WithEngine(Earley), since Earley has
	// no single current state to narrow against (it would need the
	// dynamic lexer of spec.md §4.4, which hesper does not implement).
	ContextualLexer
)

// Option configures a Parser at construction. Grounded in the teacher's
// functional-options pattern (lr/scanner.Option, lr/earley.Option).
type Option func(p *Parser)

// Start overrides the grammar's first-declared rule as the start symbol.
func Start(name string) Option {
	return func(p *Parser) { p.compileOpts.Start = name }
}

// WithEngine selects the parser engine. Defaults to LALR.
func WithEngine(e Engine) Option {
	return func(p *Parser) { p.engine = e }
}

// WithAmbiguity selects how the Earley engine resolves a fork. Defaults
// to Resolve.
func WithAmbiguity(a Ambiguity) Option {
	return func(p *Parser) { p.ambiguity = a }
}

// KeepAllTokens disables the default filtering of anonymous string-literal
// terminals from the produced tree.
func KeepAllTokens(b bool) Option {
	return func(p *Parser) { p.keepAllTokens = b }
}

// WithPriority selects how explicit terminal priority annotations are
// interpreted; see compile.PriorityMode.
func WithPriority(m compile.PriorityMode) Option {
	return func(p *Parser) { p.compileOpts.Priority = m }
}

// WithLoader supplies the loader %import directives resolve external
// grammar sources against. A grammar with no %import statements needs none.
func WithLoader(l load.Loader) Option {
	return func(p *Parser) { p.loader = l }
}

// WithLexer selects the lexer mode (spec.md §6's `lexer` constructor
// option). Defaults to BasicLexer.
func WithLexer(m LexerMode) Option {
	return func(p *Parser) { p.lexerMode = m }
}

// WithRegex additionally validates every terminal pattern with Go's
// stdlib regexp.Compile at build time (spec.md §6's `regex` constructor
// option), catching Unicode property classes and other syntax
// lexmachine's own pattern parser accepts more narrowly or silently
// differently. It is a validation pass only — lexmachine remains the
// engine that scans input; hesper does not implement a second,
// stdlib-regexp-backed scanning engine alongside it.
func WithRegex(b bool) Option {
	return func(p *Parser) { p.compileOpts.ValidateRegex = b }
}

// Debug raises every package's trace channel to LevelDebug for the
// lifetime of this Parser.
func Debug(b bool) Option {
	return func(p *Parser) { p.debug = b }
}

// OnError is called with every UnexpectedToken the LALR driver encounters;
// returning true discards the offending token and resumes parsing.
// Ignored by the Earley engine, which has no single current state a
// discarded token could resume a shift from.
type OnError func(*hesper.UnexpectedToken) bool

// Parser is hesper's public facade: build one with New from grammar
// source, then call Parse once per input string.
type Parser struct {
	engine        Engine
	ambiguity     Ambiguity
	lexerMode     LexerMode
	keepAllTokens bool
	debug         bool
	loader        load.Loader
	compileOpts   compile.Options
	compiled      *compile.Compiled
	lexer         *lex.Lexer
}

// New parses, resolves and lowers a grammar source, building a Parser
// ready to accept input. The returned error is a *hesper.GrammarSyntaxError
// (malformed EBNF+) or a *hesper.GrammarError (well-formed but internally
// inconsistent: undefined symbol, unresolved LALR conflict, …).
func New(src []byte, opts ...Option) (*Parser, error) {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.lexerMode == ContextualLexer && p.engine == Earley {
		return nil, &hesper.GrammarError{Msg: "lexer=contextual is LALR-only; Earley has no single current state to narrow against (needs the unimplemented dynamic lexer)"}
	}
	if p.debug {
		setDebugLevel(tracing.LevelDebug)
	}
	f, err := grammar.Parse(src)
	if err != nil {
		return nil, err
	}
	res, err := load.Resolve(f, p.loader)
	if err != nil {
		return nil, err
	}
	c, err := compile.Compile(res, p.compileOpts)
	if err != nil {
		return nil, err
	}
	if p.engine == LALR {
		// Build the tables once here, so an unresolved conflict is
		// reported by New rather than by the first Parse.
		if _, err := lalr.NewParser(c, lalr.Options{}); err != nil {
			return nil, err
		}
	}
	var lexOpts []lex.Option
	if p.lexerMode == ContextualLexer {
		lexOpts = append(lexOpts, lex.WithMode(lex.Contextual))
	}
	lx, err := lex.NewLexer(c.Terminals, c.Ignores, lexOpts...)
	if err != nil {
		return nil, err
	}
	p.compiled, p.lexer = c, lx
	return p, nil
}

// Parse scans text and drives it through the selected engine, returning
// the shaped parse tree — a *tree.Tree, a *tree.Token for a single-token
// input whose start rule is inline, or nil for a grammar whose start rule
// reduces to nothing kept.
func (p *Parser) Parse(text []byte, onError OnError) (interface{}, error) {
	tok, err := p.lexer.Scan(text)
	if err != nil {
		return nil, err
	}
	if p.engine == Earley {
		return p.parseEarley(tok)
	}
	return p.parseLALR(tok, onError)
}

func (p *Parser) parseLALR(tok lex.Tokenizer, onError OnError) (interface{}, error) {
	lp, err := lalr.NewParser(p.compiled, lalr.Options{
		KeepAllTokens: p.keepAllTokens,
		OnError:       onError,
		Contextual:    p.lexerMode == ContextualLexer,
	})
	if err != nil {
		return nil, err
	}
	return lp.Parse(tok)
}

func (p *Parser) parseEarley(tok lex.Tokenizer) (interface{}, error) {
	ga := lr.Analysis(p.compiled.Grammar)
	ep := earley.NewParser(ga, earley.GenerateTree(true), earley.StoreTokens(true))
	accept, err := ep.Parse(tok, nil)
	if err != nil {
		return nil, err
	}
	if !accept {
		if stuck := ep.StuckAt(); stuck != nil {
			return nil, stuck
		}
		return nil, &hesper.GrammarError{Msg: "input rejected: no derivation of the start symbol covers it"}
	}
	forest := ep.ParseForest()
	if forest == nil {
		return nil, &hesper.GrammarError{Msg: "accepted parse produced no forest"}
	}
	return earley.Shape(forest, ep, p.compiled, earley.ShapeOptions{
		KeepAllTokens: p.keepAllTokens,
		Explicit:      p.ambiguity == Explicit,
	})
}

func setDebugLevel(level tracing.TraceLevel) {
	for _, channel := range []string{
		"hesper.grammar", "hesper.load", "hesper.compile", "hesper.lex", "hesper.lalr",
		"hesper.earley", "hesper.tree", "hesper.transform", "hesper.parser",
	} {
		tracing.Select(channel).SetTraceLevel(level)
	}
	gtrace.SyntaxTracer.SetTraceLevel(level)
}
