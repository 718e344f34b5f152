package lalr

import (
	"fmt"

	"github.com/hesperix/hesper"
	"github.com/hesperix/hesper/compile"
	"github.com/hesperix/hesper/lex"
	"github.com/hesperix/hesper/lr"
	"github.com/hesperix/hesper/tree"
)

// Options configures the parser driver, mirroring the relevant slice of
// spec.md's constructor option table.
type Options struct {
	KeepAllTokens bool
	// OnError, if set, is called with every UnexpectedToken encountered;
	// returning true tells the driver to discard the offending token and
	// keep parsing (best-effort error recovery), false aborts the parse
	// with that error.
	OnError func(*hesper.UnexpectedToken) bool
	// Contextual selects the contextual lexer (spec.md §4.4, component
	// C8): at every lookahead fetch, Parse narrows tok's candidate
	// terminals to exactly those legal in the current LALR state (via
	// TableGenerator.ExpectedTerminals), instead of always scanning
	// against the grammar's full terminal set. tok itself must have been
	// built with lex.WithMode(lex.Contextual) for this to take effect;
	// passing Contextual with a Basic-mode Tokenizer is harmless; the
	// narrowed set is simply ignored.
	Contextual bool
}

// Parser is a deterministic LALR(1) shift-reduce driver over a single
// compiled grammar. Build once per grammar with NewParser, then call
// Parse once per input.
type Parser struct {
	compiled *compile.Compiled
	gen      *lr.TableGenerator
	goto_    *lr.Table
	action   *lr.Table
	opts     Options
	names    map[hesper.TokType]string
	byName   map[string]hesper.TokType
}

// NewParser builds the LALR(1) tables for compiled and returns a ready
// Parser. Reduce/reduce conflicts, and shift/reduce conflicts no rule
// priority resolved, are reported together as a single *hesper.GrammarError
// (spec.md §6: both are build-time failures, never a runtime ambiguity).
func NewParser(compiled *compile.Compiled, opts Options) (*Parser, error) {
	ga := lr.Analysis(compiled.Grammar)
	gen := lr.NewTableGenerator(ga)
	gen.CreateTables() // builds the merged CFSM and the GOTO table
	action, conflicts := gen.BuildPrioritizedActionTable()
	if len(conflicts) > 0 {
		return nil, conflictError(conflicts)
	}
	names := make(map[hesper.TokType]string, len(compiled.Terminals)+len(compiled.Declared))
	byName := make(map[string]hesper.TokType, len(compiled.Terminals)+len(compiled.Declared))
	for _, td := range compiled.Terminals {
		names[hesper.TokType(td.TokVal)] = td.Name
		byName[td.Name] = hesper.TokType(td.TokVal)
	}
	for name, tv := range compiled.Declared {
		names[hesper.TokType(tv)] = name
		byName[name] = hesper.TokType(tv)
	}
	return &Parser{
		compiled: compiled, gen: gen, goto_: gen.GotoTable(), action: action,
		opts: opts, names: names, byName: byName,
	}, nil
}

// legalTokens translates gen.ExpectedTerminals(state) into the
// hesper.TokType set a Tokenizer built in contextual mode expects,
// filtering out the pseudo-EOF symbol ("$") since it names the parser's
// end-of-input marker, not an actual scannable pattern — EOF is detected
// by the lexer reaching the end of input, never by matching a terminal.
// Returns lex.AnyToken (nil) when opts.Contextual is false, so Parse's
// call sites need no branching of their own.
func (p *Parser) legalTokens(state uint) []hesper.TokType {
	if !p.opts.Contextual {
		return lex.AnyToken
	}
	names := p.gen.ExpectedTerminals(state)
	out := make([]hesper.TokType, 0, len(names))
	for _, name := range names {
		if name == "$" {
			continue
		}
		if tt, ok := p.byName[name]; ok {
			out = append(out, tt)
		}
	}
	return out
}

func conflictError(conflicts []lr.Conflict) error {
	c := conflicts[0]
	if c.Kind == lr.ReduceReduceConflict {
		return &hesper.GrammarError{Msg: fmt.Sprintf(
			"reduce/reduce conflict in state %d on %q between rule %q and rule %q (%d more conflict(s))",
			c.State, c.Terminal.Name, c.Rule1.String(), c.Rule2.String(), len(conflicts)-1)}
	}
	return &hesper.GrammarError{Msg: fmt.Sprintf(
		"unresolved shift/reduce conflict in state %d on %q for rule %q; annotate its priority to prefer reduce (%d more conflict(s))",
		c.State, c.Terminal.Name, c.Rule1.String(), len(conflicts)-1)}
}

type stackEntry struct {
	state uint
	node  interface{}
}

// Parse drives tok through the LALR(1) tables, returning the root
// tree.Tree (or a bare leaf value for a grammar whose start rule is
// inline and reduces to a single child) of the accepted derivation.
func (p *Parser) Parse(tok lex.Tokenizer) (interface{}, error) {
	stack := []stackEntry{{state: 0}}
	tok.SetErrorHandler(func(err error) { tracer().Errorf("lexical error: %v", err) })
	lookahead := tok.NextToken(p.legalTokens(0))

	for {
		top := stack[len(stack)-1]
		act := p.action.Value(top.state, lookahead.TokType())
		switch {
		case act == p.action.NullValue():
			uerr := &hesper.UnexpectedToken{
				Got: lookahead, At: lookahead.Start(),
				Expected: p.gen.ExpectedTerminals(top.state),
			}
			if p.opts.OnError != nil && p.opts.OnError(uerr) {
				lookahead = tok.NextToken(p.legalTokens(top.state))
				continue
			}
			return nil, uerr

		case act == lr.ShiftAction || act == lr.AcceptAction:
			node := p.tokenNode(lookahead)
			next := uint(p.goto_.Value(top.state, lookahead.TokType()))
			stack = append(stack, stackEntry{state: next, node: node})
			lookahead = tok.NextToken(p.legalTokens(next))

		default: // reduce by rule Serial == act
			rule := p.compiled.Grammar.Rule(int(act))
			n := len(rule.RHS())
			popped := make([]interface{}, n)
			for i := n - 1; i >= 0; i-- {
				popped[i] = stack[len(stack)-1].node
				stack = stack[:len(stack)-1]
			}
			if rule.Serial == 0 { // S' -> start: the augmenting rule always accepts
				if n == 0 {
					return nil, &hesper.GrammarError{Msg: "empty grammar: start rule has no productions"}
				}
				return popped[0], nil
			}
			children := make([]interface{}, 0, n)
			for _, c := range popped {
				if c != nil {
					children = append(children, c)
				}
			}
			meta := p.compiled.RuleMeta[rule.Serial]
			span := spanOf(children)
			node := tree.Shape(meta.Source, meta.Rename, meta.Inline, meta.FilterOut, children, span)
			below := stack[len(stack)-1]
			gotoState := uint(p.goto_.Value(below.state, rule.LHS.TokenType()))
			stack = append(stack, stackEntry{state: gotoState, node: node})
		}
	}
}

func (p *Parser) tokenNode(t hesper.Token) interface{} {
	name := p.names[t.TokType()]
	if !tree.KeepToken(p.compiled.Filtered[name], p.compiled.Anonymous[name], p.opts.KeepAllTokens) {
		return nil
	}
	return &tree.Token{Name: name, Text: t.Lexeme(), Span: t.Span(), Value: t.Value()}
}

func spanOf(children []interface{}) hesper.Span {
	var first, last *hesper.Span
	for _, c := range children {
		var s hesper.Span
		switch v := c.(type) {
		case *tree.Tree:
			s = v.Span
		case *tree.Token:
			s = v.Span
		default:
			continue
		}
		if first == nil {
			cp := s
			first = &cp
		}
		cp := s
		last = &cp
	}
	if first == nil {
		return hesper.Span{}
	}
	return hesper.Span{first[0], last[1]}
}
