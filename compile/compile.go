package compile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hesperix/hesper"
	"github.com/hesperix/hesper/grammar"
	"github.com/hesperix/hesper/lex"
	"github.com/hesperix/hesper/load"
	"github.com/hesperix/hesper/lr"
)

// PriorityMode selects how an explicit priority annotation on a terminal
// is interpreted before lexer tie-breaking, per spec.md's `priority`
// constructor option. Rules carry no priority annotation: the grammar
// parser reads priorities on terminal definitions only, so every compiled
// rule has priority 0.
type PriorityMode int

const (
	// PriorityNormal uses explicit priorities as written.
	PriorityNormal PriorityMode = iota
	// PriorityInvert flips the sign of every explicit (non-zero) priority,
	// leaving unannotated terminals at 0 so they remain in the
	// middle of the ranking (§9 Open Question, resolved this way — see
	// DESIGN.md).
	PriorityInvert
	// PriorityNone ignores all priority annotations, treating every
	// terminal as priority 0.
	PriorityNone
)

// Options configures how Compile lowers a resolved grammar.
type Options struct {
	Start    string // overrides the first-declared rule as start symbol
	Priority PriorityMode
	// ValidateRegex additionally validates every terminal's rendered
	// pattern with Go's stdlib regexp.Compile, catching Unicode
	// property classes and other syntax lexmachine's own (more limited)
	// pattern parser silently mishandles. It is a build-time check only:
	// lexmachine remains the engine that actually scans input, since
	// hesper's lexer layer (package lex) is built on top of it, not on
	// stdlib regexp.
	ValidateRegex bool
}

// RuleMeta records the tree-shaping metadata a RuleDef/Alias carried in
// the source grammar, needed by package tree once a derivation has been
// produced: the alias rename (if the production used `-> NAME`), and
// whether the owning rule is inline-if-single-child or filter-out.
type RuleMeta struct {
	Rename    string
	Inline    bool
	FilterOut bool
	Source    string // originating rule name, for diagnostics
}

// Compiled is the output of Compile: a flat lr.Grammar ready for package
// lalr or package earley, the terminal table for package lex, and the
// per-rule tree-shaping metadata for package tree.
type Compiled struct {
	Grammar   *lr.Grammar
	Terminals []lex.TerminalDef
	Ignores   []string
	Declared  map[string]int  // %declare'd terminal name -> assigned token value
	RuleMeta  map[int]*RuleMeta
	Filtered  map[string]bool // terminal name -> leading "_" on its definition
	Anonymous map[string]bool // terminal name -> synthesized by package load's literal promotion
}

// Compile lowers res into a Compiled grammar.
func Compile(res *load.Resolved, opts Options) (*Compiled, error) {
	c := &compiler{
		res:      res,
		opts:     opts,
		b:        lr.NewGrammarBuilder("hesper"),
		tokvals:  make(map[string]int),
		meta:     make(map[*lr.Rule]*RuleMeta),
		counters: make(map[string]int),
	}
	if err := c.assignTokenValues(); err != nil {
		return nil, err
	}
	start := opts.Start
	if start == "" {
		if len(res.RuleOrder) == 0 {
			return nil, &hesper.GrammarError{Msg: "grammar has no rules"}
		}
		start = res.RuleOrder[0]
	}
	if _, ok := res.Rules[start]; !ok {
		return nil, &hesper.GrammarError{Msg: "undefined start rule " + start}
	}
	for _, name := range res.RuleOrder {
		if err := c.compileRule(res.Rules[name]); err != nil {
			return nil, err
		}
	}
	c.b.SetStart(start)
	g, err := c.b.Grammar()
	if err != nil {
		return nil, err
	}
	ruleMeta := make(map[int]*RuleMeta, len(c.meta))
	for r, m := range c.meta {
		ruleMeta[r.Serial] = m
	}
	terminals, err := c.terminalDefs()
	if err != nil {
		return nil, err
	}
	filtered := make(map[string]bool, len(res.TokenOrder))
	anonymous := make(map[string]bool, len(res.TokenOrder))
	for _, name := range res.TokenOrder {
		filtered[name] = res.Tokens[name].Filtered
		anonymous[name] = len(name) > 7 && name[:7] == "__ANON_"
	}
	return &Compiled{
		Grammar:   g,
		Terminals: terminals,
		Ignores:   res.Ignores,
		Declared:  c.declaredVals(),
		RuleMeta:  ruleMeta,
		Filtered:  filtered,
		Anonymous: anonymous,
	}, nil
}

type compiler struct {
	res      *load.Resolved
	opts     Options
	b        *lr.GrammarBuilder
	tokvals  map[string]int
	nextTok  int
	meta     map[*lr.Rule]*RuleMeta
	counters map[string]int
	repeats  map[string]string
}

// assignTokenValues hands every terminal (declared or pattern-backed) a
// stable, 1-based token value, in declaration order, so lexer and grammar
// agree on numbering regardless of which one is built first.
func (c *compiler) assignTokenValues() error {
	c.nextTok = 1
	for _, name := range c.res.TokenOrder {
		c.tokvals[name] = c.nextTok
		c.nextTok++
	}
	for name := range c.res.Declared {
		if _, ok := c.tokvals[name]; !ok {
			c.tokvals[name] = c.nextTok
			c.nextTok++
		}
	}
	return nil
}

func (c *compiler) declaredVals() map[string]int {
	out := make(map[string]int, len(c.res.Declared))
	for name := range c.res.Declared {
		out[name] = c.tokvals[name]
	}
	return out
}

func (c *compiler) priority(p int) int {
	if p == 0 || c.opts.Priority == PriorityNormal {
		return p
	}
	if c.opts.Priority == PriorityNone {
		return 0
	}
	return -p // PriorityInvert
}

func (c *compiler) compileRule(rule *grammar.RuleDef) error {
	for _, alias := range rule.Expansions {
		rb := c.b.LHS(rule.Name)
		if err := c.appendExpansion(rb, alias.Expansion); err != nil {
			return err
		}
		r := rb.End()
		c.meta[r] = &RuleMeta{
			Rename:    alias.RenameTo,
			Inline:    rule.Inline,
			FilterOut: rule.FilterOut,
			Source:    rule.Name,
		}
	}
	return nil
}

// appendExpansion appends every Expr of exp to rb in order, desugaring
// repetition operators and nested groups into synthetic helper rules as
// needed.
func (c *compiler) appendExpansion(rb *lr.RuleBuilder, exp *grammar.Expansion) error {
	for _, e := range exp.Exprs {
		name, isTerm, tokval, err := c.resolveExpr(e)
		if err != nil {
			return err
		}
		if isTerm {
			rb.T(name, tokval)
		} else {
			rb.N(name)
		}
	}
	return nil
}

// resolveExpr returns the grammar symbol (rule or terminal name) that
// stands for e in the flattened grammar, synthesizing a helper
// non-terminal first if e carries a repetition operator or is a group.
func (c *compiler) resolveExpr(e *grammar.Expr) (name string, isTerm bool, tokval int, err error) {
	atomName, atomIsTerm, atomTok, err := c.resolveAtom(e.Atom)
	if err != nil {
		return "", false, 0, err
	}
	switch e.Op {
	case grammar.RepeatNone:
		return atomName, atomIsTerm, atomTok, nil
	case grammar.RepeatStar:
		return c.synthRepeat(atomName, atomIsTerm, atomTok, 0, -1), false, 0, nil
	case grammar.RepeatPlus:
		return c.synthRepeat(atomName, atomIsTerm, atomTok, 1, -1), false, 0, nil
	case grammar.RepeatOpt:
		return c.synthRepeat(atomName, atomIsTerm, atomTok, 0, 1), false, 0, nil
	case grammar.RepeatRange:
		min, max := e.Min, e.Max
		if max == 0 {
			max = min
		}
		return c.synthRepeat(atomName, atomIsTerm, atomTok, min, max), false, 0, nil
	}
	return "", false, 0, fmt.Errorf("compile: unknown repetition operator %v", e.Op)
}

// resolveAtom returns the symbol name standing for a (non-repeated) atom,
// recursing into groups to synthesize a helper non-terminal for their
// alternatives.
func (c *compiler) resolveAtom(a *grammar.Atom) (name string, isTerm bool, tokval int, err error) {
	switch a.Kind {
	case grammar.AtomRuleRef:
		return a.Name, false, 0, nil
	case grammar.AtomTokenRef:
		tv, ok := c.tokvals[a.Name]
		if !ok {
			return "", false, 0, &hesper.GrammarError{Msg: "undefined terminal " + a.Name}
		}
		return a.Name, true, tv, nil
	case grammar.AtomGroup:
		return c.synthGroup(a.Alts), false, 0, nil
	case grammar.AtomOptionalGroup:
		inner := c.synthGroup(a.Alts)
		return c.synthRepeat(inner, false, 0, 0, 1), false, 0, nil
	case grammar.AtomString, grammar.AtomRegexp:
		// Anonymous string literals outside of a terminal definition are
		// promoted by package load before Compile runs. Regexp literals in
		// rule position are not promoted, so they are rejected here, as is
		// any string literal of a grammar the loader never saw.
		return "", false, 0, &hesper.GrammarError{Msg: "unpromoted literal atom in rule position"}
	}
	return "", false, 0, fmt.Errorf("compile: unknown atom kind %v", a.Kind)
}

// synthGroup flattens a parenthesized "(a | b | c)" group into a fresh
// non-terminal with one production per "|"-branch. Each call mints a
// distinct helper name; the helper is marked Inline and FilterOut so
// package tree splices its children straight into the parent rule's
// children, keeping the synthetic non-terminal invisible in the produced
// tree.
func (c *compiler) synthGroup(alts []*grammar.Expansion) string {
	name := c.fresh("grp")
	for _, exp := range alts {
		rb := c.b.LHS(name)
		if err := c.appendExpansion(rb, exp); err != nil {
			tracer().Errorf("compile: synthesizing group %s: %v", name, err)
		}
		r := rb.End()
		c.meta[r] = &RuleMeta{Inline: true, FilterOut: true, Source: name}
	}
	return name
}

// synthRepeat builds (if not already built for this exact symbol+bounds)
// a left-recursive helper non-terminal implementing element repeated
// min..max times (max < 0 means unbounded), and returns its name.
func (c *compiler) synthRepeat(elemName string, elemIsTerm bool, elemTok, min, max int) string {
	key := fmt.Sprintf("%s_%v_%d_%d", elemName, elemIsTerm, min, max)
	if cached, ok := c.repeatCache()[key]; ok {
		return cached
	}
	name := c.fresh("rep")
	c.repeatCache()[key] = name

	addElem := func(rb *lr.RuleBuilder) {
		if elemIsTerm {
			rb.T(elemName, elemTok)
		} else {
			rb.N(elemName)
		}
	}
	switch {
	case max < 0 && min == 0: // a*
		r1 := c.b.LHS(name).End() // ε
		c.meta[r1] = &RuleMeta{Inline: true, FilterOut: true, Source: name}
		rb2 := c.b.LHS(name)
		rb2.N(name)
		addElem(rb2)
		r2 := rb2.End()
		c.meta[r2] = &RuleMeta{Inline: true, FilterOut: true, Source: name}
	case max < 0 && min == 1: // a+
		rb1 := c.b.LHS(name)
		addElem(rb1)
		r1 := rb1.End()
		c.meta[r1] = &RuleMeta{Inline: true, FilterOut: true, Source: name}
		rb2 := c.b.LHS(name)
		rb2.N(name)
		addElem(rb2)
		r2 := rb2.End()
		c.meta[r2] = &RuleMeta{Inline: true, FilterOut: true, Source: name}
	default: // bounded a~min..max, including a?
		for n := min; n <= max; n++ {
			rb := c.b.LHS(name)
			for i := 0; i < n; i++ {
				addElem(rb)
			}
			r := rb.End()
			c.meta[r] = &RuleMeta{Inline: true, FilterOut: true, Source: name}
		}
	}
	return name
}

func (c *compiler) repeatCache() map[string]string {
	if c.repeats == nil {
		c.repeats = make(map[string]string)
	}
	return c.repeats
}

func (c *compiler) fresh(kind string) string {
	c.counters[kind]++
	return "__" + kind + "_" + strconv.Itoa(c.counters[kind])
}

var metaChars = regexp.MustCompile(`[\\.+*?()|\[\]{}^$]`)

// terminalDefs builds the lex.TerminalDef table for every non-declared
// terminal, translating a TokenDef's Alias list into a single alternation
// pattern (terminals only ever have one Alias in well-formed EBNF+ input,
// since multi-alternative terminals are themselves regex alternations,
// but compile tolerates more than one defensively).
func (c *compiler) terminalDefs() ([]lex.TerminalDef, error) {
	var out []lex.TerminalDef
	for _, name := range c.res.TokenOrder {
		if c.res.Declared[name] {
			continue
		}
		tok := c.res.Tokens[name]
		pattern, err := tokenPattern(tok)
		if err != nil {
			return nil, err
		}
		if c.opts.ValidateRegex {
			if _, err := regexp.Compile(pattern); err != nil {
				return nil, &hesper.GrammarError{Msg: fmt.Sprintf(
					"terminal %s: pattern %q is not a valid regular expression: %v", name, pattern, err)}
			}
		}
		out = append(out, lex.TerminalDef{
			Name:     name,
			Pattern:  pattern,
			TokVal:   c.tokvals[name],
			Priority: c.priority(tok.Priority),
			Literal:  isLiteralTerminal(tok),
		})
	}
	return out, nil
}

// isLiteralTerminal reports whether tok's definition is a single bare
// string literal with no regex metacharacters — spec.md §4.4's
// specificity tie-break: such a terminal outranks a regex terminal of
// equal priority, since a keyword like "if" must win over an IDENT
// pattern that would also match it.
func isLiteralTerminal(tok *grammar.TokenDef) bool {
	if len(tok.Expansions) != 1 {
		return false
	}
	exp := tok.Expansions[0].Expansion
	if len(exp.Exprs) != 1 {
		return false
	}
	e := exp.Exprs[0]
	return e.Op == grammar.RepeatNone && e.Atom.Kind == grammar.AtomString
}

// tokenPattern renders a TokenDef's expansions as one lexmachine pattern:
// string literals become escaped literal patterns, /regex/ atoms pass
// through verbatim, and multiple alternatives join with '|'.
func tokenPattern(tok *grammar.TokenDef) (string, error) {
	var pat string
	for i, alias := range tok.Expansions {
		if i > 0 {
			pat += "|"
		}
		sub, err := expansionPattern(alias.Expansion)
		if err != nil {
			return "", err
		}
		pat += sub
	}
	return pat, nil
}

func expansionPattern(exp *grammar.Expansion) (string, error) {
	var pat string
	for _, e := range exp.Exprs {
		sub, err := atomPattern(e.Atom)
		if err != nil {
			return "", err
		}
		pat += applyOp(sub, e)
	}
	return pat, nil
}

func atomPattern(a *grammar.Atom) (string, error) {
	switch a.Kind {
	case grammar.AtomString:
		return metaChars.ReplaceAllString(a.StringLit, `\$0`), nil
	case grammar.AtomRegexp:
		return a.RegexpLit, nil
	case grammar.AtomGroup, grammar.AtomOptionalGroup:
		var subs []string
		for _, alt := range a.Alts {
			sub, err := expansionPattern(alt)
			if err != nil {
				return "", err
			}
			subs = append(subs, sub)
		}
		pat := "(" + strings.Join(subs, "|") + ")"
		if a.Kind == grammar.AtomOptionalGroup {
			return pat + "?", nil
		}
		return pat, nil
	}
	return "", fmt.Errorf("compile: terminal definitions may not reference rules (atom kind %v)", a.Kind)
}

func applyOp(pat string, e *grammar.Expr) string {
	switch e.Op {
	case grammar.RepeatStar:
		return "(" + pat + ")*"
	case grammar.RepeatPlus:
		return "(" + pat + ")+"
	case grammar.RepeatOpt:
		return "(" + pat + ")?"
	case grammar.RepeatRange:
		max := e.Max
		if max == 0 {
			max = e.Min
		}
		return fmt.Sprintf("(%s){%d,%d}", pat, e.Min, max)
	}
	return pat
}
