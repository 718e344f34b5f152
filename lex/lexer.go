package lex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/hesperix/hesper"
)

// TerminalDef describes one terminal of a grammar: its name (for
// diagnostics), the regular expression lexmachine should match it with
// (for a string-literal terminal, the literal text with its regex
// metacharacters backslash-escaped), the token value the parser tables were built against,
// a priority used to break longest-match ties, and whether the pattern
// is a bare literal (no regex metacharacters) rather than a regular
// expression, which matters for the specificity tie-break below.
type TerminalDef struct {
	Name     string
	Pattern  string
	TokVal   int
	Priority int
	Literal  bool
}

// Mode selects how a Lexer narrows its candidate terminal set.
type Mode int

const (
	// Basic matches the whole, fixed terminal set for the entire input
	// (spec.md §4.4's default mode).
	Basic Mode = iota
	// Contextual restricts each NextToken call to the legal-terminal set
	// its caller passes, compiling one lexmachine sub-lexer per distinct
	// set it is asked for (spec.md §4.4, LALR only).
	Contextual
)

// Option configures a Lexer at construction time.
type Option func(*lexerConfig)

type lexerConfig struct {
	mode Mode
}

// WithMode selects Basic (the default) or Contextual scanning.
func WithMode(m Mode) Option {
	return func(c *lexerConfig) { c.mode = m }
}

// Lexer compiles a set of TerminalDefs into a runnable lexmachine-backed
// scanner. Grounded on the teacher's lr/scanner/lexmach wrapper: each
// terminal becomes one lexmachine pattern with an action that records the
// matching TerminalDef; skip-patterns (from a grammar's %ignore
// directive) are added the same way but their action returns (nil, nil),
// which lexmachine treats as "consume, emit nothing".
//
// In Contextual mode, Lexer additionally holds a signature-keyed cache of
// narrowed sub-lexers (built lazily, one per distinct legal-terminal set
// a caller asks for), since lexmachine compiles a DFA per pattern set and
// a caller legitimately revisits the same set many times over a parse.
type Lexer struct {
	mode      Mode
	terminals []TerminalDef // canonical order: priority desc, literal-first, declaration order
	byTok     map[int]*TerminalDef
	byName    map[string]*TerminalDef
	ignore    []string
	base      *lexmachine.Lexer
	subs      map[string]*lexmachine.Lexer
}

// NewLexer sorts terminals by (priority desc, specificity desc,
// declaration order) — spec.md §4.4's tie-break rule, where specificity
// means a Literal terminal outranks a regex terminal at equal priority —
// and compiles ignorePatterns and the sorted terminals into a ready-to-scan
// Lexer.
func NewLexer(terminals []TerminalDef, ignorePatterns []string, opts ...Option) (*Lexer, error) {
	cfg := lexerConfig{mode: Basic}
	for _, opt := range opts {
		opt(&cfg)
	}
	sorted := make([]TerminalDef, len(terminals))
	copy(sorted, terminals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].Literal && !sorted[j].Literal
	})
	l := &Lexer{
		mode:      cfg.mode,
		terminals: sorted,
		byTok:     make(map[int]*TerminalDef, len(sorted)),
		byName:    make(map[string]*TerminalDef, len(sorted)),
		ignore:    ignorePatterns,
		subs:      make(map[string]*lexmachine.Lexer),
	}
	for i := range sorted {
		t := &sorted[i]
		l.byTok[t.TokVal] = t
		l.byName[t.Name] = t
	}
	base, err := buildMachine(sorted, ignorePatterns)
	if err != nil {
		return nil, err
	}
	l.base = base
	return l, nil
}

// buildMachine compiles terminals (already in their final tie-break
// order) and ignorePatterns into a lexmachine.Lexer. Patterns are added
// in the order given, which is what makes declaration order (the last
// tie-break component) fall out of lexmachine's own longest-match-then
// first-added-wins behavior.
func buildMachine(terminals []TerminalDef, ignorePatterns []string) (*lexmachine.Lexer, error) {
	lx := lexmachine.NewLexer()
	for i := range terminals {
		t := terminals[i]
		lx.Add([]byte(t.Pattern), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
			return m, nil
		})
	}
	for _, pat := range ignorePatterns {
		lx.Add([]byte(pat), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
			return nil, nil
		})
	}
	if err := lx.Compile(); err != nil {
		return nil, fmt.Errorf("lex: compiling terminal patterns: %w", err)
	}
	return lx, nil
}

// signature canonicalizes a legal-terminal set into a cache key: sorted,
// since callers may pass the same set in different orders (map
// iteration, different ExpectedTerminals call sites) and those must
// share one compiled sub-lexer rather than each growing their own.
func signature(legal []hesper.TokType) string {
	names := make([]int, len(legal))
	for i, tt := range legal {
		names[i] = int(tt)
	}
	sort.Ints(names)
	var b strings.Builder
	for i, n := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", n)
	}
	return b.String()
}

// subLexer returns (building and caching if necessary) the lexmachine
// lexer restricted to legal, preserving the same tie-break order as the
// base lexer since it is simply a filtered view of l.terminals.
func (l *Lexer) subLexer(legal []hesper.TokType) (*lexmachine.Lexer, error) {
	sig := signature(legal)
	if lx, ok := l.subs[sig]; ok {
		return lx, nil
	}
	want := make(map[int]bool, len(legal))
	for _, tt := range legal {
		want[int(tt)] = true
	}
	var subset []TerminalDef
	for _, t := range l.terminals {
		if want[t.TokVal] {
			subset = append(subset, t)
		}
	}
	lx, err := buildMachine(subset, l.ignore)
	if err != nil {
		return nil, err
	}
	l.subs[sig] = lx
	return lx, nil
}

// Scan creates a Tokenizer over input, ready to be driven by a parser.
func (l *Lexer) Scan(input []byte) (Tokenizer, error) {
	scanner, err := l.base.Scanner(input)
	if err != nil {
		return nil, fmt.Errorf("lex: creating scanner: %w", err)
	}
	return &machineTokenizer{lexer: l, scanner: scanner, input: input}, nil
}

type machineTokenizer struct {
	lexer   *Lexer
	scanner *lexmachine.Scanner // base-mode, persistent across the whole input
	input   []byte
	offset  uint64 // bytes consumed so far; advanced by nextBase and nextContextual
	line    int
	onError func(error)
}

func (mt *machineTokenizer) SetErrorHandler(f func(error)) {
	mt.onError = f
}

// NextToken pulls the next token, ignoring matches whose action produced
// a nil value (skip-patterns). In Basic mode legal is ignored and the
// persistent base scanner is reused across the whole input. In
// Contextual mode a fresh scanner is created over the unconsumed input
// tail against the sub-lexer compiled for legal, every call — lexmachine
// has no API to narrow an in-progress scan, so each narrowed call
// necessarily restarts scanning from the current offset.
func (mt *machineTokenizer) NextToken(legal []hesper.TokType) hesper.Token {
	if mt.lexer.mode == Contextual && legal != nil {
		return mt.nextContextual(legal)
	}
	return mt.nextBase()
}

func (mt *machineTokenizer) nextBase() hesper.Token {
	for {
		tok, err, eof := mt.scanner.Next()
		if eof {
			return eofToken(mt.currentPosition(), uint64(len(mt.input)))
		}
		if err != nil {
			if me, ok := err.(*machines.UnconsumedInput); ok {
				mt.reportError(&hesper.UnexpectedCharacters{
					At:     hesper.Position{Line: mt.line + 1, Column: me.StartColumn},
					Offset: uint64(me.StartPos),
					Seq:    truncate(string(mt.input[me.StartPos:me.ScanPos]), 24),
				})
				continue
			}
			mt.reportError(err)
			continue
		}
		if tok == nil { // skip pattern (whitespace, comments, %ignore)
			continue
		}
		m := tok.(*machines.Match)
		mt.offset = uint64(m.StartPos + len(m.Bytes))
		return &token{
			typ:    hesper.TokType(mt.lexer.byTok[m.TC].TokVal),
			lexeme: string(m.Bytes),
			value:  m.Bytes,
			span:   hesper.Span{uint64(m.StartPos), uint64(m.StartPos + len(m.Bytes))},
			start:  hesper.Position{Line: m.StartLine, Column: m.StartColumn},
			end:    hesper.Position{Line: m.EndLine, Column: m.EndColumn},
		}
	}
}

// nextContextual scans a fresh slice starting at mt.offset against the
// sub-lexer restricted to legal, translating the resulting match's
// scanner-relative positions back into absolute ones via mt.offset and
// linePosition (since a fresh lexmachine.Scanner always starts its own
// line/column counting at 1, regardless of where in the original input
// its slice begins).
func (mt *machineTokenizer) nextContextual(legal []hesper.TokType) hesper.Token {
	lx, err := mt.lexer.subLexer(legal)
	if err != nil {
		mt.reportError(err)
		return eofToken(mt.currentPosition(), mt.offset)
	}
	tail := mt.input[mt.offset:]
	scanner, err := lx.Scanner(tail)
	if err != nil {
		mt.reportError(err)
		return eofToken(mt.currentPosition(), mt.offset)
	}
	for {
		tok, serr, eof := scanner.Next()
		if eof {
			return eofToken(linePosition(mt.input, mt.offset), mt.offset)
		}
		if serr != nil {
			if me, ok := serr.(*machines.UnconsumedInput); ok {
				mt.reportError(&hesper.UnexpectedCharacters{
					At:     linePosition(mt.input, mt.offset+uint64(me.StartPos)),
					Offset: mt.offset + uint64(me.StartPos),
					Seq:    truncate(string(tail[me.StartPos:me.ScanPos]), 24),
				})
				continue
			}
			mt.reportError(serr)
			continue
		}
		if tok == nil {
			continue
		}
		m := tok.(*machines.Match)
		start := mt.offset + uint64(m.StartPos)
		end := mt.offset + uint64(m.StartPos+len(m.Bytes))
		mt.offset = end
		return &token{
			typ:    hesper.TokType(mt.lexer.byTok[m.TC].TokVal),
			lexeme: string(m.Bytes),
			value:  m.Bytes,
			span:   hesper.Span{start, end},
			start:  linePosition(mt.input, start),
			end:    linePosition(mt.input, end),
		}
	}
}

// linePosition computes the 1-based line and column of offset within
// input by counting newlines, since a freshly created lexmachine.Scanner
// over a sub-slice always resets its own line/column tracking to (1,1).
func linePosition(input []byte, offset uint64) hesper.Position {
	line := 1
	col := 1
	for i := uint64(0); i < offset && i < uint64(len(input)); i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return hesper.Position{Line: line, Column: col}
}

func (mt *machineTokenizer) currentPosition() hesper.Position {
	return hesper.Position{Line: mt.line + 1, Column: 1}
}

func (mt *machineTokenizer) reportError(err error) {
	if mt.onError != nil {
		mt.onError(err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
