package grammar

import (
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/hesperix/hesper"
)

// token kinds recognized while lexing EBNF+ source itself. These are
// distinct from the token values a *compiled user grammar* assigns to its
// own terminals (package lex, package lr) — this is the fixed, built-in
// lexical layer of the meta-grammar.
const (
	tokRULE = iota + 1
	tokTOKEN
	tokSTRING
	tokREGEXP
	tokNUMBER
	tokDOTTEDPATH
	tokLPAREN
	tokRPAREN
	tokLBRACKET
	tokRBRACKET
	tokLBRACE
	tokRBRACE
	tokCOLON
	tokDOT
	tokPIPE
	tokARROW
	tokQUESTION
	tokSTAR
	tokPLUS
	tokTILDE
	tokDOTDOT
	tokCOMMA
	tokPctIMPORT
	tokPctIGNORE
	tokPctDECLARE
	tokPctOVERRIDE
	tokPctEXTEND
	tokNEWLINE
)

type metaToken struct {
	kind int
	text string
	pos  hesper.Position
	span hesper.Span
}

// metaLexer tokenizes EBNF+ source text, grounded in the teacher's
// lr/scanner/lexmach wrapper: one lexmachine DFA over the whole fixed
// token set of the meta-grammar.
type metaLexer struct {
	scanner *lexmachine.Scanner
	peeked  *metaToken
}

var metaLex *lexmachine.Lexer

func init() {
	lx := lexmachine.NewLexer()
	add := func(kind int, pattern string) {
		k := kind
		lx.Add([]byte(pattern), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
			return &metaToken{kind: k, text: string(m.Bytes),
				pos:  hesper.Position{Line: m.StartLine, Column: m.StartColumn},
				span: hesper.Span{uint64(m.StartPos), uint64(m.StartPos + len(m.Bytes))},
			}, nil
		})
	}
	add(tokPctIMPORT, `%import`)
	add(tokPctIGNORE, `%ignore`)
	add(tokPctDECLARE, `%declare`)
	add(tokPctOVERRIDE, `%override`)
	add(tokPctEXTEND, `%extend`)
	add(tokRULE, `\??_?[a-z][a-zA-Z0-9_]*`)
	add(tokTOKEN, `_?[A-Z][A-Z0-9_]*`)
	add(tokSTRING, `"([^"\\]|\\.)*"i?`)
	add(tokREGEXP, `/([^/\\]|\\.)*/`)
	add(tokNUMBER, `[0-9]+`)
	add(tokDOTDOT, `\.\.`)
	add(tokARROW, `->`)
	add(tokLPAREN, `\(`)
	add(tokRPAREN, `\)`)
	add(tokLBRACKET, `\[`)
	add(tokRBRACKET, `\]`)
	add(tokLBRACE, `\{`)
	add(tokRBRACE, `\}`)
	add(tokCOLON, `:`)
	add(tokDOT, `\.`)
	add(tokPIPE, `\|`)
	// A "|" opening a continuation line, together with the line break(s)
	// before it, so that alternatives may be listed one per line.
	add(tokPIPE, `\n[ \t\r\n]*\|`)
	add(tokQUESTION, `\?`)
	add(tokSTAR, `\*`)
	add(tokPLUS, `\+`)
	add(tokTILDE, `~`)
	add(tokCOMMA, `,`)
	lx.Add([]byte(`//[^\n]*`), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return nil, nil
	})
	lx.Add([]byte(`[ \t\r]+`), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return nil, nil
	})
	lx.Add([]byte(`\n`), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return &metaToken{kind: tokNEWLINE, text: "\n",
			pos: hesper.Position{Line: m.StartLine, Column: m.StartColumn}}, nil
	})
	if err := lx.Compile(); err != nil {
		panic("grammar: compiling meta-grammar lexer: " + err.Error())
	}
	metaLex = lx
}

func newMetaLexer(src []byte) (*metaLexer, error) {
	sc, err := metaLex.Scanner(src)
	if err != nil {
		return nil, err
	}
	return &metaLexer{scanner: sc}, nil
}

// next returns the next token, or nil at end of input.
func (ml *metaLexer) next() (*metaToken, error) {
	if ml.peeked != nil {
		t := ml.peeked
		ml.peeked = nil
		return t, nil
	}
	for {
		tok, err, eof := ml.scanner.Next()
		if eof {
			return nil, nil
		}
		if err != nil {
			if me, ok := err.(*machines.UnconsumedInput); ok {
				return nil, &hesper.GrammarSyntaxError{
					Msg: "unexpected character",
					At:  hesper.Position{Line: me.StartLine, Column: me.StartColumn},
				}
			}
			return nil, err
		}
		if tok == nil {
			continue // skip pattern (comment, whitespace)
		}
		return tok.(*metaToken), nil
	}
}

func (ml *metaLexer) peek() (*metaToken, error) {
	if ml.peeked == nil {
		t, err := ml.next()
		if err != nil {
			return nil, err
		}
		ml.peeked = t
	}
	return ml.peeked, nil
}
