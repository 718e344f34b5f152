package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hesperix/hesper"
)

// Parse parses EBNF+ source text into a File AST (component C2). It
// returns a *hesper.GrammarSyntaxError wrapped as error on the first
// malformed construct encountered; per spec §7, grammar-construction
// failures are fatal and surface immediately, with no recovery attempted.
func Parse(src []byte) (*File, error) {
	lex, err := newMetaLexer(src)
	if err != nil {
		return nil, err
	}
	p := &parser{lex: lex, file: &File{}}
	if err := p.parseFile(); err != nil {
		return nil, err
	}
	return p.file, nil
}

type parser struct {
	lex  *metaLexer
	file *File
}

func (p *parser) fail(at hesper.Position, format string, a ...interface{}) error {
	return &hesper.GrammarSyntaxError{Msg: fmt.Sprintf(format, a...), At: at}
}

func (p *parser) parseFile() error {
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return err
		}
		if tok == nil {
			return nil
		}
		if tok.kind == tokNEWLINE {
			p.lex.next()
			continue
		}
		if err := p.parseItem(tok); err != nil {
			return err
		}
	}
}

func (p *parser) parseItem(lookahead *metaToken) error {
	switch lookahead.kind {
	case tokPctIMPORT:
		stmt, err := p.parseImport()
		if err != nil {
			return err
		}
		p.file.Imports = append(p.file.Imports, stmt)
	case tokPctIGNORE:
		p.lex.next()
		tok, err := p.expect(tokTOKEN, tokSTRING, tokREGEXP)
		if err != nil {
			return err
		}
		pattern := tok.text
		if tok.kind == tokSTRING || tok.kind == tokREGEXP {
			pattern = tok.text[1 : len(tok.text)-1]
		}
		p.file.Ignores = append(p.file.Ignores, pattern)
	case tokPctDECLARE:
		stmt, err := p.parseDeclare()
		if err != nil {
			return err
		}
		p.file.Declares = append(p.file.Declares, stmt)
	case tokPctOVERRIDE:
		p.lex.next()
		return p.parseOverrideOrExtend(true)
	case tokPctEXTEND:
		p.lex.next()
		return p.parseOverrideOrExtend(false)
	case tokRULE:
		rule, err := p.parseRule()
		if err != nil {
			return err
		}
		p.file.Rules = append(p.file.Rules, rule)
	case tokTOKEN:
		def, err := p.parseToken()
		if err != nil {
			return err
		}
		p.file.Tokens = append(p.file.Tokens, def)
	default:
		return p.fail(lookahead.pos, "unexpected token %q, expected a rule, a terminal, or a %%-statement", lookahead.text)
	}
	return nil
}

func (p *parser) parseImport() (*ImportStmt, error) {
	start, _ := p.lex.next() // consume %import
	var segs []string
	for {
		name, err := p.expect(tokRULE, tokTOKEN)
		if err != nil {
			return nil, err
		}
		segs = append(segs, name.text)
		nxt, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if nxt != nil && nxt.kind == tokDOT {
			p.lex.next()
			continue
		}
		break
	}
	stmt := &ImportStmt{Path: segs, Span: start.span}
	nxt, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if nxt != nil && nxt.kind == tokLPAREN {
		p.lex.next()
		for {
			name, err := p.expect(tokRULE, tokTOKEN)
			if err != nil {
				return nil, err
			}
			renameTo := name.text
			peeked, err := p.lex.peek()
			if err != nil {
				return nil, err
			}
			if peeked != nil && peeked.kind == tokARROW {
				p.lex.next()
				renamed, err := p.expect(tokRULE, tokTOKEN)
				if err != nil {
					return nil, err
				}
				renameTo = renamed.text
			}
			stmt.Names = append(stmt.Names, ImportedName{Name: name.text, RenameTo: renameTo})
			peeked, err = p.lex.peek()
			if err != nil {
				return nil, err
			}
			if peeked != nil && peeked.kind == tokCOMMA {
				p.lex.next()
				continue
			}
			break
		}
		if _, err := p.expect(tokRPAREN); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *parser) parseDeclare() (*DeclareStmt, error) {
	start, _ := p.lex.next() // consume %declare
	stmt := &DeclareStmt{Span: start.span}
	for {
		name, err := p.expect(tokTOKEN)
		if err != nil {
			return nil, err
		}
		stmt.Names = append(stmt.Names, name.text)
		nxt, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if nxt == nil || nxt.kind != tokTOKEN {
			break
		}
	}
	return stmt, nil
}

func (p *parser) parseOverrideOrExtend(isOverride bool) error {
	tok, err := p.lex.peek()
	if err != nil {
		return err
	}
	if tok == nil {
		return p.fail(hesper.Position{}, "expected rule or terminal name after %%override/%%extend")
	}
	if tok.kind == tokRULE {
		rule, err := p.parseRule()
		if err != nil {
			return err
		}
		if isOverride {
			p.file.Overrides = append(p.file.Overrides, &OverrideStmt{Rule: rule})
		} else {
			p.file.Extends = append(p.file.Extends, &ExtendStmt{Rule: rule})
		}
		return nil
	}
	def, err := p.parseToken()
	if err != nil {
		return err
	}
	if isOverride {
		p.file.Overrides = append(p.file.Overrides, &OverrideStmt{Token: def})
	} else {
		p.file.Extends = append(p.file.Extends, &ExtendStmt{Token: def})
	}
	return nil
}

func (p *parser) parseRule() (*RuleDef, error) {
	nameTok, _ := p.lex.next()
	name := nameTok.text
	r := &RuleDef{Span: nameTok.span}
	if strings.HasPrefix(name, "?") {
		r.Inline = true
		name = name[1:]
	}
	if strings.HasPrefix(name, "_") {
		r.FilterOut = true
		name = name[1:]
	}
	r.Name = name
	if _, err := p.expect(tokCOLON, tokDOT); err != nil {
		return nil, err
	}
	exps, err := p.parseExpansions()
	if err != nil {
		return nil, err
	}
	r.Expansions = exps
	return r, nil
}

func (p *parser) parseToken() (*TokenDef, error) {
	nameTok, _ := p.lex.next()
	name := nameTok.text
	t := &TokenDef{Span: nameTok.span}
	if strings.HasPrefix(name, "_") {
		t.Filtered = true
		name = name[1:]
	}
	t.Name = name
	peeked, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if peeked != nil && peeked.kind == tokDOT {
		// explicit priority: NAME.N: ...
		p.lex.next()
		numTok, err := p.expect(tokNUMBER)
		if err != nil {
			return nil, err
		}
		n, _ := strconv.Atoi(numTok.text)
		t.Priority = n
	}
	if _, err := p.expect(tokCOLON); err != nil {
		return nil, err
	}
	exps, err := p.parseExpansions()
	if err != nil {
		return nil, err
	}
	t.Expansions = exps
	return t, nil
}

// expansions : alias ("|" alias)*
func (p *parser) parseExpansions() ([]*Alias, error) {
	var aliases []*Alias
	for {
		alias, err := p.parseAlias()
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, alias)
		nxt, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if nxt != nil && nxt.kind == tokPIPE {
			p.lex.next()
			continue
		}
		break
	}
	return aliases, nil
}

// alias : expansion ["->" RULE]
func (p *parser) parseAlias() (*Alias, error) {
	exp, err := p.parseExpansion()
	if err != nil {
		return nil, err
	}
	a := &Alias{Expansion: exp}
	nxt, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if nxt != nil && nxt.kind == tokARROW {
		p.lex.next()
		name, err := p.expect(tokRULE)
		if err != nil {
			return nil, err
		}
		a.RenameTo = name.text
	}
	return a, nil
}

// expansion : (expr)*
func (p *parser) parseExpansion() (*Expansion, error) {
	exp := &Expansion{}
	for {
		nxt, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if nxt == nil || !startsAtom(nxt.kind) {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exp.Exprs = append(exp.Exprs, e)
	}
	return exp, nil
}

func startsAtom(kind int) bool {
	switch kind {
	case tokLPAREN, tokLBRACKET, tokSTRING, tokREGEXP, tokRULE, tokTOKEN:
		return true
	}
	return false
}

// expr : atom ["?" | "*" | "+" | "~" NUMBER [".." NUMBER]]
func (p *parser) parseExpr() (*Expr, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	e := &Expr{Atom: atom}
	nxt, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if nxt == nil {
		return e, nil
	}
	switch nxt.kind {
	case tokQUESTION:
		p.lex.next()
		e.Op = RepeatOpt
	case tokSTAR:
		p.lex.next()
		e.Op = RepeatStar
	case tokPLUS:
		p.lex.next()
		e.Op = RepeatPlus
	case tokTILDE:
		p.lex.next()
		e.Op = RepeatRange
		minTok, err := p.expect(tokNUMBER)
		if err != nil {
			return nil, err
		}
		e.Min, _ = strconv.Atoi(minTok.text)
		e.Max = e.Min
		peeked, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if peeked != nil && peeked.kind == tokDOTDOT {
			p.lex.next()
			maxTok, err := p.expect(tokNUMBER)
			if err != nil {
				return nil, err
			}
			e.Max, _ = strconv.Atoi(maxTok.text)
		}
	}
	return e, nil
}

// atom : "(" expansions ")" | "[" expansions "]" | STRING ["i"] | REGEXP | RULE | TOKEN
func (p *parser) parseAtom() (*Atom, error) {
	tok, _ := p.lex.next()
	switch tok.kind {
	case tokLPAREN:
		exps, err := p.parseExpansions()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRPAREN); err != nil {
			return nil, err
		}
		return &Atom{Kind: AtomGroup, Alts: aliasExpansions(exps), Span: tok.span}, nil
	case tokLBRACKET:
		exps, err := p.parseExpansions()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRBRACKET); err != nil {
			return nil, err
		}
		return &Atom{Kind: AtomOptionalGroup, Alts: aliasExpansions(exps), Span: tok.span}, nil
	case tokSTRING:
		text := tok.text
		caseInsens := strings.HasSuffix(text, `"i`)
		if caseInsens {
			text = text[:len(text)-1]
		}
		unquoted := text
		if len(unquoted) >= 2 {
			unquoted = unquoted[1 : len(unquoted)-1]
		}
		return &Atom{Kind: AtomString, StringLit: unquoted, CaseInsens: caseInsens, Span: tok.span}, nil
	case tokREGEXP:
		pat := tok.text
		if len(pat) >= 2 {
			pat = pat[1 : len(pat)-1]
		}
		return &Atom{Kind: AtomRegexp, RegexpLit: pat, Span: tok.span}, nil
	case tokRULE:
		return &Atom{Kind: AtomRuleRef, Name: tok.text, Span: tok.span}, nil
	case tokTOKEN:
		return &Atom{Kind: AtomTokenRef, Name: tok.text, Span: tok.span}, nil
	default:
		return nil, p.fail(tok.pos, "unexpected token %q in expansion", tok.text)
	}
}

// aliasExpansions discards a group's per-alternative aliases (a "-> name"
// inside a group has no target to rename — only a whole rule's top-level
// alias does), keeping one Expansion per "|"-branch.
func aliasExpansions(aliases []*Alias) []*Expansion {
	exps := make([]*Expansion, len(aliases))
	for i, a := range aliases {
		exps[i] = a.Expansion
	}
	return exps
}

func (p *parser) expect(kinds ...int) (*metaToken, error) {
	tok, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, p.fail(hesper.Position{}, "unexpected end of grammar source")
	}
	for _, k := range kinds {
		if tok.kind == k {
			return tok, nil
		}
	}
	return nil, p.fail(tok.pos, "unexpected token %q", tok.text)
}
