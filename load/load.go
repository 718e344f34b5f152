package load

import (
	"strconv"
	"strings"

	"github.com/hesperix/hesper"
	"github.com/hesperix/hesper/grammar"
)

// Loader supplies the grammar.File named by a dotted %import path. File
// discovery and on-disk import resolution are explicitly out of scope
// (spec.md §1) — the caller wires an implementation, e.g. backed by an
// embedded stdlib of common terminals, or a filesystem walker.
type Loader interface {
	Load(path []string) (*grammar.File, error)
}

// Resolved is a grammar.File with %import/%declare/%override/%extend
// applied, and anonymous string literals promoted to terminals. It is
// the input to package compile.
type Resolved struct {
	Rules    map[string]*grammar.RuleDef
	Tokens   map[string]*grammar.TokenDef
	Declared map[string]bool // externally-supplied terminals, no regex
	Ignores  []string
	RuleOrder  []string // declaration order, first entry is the default start symbol
	TokenOrder []string
}

// Resolve resolves file against loader, producing a Resolved grammar
// ready for lowering. Cyclic %import chains are rejected with a
// *hesper.GrammarError.
func Resolve(file *grammar.File, loader Loader) (*Resolved, error) {
	return resolve(file, loader, map[string]bool{})
}

func resolve(file *grammar.File, loader Loader, visited map[string]bool) (*Resolved, error) {
	r := &Resolved{
		Rules:    make(map[string]*grammar.RuleDef),
		Tokens:   make(map[string]*grammar.TokenDef),
		Declared: make(map[string]bool),
	}
	r.mergeFile(file)
	for _, imp := range file.Imports {
		if err := r.resolveImport(imp, loader, visited); err != nil {
			return nil, err
		}
	}
	for _, d := range file.Declares {
		for _, n := range d.Names {
			r.Declared[n] = true
		}
	}
	for _, o := range file.Overrides {
		if o.Rule != nil {
			if _, ok := r.Rules[o.Rule.Name]; !ok {
				return nil, &hesper.GrammarError{Msg: "%override of undefined rule " + o.Rule.Name}
			}
			r.Rules[o.Rule.Name] = o.Rule
		}
		if o.Token != nil {
			if _, ok := r.Tokens[o.Token.Name]; !ok {
				return nil, &hesper.GrammarError{Msg: "%override of undefined terminal " + o.Token.Name}
			}
			r.Tokens[o.Token.Name] = o.Token
		}
	}
	for _, e := range file.Extends {
		if e.Rule != nil {
			existing, ok := r.Rules[e.Rule.Name]
			if !ok {
				return nil, &hesper.GrammarError{Msg: "%extend of undefined rule " + e.Rule.Name}
			}
			existing.Expansions = append(existing.Expansions, e.Rule.Expansions...)
		}
		if e.Token != nil {
			existing, ok := r.Tokens[e.Token.Name]
			if !ok {
				return nil, &hesper.GrammarError{Msg: "%extend of undefined terminal " + e.Token.Name}
			}
			existing.Expansions = append(existing.Expansions, e.Token.Expansions...)
		}
	}
	r.Ignores = append(r.Ignores, file.Ignores...)
	r.promoteLiterals()
	return r, nil
}

func (r *Resolved) mergeFile(file *grammar.File) {
	for _, rule := range file.Rules {
		if _, exists := r.Rules[rule.Name]; !exists {
			r.RuleOrder = append(r.RuleOrder, rule.Name)
		}
		r.Rules[rule.Name] = rule
	}
	for _, tok := range file.Tokens {
		if _, exists := r.Tokens[tok.Name]; !exists {
			r.TokenOrder = append(r.TokenOrder, tok.Name)
		}
		r.Tokens[tok.Name] = tok
	}
}

// resolveImport resolves one %import statement. `%import common.NUMBER`
// (no explicit name list) treats the last path segment as the single
// imported name and the rest as the module path; `%import common (A, B ->
// C)` imports several names from one module.
func (r *Resolved) resolveImport(imp *grammar.ImportStmt, loader Loader, visited map[string]bool) error {
	modPath := imp.Path
	names := imp.Names
	if len(names) == 0 {
		if len(modPath) == 0 {
			return &hesper.GrammarError{Msg: "empty %import path"}
		}
		last := modPath[len(modPath)-1]
		modPath = modPath[:len(modPath)-1]
		names = []grammar.ImportedName{{Name: last, RenameTo: last}}
	}
	key := strings.Join(modPath, ".")
	if visited[key] {
		return &hesper.GrammarError{Msg: "cyclic %import of " + key}
	}
	visited[key] = true
	defer delete(visited, key)

	f, err := loader.Load(modPath)
	if err != nil {
		return &hesper.GrammarError{Msg: "%import " + key + ": " + err.Error()}
	}
	sub, err := resolve(f, loader, visited)
	if err != nil {
		return err
	}
	for _, n := range names {
		if rule, ok := sub.Rules[n.Name]; ok {
			renamed := *rule
			renamed.Name = n.RenameTo
			r.Rules[n.RenameTo] = &renamed
			r.RuleOrder = append(r.RuleOrder, n.RenameTo)
			continue
		}
		if tok, ok := sub.Tokens[n.Name]; ok {
			renamed := *tok
			renamed.Name = n.RenameTo
			r.Tokens[n.RenameTo] = &renamed
			r.TokenOrder = append(r.TokenOrder, n.RenameTo)
			continue
		}
		return &hesper.GrammarError{Msg: "%import " + key + ": undefined name " + n.Name}
	}
	return nil
}

// promoteLiterals walks every rule's expansions, replacing anonymous
// string-literal atoms with references to a synthesized terminal.
// Identical literals across rules collapse to a single terminal; its
// priority exceeds every user terminal unless a user terminal already
// matches the literal exactly (spec.md §4.2).
func (r *Resolved) promoteLiterals() {
	const anonPriority = 1 << 20
	seen := make(map[string]string) // literal text -> terminal name
	for _, rule := range r.Rules {
		for _, alias := range rule.Expansions {
			r.promoteInExpansion(alias.Expansion, seen, anonPriority)
		}
	}
}

func (r *Resolved) promoteInExpansion(exp *grammar.Expansion, seen map[string]string, anonPriority int) {
	if exp == nil {
		return
	}
	for _, e := range exp.Exprs {
		r.promoteInAtom(e.Atom, seen, anonPriority)
	}
}

func (r *Resolved) promoteInAtom(a *grammar.Atom, seen map[string]string, anonPriority int) {
	if a == nil {
		return
	}
	switch a.Kind {
	case grammar.AtomGroup, grammar.AtomOptionalGroup:
		for _, alt := range a.Alts {
			r.promoteInExpansion(alt, seen, anonPriority)
		}
		return
	case grammar.AtomString:
		name, already := seen[a.StringLit]
		if !already {
			name = anonTerminalName(a.StringLit)
			if existing, ok := r.exactLiteralMatch(a.StringLit); ok {
				name = existing
			} else {
				for base, n := name, 2; r.Tokens[name] != nil; n++ {
					name = base + "_" + strconv.Itoa(n)
				}
				r.Tokens[name] = &grammar.TokenDef{
					Name:     name,
					Filtered: false,
					Priority: anonPriority,
					Expansions: []*grammar.Alias{{
						Expansion: &grammar.Expansion{Exprs: []*grammar.Expr{{
							Atom: &grammar.Atom{Kind: grammar.AtomString, StringLit: a.StringLit, CaseInsens: a.CaseInsens},
						}}},
					}},
				}
				r.TokenOrder = append(r.TokenOrder, name)
			}
			seen[a.StringLit] = name
		}
		a.Kind = grammar.AtomTokenRef
		a.Name = name
	}
}

// exactLiteralMatch reports whether a user-declared terminal already
// matches literal exactly as its sole production, returning its name.
func (r *Resolved) exactLiteralMatch(literal string) (string, bool) {
	for _, name := range r.TokenOrder {
		tok := r.Tokens[name]
		if tok.Priority == (1<<20) {
			continue // skip already-promoted anonymous terminals
		}
		if len(tok.Expansions) == 1 && len(tok.Expansions[0].Expansion.Exprs) == 1 {
			atom := tok.Expansions[0].Expansion.Exprs[0].Atom
			if atom.Kind == grammar.AtomString && atom.StringLit == literal {
				return name, true
			}
		}
	}
	return "", false
}

func anonTerminalName(literal string) string {
	var b strings.Builder
	b.WriteString("__ANON_")
	for _, r := range literal {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
