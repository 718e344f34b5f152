package grammar

import "github.com/hesperix/hesper"

// File is the parsed, unresolved form of a grammar source: the direct
// result of component C2, before package load has resolved %import,
// %declare, %override and %extend against it.
type File struct {
	Rules      []*RuleDef
	Tokens     []*TokenDef
	Imports    []*ImportStmt
	Declares   []*DeclareStmt
	Overrides  []*OverrideStmt
	Extends    []*ExtendStmt
	Ignores    []string // %ignore operands: a terminal name, or a string/regexp literal's body
}

// RuleDef is a single `name: expansions` or `name.: expansions` rule
// definition. Inline and FilterOut mirror the leading `?`/`_` sigils on
// the rule name (§6 of the grammar language).
type RuleDef struct {
	Name      string
	Inline    bool // leading '?': inline-if-single-child
	FilterOut bool // leading '_': children spliced into parent
	Expansions []*Alias
	Span      hesper.Span
}

// TokenDef is a `NAME: expansions` terminal definition. Filtered mirrors a
// leading `_` on the terminal name (dropped from the token stream).
type TokenDef struct {
	Name     string
	Filtered bool
	Priority int // explicit priority annotation, 0 if none given
	Expansions []*Alias
	Span     hesper.Span
}

// Alias is one `|`-separated production of a rule or token, optionally
// renamed via `-> NAME`.
type Alias struct {
	Expansion *Expansion
	RenameTo  string // set if "-> RULE" was present
}

// Expansion is an ordered sequence of Expr, the right-hand side of a
// single Alias.
type Expansion struct {
	Exprs []*Expr
}

// Expr is an Atom with an optional repetition/range suffix.
type Expr struct {
	Atom *Atom
	Op   RepeatOp
	Min  int // for '~n..m' and '~n'
	Max  int
}

// RepeatOp names the repetition/optionality suffix applied to an atom.
type RepeatOp int

const (
	RepeatNone RepeatOp = iota
	RepeatStar          // a*
	RepeatPlus          // a+
	RepeatOpt           // a?
	RepeatRange         // a~n..m or a~n
)

// AtomKind discriminates the variants of Atom (§9: "closed tagged union,
// pattern-match exhaustively").
type AtomKind int

const (
	AtomGroup AtomKind = iota
	AtomOptionalGroup
	AtomString
	AtomRegexp
	AtomRuleRef
	AtomTokenRef
)

// Atom is one alternative of the grammar's `atom` production.
type Atom struct {
	Kind       AtomKind
	Alts       []*Expansion // AtomGroup / AtomOptionalGroup: one entry per "|"-branch
	StringLit  string       // AtomString
	CaseInsens bool         // AtomString with trailing "i"
	RegexpLit  string       // AtomRegexp, pattern text without surrounding slashes
	Name       string       // AtomRuleRef / AtomTokenRef
	Span       hesper.Span
}

// ImportStmt is a parsed `%import path.module (NAME, NAME2 -> RENAMED)`.
type ImportStmt struct {
	Path    []string // dotted path segments
	Names   []ImportedName
	Span    hesper.Span
}

// ImportedName is one entry of an %import's optional name list.
type ImportedName struct {
	Name     string
	RenameTo string // equal to Name if no "-> RENAMED" was given
}

// DeclareStmt is a parsed `%declare NAME+`.
type DeclareStmt struct {
	Names []string
	Span  hesper.Span
}

// OverrideStmt is a parsed `%override NAME: ...`, replacing an earlier
// rule or token definition of the same name.
type OverrideStmt struct {
	Rule  *RuleDef  // set if NAME is lowercase
	Token *TokenDef // set if NAME is uppercase
}

// ExtendStmt is a parsed `%extend NAME: ...`, adding alternatives to an
// earlier rule or token definition.
type ExtendStmt struct {
	Rule  *RuleDef
	Token *TokenDef
}
