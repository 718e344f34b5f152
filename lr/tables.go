package lr

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/hesperix/hesper"
	"github.com/hesperix/hesper/lr/iteratable"
	"github.com/hesperix/hesper/lr/sparse"
)

// Actions for parser action tables.
const (
	ShiftAction  = -1
	AcceptAction = -2
)

// === LR(1) items ============================================================
//
// A lr1Item pairs a core Item (dotted rule) with a single lookahead
// terminal. A CFSM state holds the set of lr1Items reachable there; the
// LALR(1) merge step (mergeToLALR, below) groups states sharing the same
// set of core Items and unions their lookaheads — this is what turns a
// (possibly much larger) canonical LR(1) automaton into an LALR(1) one
// without implementing DeRemer/Pennello lookahead propagation directly.
// See SPEC_FULL.md's table-construction note for the rationale.
type lr1Item struct {
	it Item
	la *Symbol // lookahead terminal; EOFSymbol() for end-of-input
}

func newLR1ItemSet() *iteratable.Set {
	return iteratable.NewSet(8)
}

// closure1 computes the closure of an LR(1) item set: for every item
// [A -> α.Bβ, a] add [B -> .γ, b] for every B-rule and every b in
// FIRST(βa). Generalizes the teacher's LR(0) closure() in the same way
// lr.LRAnalysis.Closure works for LALR's prediction step.
func (ga *LRAnalysis) closure1(items *iteratable.Set) *iteratable.Set {
	items.IterateOnce()
	for items.Next() {
		li := items.Item().(lr1Item)
		B := li.it.PeekSymbol()
		if B == nil || B.IsTerminal() {
			continue
		}
		beta := li.it.Suffix()[1:]
		lookaheadSeq := append(append([]*Symbol{}, beta...), li.la)
		firstSet := ga.firstOfSeq(lookaheadSeq)
		rules := ga.grammar.FindNonTermRules(B, false)
		rules.Each(func(el interface{}) {
			rule := el.(*Rule)
			start, _ := StartItem(rule)
			for _, b := range firstSet.Values() {
				items.Add(lr1Item{it: start, la: b.(*Symbol)})
			}
		})
	}
	return items
}

// goto1 computes the item set reached by shifting items over sym, closed
// under closure1.
func (ga *LRAnalysis) goto1(items *iteratable.Set, sym *Symbol) *iteratable.Set {
	moved := newLR1ItemSet()
	items.Each(func(el interface{}) {
		li := el.(lr1Item)
		if li.it.PeekSymbol() == sym {
			moved.Add(lr1Item{it: li.it.Advance(), la: li.la})
		}
	})
	if moved.Empty() {
		return moved
	}
	return ga.closure1(moved)
}

// coreOf extracts the set of core Items from an LR(1) item set, discarding
// lookaheads; used both to decide whether two canonical LR(1) states
// should be merged, and as the map key for that comparison.
func coreOf(items *iteratable.Set) *iteratable.Set {
	core := iteratable.NewSet(items.Size())
	items.Each(func(el interface{}) {
		core.Add(el.(lr1Item).it)
	})
	return core
}

// coreKey produces a stable string key for a core item set, used to find
// canonical-LR(1) states with an identical LR(0) core during the LALR(1)
// merge step.
func coreKey(core *iteratable.Set) string {
	items := core.Values()
	strs := make([]string, len(items))
	for i, it := range items {
		strs[i] = it.(Item).String()
	}
	sort.Strings(strs)
	var b bytes.Buffer
	for _, s := range strs {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String()
}

// === CFSM Construction =====================================================

// CFSMState is a state within the CFSM for a grammar. items holds the
// (merged, for LALR) LR(1) item set of the state.
type CFSMState struct {
	ID     uint            // serial ID of this state
	items  *iteratable.Set // lr1Item set within this state
	Accept bool            // is this an accepting state?
}

// cfsmEdge is a CFSM transition, directed and labeled with a grammar symbol.
type cfsmEdge struct {
	from  *CFSMState
	to    *CFSMState
	label *Symbol
}

// Dump is a debugging helper.
func (s *CFSMState) Dump() {
	tracer().Debugf("--- state %03d -----------", s.ID)
	s.items.Each(func(el interface{}) {
		li := el.(lr1Item)
		tracer().Debugf("  %s , %s", li.it, li.la.Name)
	})
	tracer().Debugf("-------------------------")
}

func (s *CFSMState) isErrorState() bool {
	return s.items.Size() == 0
}

func state(id uint, iset *iteratable.Set) *CFSMState {
	s := &CFSMState{ID: id}
	if iset == nil {
		s.items = newLR1ItemSet()
	} else {
		s.items = iset
	}
	return s
}

func (s *CFSMState) String() string {
	return fmt.Sprintf("(state %d | [%d])", s.ID, s.items.Size())
}

func (s *CFSMState) containsCompletedStartRule() bool {
	found := false
	s.items.Each(func(el interface{}) {
		li := el.(lr1Item)
		if li.it.Rule().Serial == 0 && li.it.PeekSymbol() == nil {
			found = true
		}
	})
	return found
}

func edge(from, to *CFSMState, label *Symbol) *cfsmEdge {
	return &cfsmEdge{from: from, to: to, label: label}
}

func stateComparator(s1, s2 interface{}) int {
	c1 := s1.(*CFSMState)
	c2 := s2.(*CFSMState)
	return utils.IntComparator(int(c1.ID), int(c2.ID))
}

// CFSM is the characteristic finite state machine for a grammar: the
// canonical LR(1) automaton before merge, or the LALR(1) automaton after.
// Constructed by a TableGenerator; clients normally do not use it
// directly, other than for debugging (e.g. CFSM2GraphViz).
type CFSM struct {
	g       *Grammar
	states  *treeset.Set
	edges   *arraylist.List
	S0      *CFSMState
	cfsmIds uint
}

func emptyCFSM(g *Grammar) *CFSM {
	c := &CFSM{g: g}
	c.states = treeset.NewWith(stateComparator)
	c.edges = arraylist.New()
	return c
}

func (c *CFSM) addState(iset *iteratable.Set) *CFSMState {
	s := c.findStateByItems(iset)
	if s == nil {
		s = state(c.cfsmIds, iset)
		c.cfsmIds++
	}
	c.states.Add(s)
	return s
}

func (c *CFSM) findStateByItems(iset *iteratable.Set) *CFSMState {
	it := c.states.Iterator()
	for it.Next() {
		s := it.Value().(*CFSMState)
		if s.items.Equals(iset) {
			return s
		}
	}
	return nil
}

func (c *CFSM) addEdge(s0, s1 *CFSMState, sym *Symbol) *cfsmEdge {
	e := edge(s0, s1, sym)
	c.edges.Add(e)
	return e
}

func (c *CFSM) allEdges(s *CFSMState) []*cfsmEdge {
	it := c.edges.Iterator()
	r := make([]*cfsmEdge, 0, 2)
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		if e.from == s {
			r = append(r, e)
		}
	}
	return r
}

// TableGenerator constructs LALR(1) parser tables for a grammar. Clients
// usually create a Grammar G, an LRAnalysis for G, and then a
// TableGenerator; TableGenerator.CreateTables() builds the canonical
// LR(1) CFSM, merges it down to LALR(1), and derives the GOTO and ACTION
// tables.
type TableGenerator struct {
	g            *Grammar
	ga           *LRAnalysis
	dfa          *CFSM
	gototable    *Table
	actiontable  *Table
	HasConflicts bool
}

// NewTableGenerator creates a new TableGenerator for a (previously
// analysed) grammar.
func NewTableGenerator(ga *LRAnalysis) *TableGenerator {
	return &TableGenerator{g: ga.Grammar(), ga: ga}
}

// CFSM returns the (merged, LALR(1)) characteristic finite state machine.
// Built lazily if CreateTables() has not been called.
func (lrgen *TableGenerator) CFSM() *CFSM {
	if lrgen.dfa == nil {
		lrgen.dfa = lrgen.buildLALRCFSM()
	}
	return lrgen.dfa
}

// GotoTable returns the GOTO table. Requires a prior call to CreateTables().
func (lrgen *TableGenerator) GotoTable() *Table {
	if lrgen.gototable == nil {
		tracer().P("lr", "gen").Errorf("tables not yet initialized")
	}
	return lrgen.gototable
}

// ActionTable returns the LALR(1) ACTION table. Requires a prior call to
// CreateTables().
func (lrgen *TableGenerator) ActionTable() *Table {
	if lrgen.actiontable == nil {
		tracer().P("lr", "gen").Errorf("tables not yet initialized")
	}
	return lrgen.actiontable
}

// CreateTables builds the CFSM and both parser tables for a LALR(1) parser.
func (lrgen *TableGenerator) CreateTables() {
	lrgen.dfa = lrgen.buildLALRCFSM()
	lrgen.gototable = lrgen.BuildGotoTable()
	lrgen.actiontable, lrgen.HasConflicts = lrgen.BuildLALR1ActionTable()
}

// AcceptingStates returns all CFSM states from which an accept action is
// reachable. Requires a prior call to CreateTables().
func (lrgen *TableGenerator) AcceptingStates() []uint {
	if lrgen.dfa == nil {
		tracer().Errorf("tables not yet generated; call CreateTables() first")
		return nil
	}
	acc := make([]uint, 0, 3)
	for _, x := range lrgen.dfa.states.Values() {
		st := x.(*CFSMState)
		if st.Accept {
			it := lrgen.dfa.edges.Iterator()
			for it.Next() {
				e := it.Value().(*cfsmEdge)
				if e.to.ID == st.ID {
					acc = append(acc, e.from.ID)
				}
			}
		}
	}
	return unique(acc)
}

// buildCanonicalLR1CFSM constructs the canonical LR(1) automaton, without
// any state merging.
func (lrgen *TableGenerator) buildCanonicalLR1CFSM() *CFSM {
	tracer().Debugf("=== build canonical LR(1) CFSM ===================================")
	G := lrgen.g
	cfsm := emptyCFSM(G)
	start := newLR1ItemSet()
	startItem, _ := StartItem(G.Rule(0))
	start.Add(lr1Item{it: startItem, la: EOFSymbol()})
	closure0 := lrgen.ga.closure1(start)
	cfsm.S0 = cfsm.addState(closure0)
	worklist := treeset.NewWith(stateComparator)
	worklist.Add(cfsm.S0)
	for worklist.Size() > 0 {
		s := worklist.Values()[0].(*CFSMState)
		worklist.Remove(s)
		G.EachSymbol(func(A *Symbol) {
			gotoset := lrgen.ga.goto1(s.items, A)
			if gotoset.Empty() {
				return
			}
			snew := cfsm.findStateByItems(gotoset)
			isNew := snew == nil
			if isNew {
				snew = cfsm.addState(gotoset)
				if snew.containsCompletedStartRule() {
					snew.Accept = true
				}
				worklist.Add(snew)
			}
			cfsm.addEdge(s, snew, A)
		})
	}
	return cfsm
}

// buildLALRCFSM builds the canonical LR(1) automaton and merges states
// sharing an identical LR(0) core, producing the (smaller) LALR(1)
// automaton actually used for parsing.
func (lrgen *TableGenerator) buildLALRCFSM() *CFSM {
	canon := lrgen.buildCanonicalLR1CFSM()
	merged := emptyCFSM(lrgen.g)

	type bucket struct {
		state *CFSMState // representative merged state
		items *iteratable.Set
	}
	byCore := make(map[string]*bucket)
	order := []string{}
	origToKey := make(map[*CFSMState]string)

	canonStates := canon.states.Values()
	for _, x := range canonStates {
		cs := x.(*CFSMState)
		key := coreKey(coreOf(cs.items))
		origToKey[cs] = key
		b, ok := byCore[key]
		if !ok {
			b = &bucket{items: newLR1ItemSet()}
			byCore[key] = b
			order = append(order, key)
		}
		cs.items.Each(func(el interface{}) { b.items.Add(el) })
	}
	sort.Strings(order)
	for _, key := range order {
		b := byCore[key]
		st := merged.addState(b.items)
		b.state = st
		if st.containsCompletedStartRule() {
			st.Accept = true
		}
	}
	it := canon.edges.Iterator()
	seenEdge := make(map[string]bool)
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		fromState := byCore[origToKey[e.from]].state
		toState := byCore[origToKey[e.to]].state
		sig := fmt.Sprintf("%d-%s-%d", fromState.ID, e.label.Name, toState.ID)
		if seenEdge[sig] {
			continue
		}
		seenEdge[sig] = true
		merged.addEdge(fromState, toState, e.label)
	}
	merged.S0 = byCore[origToKey[canon.S0]].state
	return merged
}

// CFSM2GraphViz exports a CFSM to the Graphviz Dot format, given a filename.
func (c *CFSM) CFSM2GraphViz(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		panic(fmt.Sprintf("file open error: %v", err.Error()))
	}
	defer f.Close()
	f.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	for _, x := range c.states.Values() {
		s := x.(*CFSMState)
		f.WriteString(fmt.Sprintf("s%03d [fillcolor=%s label=\"{%03d | %d items}\"]\n",
			s.ID, nodecolor(s), s.ID, s.items.Size()))
	}
	it := c.edges.Iterator()
	for it.Next() {
		e := it.Value().(*cfsmEdge)
		f.WriteString(fmt.Sprintf("s%03d -> s%03d [label=\"%s\"]\n", e.from.ID, e.to.ID, e.label.Name))
	}
	f.WriteString("}\n")
}

func nodecolor(state *CFSMState) string {
	if state.Accept {
		return "lightgray"
	}
	return "white"
}

// ===========================================================================

// tokenExtent finds the [min,max] token-value range over every symbol of
// the grammar, used to size the sparse ACTION/GOTO matrices.
func (lrgen *TableGenerator) tokenExtent() (hesper.TokType, hesper.TokType) {
	var maxtok, mintok hesper.TokType
	lrgen.g.EachSymbol(func(A *Symbol) {
		if A.TokenType() > maxtok {
			maxtok = A.TokenType()
		} else if A.TokenType() < mintok {
			mintok = A.TokenType()
		}
	})
	return mintok, maxtok
}

// BuildGotoTable builds the GOTO table. Normally called via CreateTables().
func (lrgen *TableGenerator) BuildGotoTable() *Table {
	statescnt := lrgen.dfa.states.Size()
	mintok, maxtok := lrgen.tokenExtent()
	extent := uint(maxtok - mintok + 1)
	tracer().Infof("GOTO table of size %d x (%d-%d=%d)", statescnt, maxtok, mintok, extent)
	gototable := newTable(uint(statescnt), extent, mintok)
	states := lrgen.dfa.states.Iterator()
	for states.Next() {
		st := states.Value().(*CFSMState)
		for _, e := range lrgen.dfa.allEdges(st) {
			gototable.set(st.ID, e.label.TokenType(), int32(e.to.ID))
		}
	}
	return gototable
}

// GotoTableAsHTML exports a GOTO-table in HTML-format.
func GotoTableAsHTML(lrgen *TableGenerator, w io.Writer) {
	if lrgen.gototable == nil {
		tracer().Errorf("GOTO table not yet created, cannot export to HTML")
		return
	}
	parserTableAsHTML(lrgen, "GOTO", lrgen.gototable, w)
}

// ActionTableAsHTML exports the LALR(1) ACTION-table in HTML-format.
func ActionTableAsHTML(lrgen *TableGenerator, w io.Writer) {
	if lrgen.actiontable == nil {
		tracer().Errorf("ACTION table not yet created, cannot export to HTML")
		return
	}
	parserTableAsHTML(lrgen, "ACTION", lrgen.actiontable, w)
}

func parserTableAsHTML(lrgen *TableGenerator, tname string, table *Table, w io.Writer) {
	var symvec []*Symbol
	lrgen.g.EachSymbol(func(A *Symbol) { symvec = append(symvec, A) })
	io.WriteString(w, "<html><body>\n")
	io.WriteString(w, "<img src=\"cfsm.png\"/><p>")
	io.WriteString(w, fmt.Sprintf("%s table of size = %d<p>", tname, table.matrix.ValueCount()))
	io.WriteString(w, "<table border=1 cellspacing=0 cellpadding=5>\n")
	io.WriteString(w, "<tr bgcolor=#cccccc><td></td>\n")
	for _, A := range symvec {
		io.WriteString(w, fmt.Sprintf("<td>%s</td>", A.Name))
	}
	io.WriteString(w, "</tr>\n")
	states := lrgen.dfa.states.Iterator()
	var td string
	for states.Next() {
		st := states.Value().(*CFSMState)
		io.WriteString(w, fmt.Sprintf("<tr><td>state %d</td>\n", st.ID))
		for _, A := range symvec {
			v1, v2 := table.Values(st.ID, A.TokenType())
			if v1 == table.NullValue() {
				td = "&nbsp;"
			} else if v2 == table.NullValue() {
				td = fmt.Sprintf("%d", v1)
			} else {
				td = fmt.Sprintf("%d/%d", v1, v2)
			}
			io.WriteString(w, "<td>"+td+"</td>\n")
		}
		io.WriteString(w, "</tr>\n")
	}
	io.WriteString(w, "</table></body></html>\n")
}

// ===========================================================================

// BuildLALR1ActionTable constructs the LALR(1) ACTION table. Normally
// called via CreateTables(). For each completed item in a (merged) CFSM
// state, a reduce entry is emitted for every lookahead terminal recorded
// on that item — true LALR(1) lookaheads, as opposed to the teacher's
// SLR(1) approach of using the full FOLLOW(LHS) set for every reduction.
func (lrgen *TableGenerator) BuildLALR1ActionTable() (*Table, bool) {
	statescnt := uint(lrgen.dfa.states.Size())
	mintok, maxtok := lrgen.tokenExtent()
	extent := uint(maxtok - mintok + 1)
	tracer().Infof("ACTION table of size %d x (%d-%d=%d)", statescnt, maxtok, mintok, extent)
	actions := newTable(statescnt, extent, mintok)

	hasConflicts := false
	states := lrgen.dfa.states.Iterator()
	for states.Next() {
		st := states.Value().(*CFSMState)
		tracer().Debugf("--- state %d --------------------------------", st.ID)
		st.items.Each(func(el interface{}) {
			li := el.(lr1Item)
			A := li.it.PeekSymbol()
			if A != nil && A.IsTerminal() {
				p := shiftOrAccept(A)
				if a1, a2 := actions.Values(st.ID, A.TokenType()); a1 != actions.NullValue() {
					if a1 != ShiftAction && a1 != AcceptAction {
						hasConflicts = true
					}
					_ = a2
				}
				actions.add(st.ID, A.TokenType(), int32(p))
				return
			}
			if A != nil {
				return
			}
			// completed item: reduce on the item's own LALR(1) lookahead
			rule := li.it.Rule()
			a1, a2 := actions.Values(st.ID, li.la.TokenType())
			if a1 != actions.NullValue() || a2 != actions.NullValue() {
				hasConflicts = true
				tracer().Debugf("    reduce/shift or reduce/reduce conflict at state %d on %s",
					st.ID, li.la.Name)
			}
			actions.add(st.ID, li.la.TokenType(), int32(rule.Serial))
		})
	}
	return actions, hasConflicts
}

func shiftOrAccept(terminal *Symbol) int {
	if terminal == EOFSymbol() {
		return AcceptAction
	}
	return ShiftAction
}

// Table is a sparse ACTION/GOTO table, indexed by CFSM state and terminal
// token type. Backed by package sparse's COO integer matrix, the same
// representation the teacher uses for its parser tables.
type Table struct {
	matrix *sparse.IntMatrix
	mincol hesper.TokType
}

func newTable(rows, cols uint, mincol hesper.TokType) *Table {
	return &Table{
		matrix: sparse.NewIntMatrix(int(rows), int(cols), sparse.DefaultNullValue),
		mincol: mincol,
	}
}

func (t *Table) add(i uint, tt hesper.TokType, val int32) {
	j := tt - t.mincol
	if j < 0 {
		panic(fmt.Sprintf("lr.Table.add() with index < 0: %d", j))
	}
	t.matrix.Add(int(i), int(j), val)
}

func (t *Table) set(i uint, tt hesper.TokType, val int32) {
	j := tt - t.mincol
	if j < 0 {
		panic(fmt.Sprintf("lr.Table.set() with index < 0: %d", j))
	}
	t.matrix.Set(int(i), int(j), val)
}

// NullValue returns this table's empty-entry sentinel.
func (t *Table) NullValue() int32 {
	return t.matrix.NullValue()
}

// Value returns the primary entry for (state, token).
func (t *Table) Value(i uint, tt hesper.TokType) int32 {
	j := tt - t.mincol
	if j < 0 {
		panic(fmt.Sprintf("lr.Table.Value() with index < 0: %d", j))
	}
	return t.matrix.Value(int(i), int(j))
}

// Values returns both entries for (state, token); a non-null second value
// signals a shift/reduce or reduce/reduce conflict.
func (t *Table) Values(i uint, tt hesper.TokType) (int32, int32) {
	j := tt - t.mincol
	if j < 0 {
		panic(fmt.Sprintf("lr.Table.Values() with index < 0: %d", j))
	}
	return t.matrix.Values(int(i), int(j))
}

func unique(in []uint) []uint { // from slice tricks
	sort.Sort(uintSlice(in))
	j := 0
	for i := 1; i < len(in); i++ {
		if in[j] == in[i] {
			continue
		}
		j++
		in[j] = in[i]
	}
	return in[:j+1]
}

type uintSlice []uint

func (x uintSlice) Len() int           { return len(x) }
func (x uintSlice) Less(i, j int) bool { return x[i] < x[j] }
func (x uintSlice) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }
