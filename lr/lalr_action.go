package lr

import "github.com/hesperix/hesper"

// Conflict describes one unresolved ACTION-table entry found while
// building a priority-aware LALR(1) table: either a shift/reduce
// ambiguity the grammar's rule priorities did not settle, or a
// reduce/reduce ambiguity (always fatal, regardless of priority).
type Conflict struct {
	State    uint
	Terminal *Symbol
	Kind     ConflictKind
	Rule1    *Rule
	Rule2    *Rule // nil for a shift/reduce conflict (Rule1 is the reducing rule)
}

// ConflictKind discriminates the two ACTION-table conflict shapes.
type ConflictKind int

const (
	ShiftReduceConflict ConflictKind = iota
	ReduceReduceConflict
)

func (k ConflictKind) String() string {
	if k == ReduceReduceConflict {
		return "reduce/reduce"
	}
	return "shift/reduce"
}

// BuildPrioritizedActionTable builds the LALR(1) ACTION table the way
// BuildLALR1ActionTable does, but resolves shift/reduce conflicts using
// each rule's Prio instead of recording them as bare "has conflicts":
// a reduce wins only if its rule's priority is strictly greater than 0
// (spec.md §6: "prefer shift only if the grammar author has annotated
// the rule with higher priority; otherwise error at build time" — shift
// is already in the table as the default action, so an un-annotated
// reduce never displaces it). Reduce/reduce conflicts are never resolved
// by priority and are always reported.
//
// Requires lrgen.CFSM() (or a prior CreateTables()/CFSM() call) to have
// built the merged LALR(1) automaton.
func (lrgen *TableGenerator) BuildPrioritizedActionTable() (*Table, []Conflict) {
	dfa := lrgen.CFSM()
	statescnt := uint(dfa.states.Size())
	mintok, maxtok := lrgen.tokenExtent()
	extent := uint(maxtok - mintok + 1)
	actions := newTable(statescnt, extent, mintok)

	// reduceRule records, per (state, terminal), which rule currently
	// holds a reduce entry there, so a second completed item over the
	// same lookahead is recognized as reduce/reduce.
	type cell struct {
		state uint
		tok   hesper.TokType
	}
	reduceRule := make(map[cell]*Rule)
	var conflicts []Conflict

	states := dfa.states.Iterator()
	for states.Next() {
		st := states.Value().(*CFSMState)
		// Pass 1: shifts and accepts take priority by default.
		st.items.Each(func(el interface{}) {
			li := el.(lr1Item)
			A := li.it.PeekSymbol()
			if A != nil && A.IsTerminal() {
				actions.set(st.ID, A.TokenType(), int32(shiftOrAccept(A)))
			}
		})
		// Pass 2: reduces, applying priority against any shift already
		// recorded, and detecting reduce/reduce against a prior reduce.
		st.items.Each(func(el interface{}) {
			li := el.(lr1Item)
			if li.it.PeekSymbol() != nil {
				return // shift item, already handled
			}
			rule := li.it.Rule()
			c := cell{st.ID, li.la.TokenType()}
			if prior, ok := reduceRule[c]; ok {
				conflicts = append(conflicts, Conflict{
					State: st.ID, Terminal: li.la, Kind: ReduceReduceConflict,
					Rule1: prior, Rule2: rule,
				})
				return
			}
			existing := actions.Value(st.ID, li.la.TokenType())
			if existing == actions.NullValue() {
				actions.set(st.ID, li.la.TokenType(), int32(rule.Serial))
				reduceRule[c] = rule
				return
			}
			if existing == ShiftAction || existing == AcceptAction {
				if rule.Prio > 0 {
					actions.set(st.ID, li.la.TokenType(), int32(rule.Serial))
					reduceRule[c] = rule
					return
				}
				conflicts = append(conflicts, Conflict{
					State: st.ID, Terminal: li.la, Kind: ShiftReduceConflict, Rule1: rule,
				})
			}
		})
	}
	return actions, conflicts
}

// ExpectedTerminals returns the names of every terminal the ACTION table
// accepts (by shift or reduce) in state, for UnexpectedToken's Expected
// field (component C6/C7).
func (lrgen *TableGenerator) ExpectedTerminals(state uint) []string {
	dfa := lrgen.CFSM()
	var st *CFSMState
	states := dfa.states.Iterator()
	for states.Next() {
		candidate := states.Value().(*CFSMState)
		if candidate.ID == state {
			st = candidate
			break
		}
	}
	if st == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	st.items.Each(func(el interface{}) {
		li := el.(lr1Item)
		if A := li.it.PeekSymbol(); A != nil && A.IsTerminal() {
			if !seen[A.Name] {
				seen[A.Name] = true
				names = append(names, A.Name)
			}
			return
		}
		if li.it.PeekSymbol() == nil && !seen[li.la.Name] {
			seen[li.la.Name] = true
			names = append(names, li.la.Name)
		}
	})
	return names
}
