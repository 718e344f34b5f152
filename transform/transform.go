package transform

import (
	"fmt"

	"github.com/hesperix/hesper"
	"github.com/hesperix/hesper/tree"
)

// Handler rewrites one already-transformed production: name is the rule
// or alias, children its already-transformed child values, left to
// right. Its return value replaces the whole node in the parent's child
// list.
type Handler func(name string, children []interface{}) interface{}

// TreeHandler is the whole-tree variant of Handler, for rewrites that
// need the node's span or want a *tree.Tree to work on (e.g. to return
// one with the same Name but reordered children) rather than build a
// brand new value from scratch. It receives a fresh *tree.Tree carrying
// the node's Name and Span, whose Children are the already-transformed
// child values, not the original sub-trees.
type TreeHandler func(t *tree.Tree) interface{}

// Transformer rewrites a tree.Tree bottom-up: every child is transformed
// before its parent's handler runs, so a handler only ever sees already
//-rewritten children, never raw sub-trees.
//
// Grounded in the teacher's RewriteWith (terex/termr/rewrite.go), which
// likewise only invokes its Rewriter once the pattern match against the
// (already-built) node has succeeded; here the "pattern" is just the
// node's Name.
type Transformer struct {
	handlers     map[string]Handler
	treeHandlers map[string]TreeHandler
	fallback     Handler
}

// New creates an empty Transformer.
func New() *Transformer {
	return &Transformer{
		handlers:     make(map[string]Handler),
		treeHandlers: make(map[string]TreeHandler),
	}
}

// On registers h to run for every node named name.
func (tr *Transformer) On(name string, h Handler) *Transformer {
	tr.handlers[name] = h
	return tr
}

// OnTree registers the whole-tree variant of a handler for name.
func (tr *Transformer) OnTree(name string, h TreeHandler) *Transformer {
	tr.treeHandlers[name] = h
	return tr
}

// Default registers a handler run for any node with no handler of its
// own registered via On or OnTree.
func (tr *Transformer) Default(h Handler) *Transformer {
	tr.fallback = h
	return tr
}

// Transform rewrites node and everything beneath it, bottom-up. A panic
// inside a handler is recovered and reported as a *hesper.VisitError
// naming the rule it occurred in.
func (tr *Transformer) Transform(node interface{}) (result interface{}, err error) {
	t, ok := node.(*tree.Tree)
	if !ok {
		return node, nil // *tree.Token or a prior rewrite's non-tree value
	}
	children := make([]interface{}, len(t.Children))
	for i, c := range t.Children {
		out, err := tr.Transform(c)
		if err != nil {
			return nil, err
		}
		children[i] = out
	}
	defer func() {
		if r := recover(); r != nil {
			err = &hesper.VisitError{Rule: t.Name, Err: fmt.Errorf("%v", r)}
		}
	}()
	if h, ok := tr.treeHandlers[t.Name]; ok {
		rewritten := &tree.Tree{Name: t.Name, Children: children, Span: t.Span}
		return h(rewritten), nil
	}
	if h, ok := tr.handlers[t.Name]; ok {
		return h(t.Name, children), nil
	}
	if tr.fallback != nil {
		return tr.fallback(t.Name, children), nil
	}
	return &tree.Tree{Name: t.Name, Children: children, Span: t.Span}, nil
}

// Direction selects whether a Visitor calls its callback before or after
// descending into a node's children.
type Direction int

const (
	TopDown Direction = iota
	BottomUp
)

// Visit is called once per node. depth is the node's distance from the
// walk's root. Returning false from a TopDown visit skips that node's
// children; the return value is ignored in BottomUp mode, since children
// have already been visited by the time a node's own callback runs.
type Visit func(node interface{}, depth int) bool

// Visitor performs a read-only walk over a tree.Tree, without rewriting
// it — use Transformer instead when the walk needs to produce a new
// tree.
type Visitor struct {
	dir   Direction
	visit Visit
}

// NewVisitor creates a Visitor that walks in the given Direction, calling
// visit at each node.
func NewVisitor(dir Direction, visit Visit) *Visitor {
	return &Visitor{dir: dir, visit: visit}
}

// Walk runs the visitor over node and its descendants.
func (v *Visitor) Walk(node interface{}) {
	v.walk(node, 0)
}

func (v *Visitor) walk(node interface{}, depth int) {
	descend := true
	if v.dir == TopDown {
		descend = v.visit(node, depth)
	}
	if descend {
		if t, ok := node.(*tree.Tree); ok {
			for _, c := range t.Children {
				v.walk(c, depth+1)
			}
		}
	}
	if v.dir == BottomUp {
		v.visit(node, depth)
	}
}
