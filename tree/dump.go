package tree

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Dump renders t as a colorized indented tree to stdout, via pterm — the
// "debug" constructor option's tree view, grounded in terex's trepl.go
// use of pterm.DefaultTree for the same purpose.
func Dump(t *Tree) error {
	return pterm.DefaultTree.WithRoot(toPtermNode(t)).Render()
}

func toPtermNode(t *Tree) pterm.TreeNode {
	node := pterm.TreeNode{Text: t.Name}
	for _, c := range t.Children {
		switch v := c.(type) {
		case *Tree:
			node.Children = append(node.Children, toPtermNode(v))
		case *Token:
			node.Children = append(node.Children, pterm.TreeNode{
				Text: fmt.Sprintf("%s %q", v.Name, v.Text),
			})
		}
	}
	return node
}
