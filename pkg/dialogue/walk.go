package dialogue

import "fmt"

// WalkFunc is called for every node in depth-first, display order. Returning
// false skips the node's followups.
type WalkFunc func(path string, depth int, n *Node) bool

// Walk visits root and every followup below it without recursion.
func Walk(root *Node, fn WalkFunc) {
	if root == nil {
		return
	}

	type frame struct {
		path  string
		depth int
		node  *Node
	}
	stack := []frame{{path: "root", node: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(f.path, f.depth, f.node) {
			continue
		}

		// push in reverse so the first option is visited first
		for i := len(f.node.Options) - 1; i >= 0; i-- {
			opt := f.node.Options[i]
			if opt.Followup == nil {
				continue
			}
			stack = append(stack, frame{
				path:  fmt.Sprintf("%s.options[%s].followup", f.path, opt.Key),
				depth: f.depth + 1,
				node:  opt.Followup,
			})
		}
	}
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes    int
	Options  int
	ByKind   map[Kind]int
	MaxDepth int
}

// Summarize counts nodes and options in t.
func Summarize(t *Tree) Stats {
	s := Stats{ByKind: map[Kind]int{}}
	if t == nil {
		return s
	}

	seen := map[*Node]bool{}
	Walk(t.Root, func(_ string, depth int, n *Node) bool {
		if seen[n] {
			return false
		}
		seen[n] = true

		s.Nodes++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		for _, opt := range n.Options {
			s.Options++
			s.ByKind[opt.Kind]++
		}
		return true
	})
	return s
}
