package criteria

// Walk visits n and its descendants depth-first in declaration order.
// Returning false from fn skips the children of the current node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	if g, ok := n.(*Group); ok {
		for _, child := range g.Children {
			Walk(child, fn)
		}
	}
}

// Columns returns the distinct columns referenced by the tree, in first-use
// order.
func Columns(n Node) []string {
	seen := map[string]bool{}
	var out []string
	Walk(n, func(n Node) bool {
		col := columnOf(n)
		if col != "" && !seen[col] {
			seen[col] = true
			out = append(out, col)
		}
		return true
	})
	return out
}

// Depth returns the maximum nesting depth of logical groups below n.
// A flat mapping has depth 0.
func Depth(n Node) int {
	g, ok := n.(*Group)
	if !ok {
		return 0
	}
	deepest := 0
	for _, child := range g.Children {
		if cg, ok := child.(*Group); ok {
			if d := Depth(cg) + 1; d > deepest {
				deepest = d
			}
		}
	}
	return deepest
}

func columnOf(n Node) string {
	switch p := n.(type) {
	case Comparison:
		return p.Column
	case Between:
		return p.Column
	case In:
		return p.Column
	case Null:
		return p.Column
	case Like:
		return p.Column
	default:
		return ""
	}
}
