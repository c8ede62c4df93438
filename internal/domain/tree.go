package domain

// FlatEntry is one concept in an ordered traversal, annotated with its depth
// relative to the traversal origin (origin = 0)
type FlatEntry struct {
	Concept *Concept
	Level   int
}

// TreeNode represents a concept and its narrower concepts
type TreeNode struct {
	Concept  *Concept
	Level    int
	Children []*TreeNode
	Parent   *TreeNode
}

// Flatten returns the node and its subtree in pre-order
func (n *TreeNode) Flatten() []FlatEntry {
	var result []FlatEntry
	n.flattenRecursive(&result)
	return result
}

func (n *TreeNode) flattenRecursive(result *[]FlatEntry) {
	*result = append(*result, FlatEntry{Concept: n.Concept, Level: n.Level})
	for _, child := range n.Children {
		child.flattenRecursive(result)
	}
}

// Depth returns the depth of this node in the tree
func (n *TreeNode) Depth() int {
	depth := 0
	current := n.Parent
	for current != nil {
		depth++
		current = current.Parent
	}
	return depth
}

// Count returns the number of nodes in the subtree, the node included
func (n *TreeNode) Count() int {
	total := 1
	for _, child := range n.Children {
		total += child.Count()
	}
	return total
}

// NestFlat rebuilds nested trees from a pre-order flat list using a
// level stack. Entries whose level skips a generation are attached to the
// deepest available ancestor.
func NestFlat(entries []FlatEntry) []*TreeNode {
	var roots []*TreeNode
	var stack []*TreeNode

	for _, e := range entries {
		node := &TreeNode{Concept: e.Concept, Level: e.Level}

		base := 0
		if len(entries) > 0 {
			base = entries[0].Level
		}
		depth := e.Level - base
		if depth < 0 {
			depth = 0
		}
		if depth < len(stack) {
			stack = stack[:depth]
		}

		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			node.Parent = parent
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}

	return roots
}

// FlattenTrees concatenates the pre-order flattening of each tree
func FlattenTrees(trees []*TreeNode) []FlatEntry {
	var out []FlatEntry
	for _, t := range trees {
		out = append(out, t.Flatten()...)
	}
	return out
}
