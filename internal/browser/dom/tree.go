package dom

// Walk visits root and its descendants in pre-order, depth first. Returning
// false from fn skips the node's subtree. Each node's children are read when
// the walk reaches it, so children appended earlier are seen and children
// appended to already visited nodes are not.
func Walk(root *Node, fn func(n *Node) bool) {
	if root == nil {
		return
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		children := n.children.view()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// ForEachDescendant calls fn for root and every node below it, pre-order.
func ForEachDescendant(root *Node, fn func(n *Node)) {
	Walk(root, func(n *Node) bool {
		fn(n)
		return true
	})
}

// FindByID returns the first node in pre-order whose identifier equals id.
func FindByID(root *Node, id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	Walk(root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes reachable from root.
func Count(root *Node) int {
	total := 0
	ForEachDescendant(root, func(*Node) { total++ })
	return total
}

// FindNode reports whether target is root or one of its descendants.
func FindNode(root, target *Node) bool {
	found := false
	Walk(root, func(n *Node) bool {
		if found || n == target {
			found = true
			return false
		}
		return true
	})
	return found
}
