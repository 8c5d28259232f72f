package layout

import "github.com/xkilldash9x/capsule-browser/internal/browser/dom"

// ScanAndClearDirty walks the whole tree once, taking and clearing every
// node's dirty flag, and reports whether any was set. It never stops early,
// so every flag is cleared in a single pass.
func ScanAndClearDirty(root *dom.Node) bool {
	return len(TakeDirty(root)) > 0
}

// TakeDirty clears every node's dirty flag and returns the nodes that had
// it set, in pre-order. A node mutated during the walk is either returned
// here or left dirty for the next scan, never both.
func TakeDirty(root *dom.Node) []*dom.Node {
	var dirty []*dom.Node
	dom.ForEachDescendant(root, func(n *dom.Node) {
		if n.Style().TakeDirty() {
			dirty = append(dirty, n)
		}
	})
	return dirty
}

// ScanDirty returns the nodes whose flag is currently set without clearing
// anything.
func ScanDirty(root *dom.Node) []*dom.Node {
	var dirty []*dom.Node
	dom.ForEachDescendant(root, func(n *dom.Node) {
		if n.Style().IsDirty() {
			dirty = append(dirty, n)
		}
	})
	return dirty
}
