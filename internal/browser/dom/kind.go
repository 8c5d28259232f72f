package dom

// Kind is the closed set of node variants a capsule can contain.
type Kind uint8

const (
	// KindView is the document root.
	KindView Kind = iota
	KindContainer
	KindText
	// KindScript nodes hold source only. They have no geometry of interest
	// and never receive events.
	KindScript
)

var kindNames = [...]string{
	KindView:      "view",
	KindContainer: "obj",
	KindText:      "text",
	KindScript:    "script",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsVisual reports whether the kind produces draw calls.
func (k Kind) IsVisual() bool {
	return k == KindContainer || k == KindText
}
