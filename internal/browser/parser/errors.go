package parser

import "fmt"

// ParseError means the source could not be turned into a capsule at all.
// Loading fails and whatever document was active stays active.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capsule parse error: %s: %v", e.Reason, e.Err)
	}
	return "capsule parse error: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownNodeKindError reports an element the scene tree has no kind for.
// The element and everything below it are skipped.
type UnknownNodeKindError struct {
	Tag  string
	Path string
}

func (e *UnknownNodeKindError) Error() string {
	return fmt.Sprintf("unknown node kind <%s> at %s, subtree skipped", e.Tag, e.Path)
}
