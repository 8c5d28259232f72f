// internal/browser/jsbind/errors.go
package jsbind

import "fmt"

// These errors are thrown into script code as Go errors, so a script can
// catch them and Go callers can classify them with errors.As.

// InvalidHandleError is raised when a script passes something that is not a
// node handle where one is required.
type InvalidHandleError struct {
	Op string
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("%s: argument is not a node handle", e.Op)
}

// AttachError is raised when appendChild would move, share or nest a node
// in a way the scene tree does not allow.
type AttachError struct {
	Reason string
}

func (e *AttachError) Error() string {
	return "appendChild: " + e.Reason
}

// UnknownKindError is raised by document.create for kinds scripts may not
// create.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("create: unknown node kind %q", e.Kind)
}
