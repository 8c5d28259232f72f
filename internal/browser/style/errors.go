package style

import (
	"errors"
	"fmt"
)

// AttributeError reports a style attribute whose value could not be parsed.
// It is recoverable: callers log it and keep the field's previous value.
type AttributeError struct {
	Attribute string
	Value     string
	Err       error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("bad %s value %q: %v", e.Attribute, e.Value, e.Err)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

// UnknownAttributeError is returned by Record.Set for names that are not
// style fields.
type UnknownAttributeError struct {
	Attribute string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("unknown style attribute %q", e.Attribute)
}

var errBadColor = errors.New("unrecognized color")
