package layout

import "fmt"

// SolverError wraps a failure of the flex solver. The relayout that produced
// it is abandoned and existing geometry is left untouched.
type SolverError struct {
	Nodes int
	Err   error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("layout solver failed on %d nodes: %v", e.Nodes, e.Err)
}

func (e *SolverError) Unwrap() error {
	return e.Err
}
