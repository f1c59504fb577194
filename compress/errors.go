package compress

import "fmt"

// GroupError reports the failure of one candidate set of a batch.
type GroupError struct {
	Index   int
	Columns []int
	Err     error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("compress group %d (columns %v): %v", e.Index, e.Columns, e.Err)
}

func (e *GroupError) Unwrap() error { return e.Err }
