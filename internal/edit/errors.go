package edit

import "errors"

var (
	// ErrNoRowEdit is returned when committing or cancelling with no row open.
	ErrNoRowEdit  = errors.New("no row is being edited")
	ErrNoCellEdit = errors.New("no cell is being edited")
	ErrCellOpen   = errors.New("a cell is still being edited")
	ErrOtherRow   = errors.New("another row is being edited")
	ErrInvalid    = errors.New("validation failed")
	ErrNoRollback = errors.New("source cannot roll back the edit")
)
