package column

import "errors"

var (
	ErrColumnOwned       = errors.New("column belongs to another grid")
	ErrColumnNotFound    = errors.New("column not in collection")
	ErrDisplayIndexRange = errors.New("display index out of range")
	ErrInvalidWidth      = errors.New("invalid column width")
)
