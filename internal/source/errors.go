package source

import "errors"

var (
	ErrNotEditing     = errors.New("item is not being edited")
	ErrAlreadyEditing = errors.New("another item is being edited")
	ErrNotFound       = errors.New("item not found")
	ErrAddingNew      = errors.New("a new item is already being added")
	ErrNotAddingNew   = errors.New("no new item is being added")
	ErrUnknownField   = errors.New("unknown field")
	ErrReadOnly       = errors.New("source is read-only")
)
