// Package source defines what the grid needs from the data it shows and
// provides an in-memory implementation with paging, editing and grouping.
package source

import "context"

// Item is one row of data.
type Item interface {
	Get(field string) (any, bool)
	Set(field string, value any) error
}

// ItemSource gives indexed access to items.
type ItemSource interface {
	Len() int
	At(i int) Item
	IndexOf(it Item) int
}

// CurrencySource keeps a current-item cursor.
type CurrencySource interface {
	CurrentPosition() int
	MoveCurrentTo(pos int) bool
}

// PagedSource loads items incrementally.
type PagedSource interface {
	HasMoreItems() bool
	// LoadMoreItems loads up to n more items and returns how many arrived.
	LoadMoreItems(ctx context.Context, n int) (int, error)
}

// EditableSource supports transactional row edits, adding and removing.
type EditableSource interface {
	BeginEdit(it Item) error
	EndEdit(it Item) error
	CancelEdit(it Item) error
	CanCancelEdit() bool

	AddNew() (Item, error)
	CommitNew() error
	CancelNew() error
	IsAddingNew() bool
	CurrentAddItem() Item

	Remove(it Item) error
}

// Group describes one group in preorder. A group with no deeper group
// directly after it is a leaf and its Count items follow its header.
type Group struct {
	Key   string
	Level int
	Count int
}

// GroupSource exposes the grouping of the items.
type GroupSource interface {
	Groups() []Group
}

// ValidationError is one problem with an item. Members lists the affected
// fields; an empty list marks an entity-level error.
type ValidationError struct {
	Message string
	Members []string
}

func (e ValidationError) Error() string { return e.Message }

// Validator checks an item.
type Validator interface {
	Validate(it Item) []ValidationError
}

// ChangeKind says what happened to the items.
type ChangeKind int

const (
	// Reset means the whole list must be re-read.
	Reset ChangeKind = iota
	// Insert means Count items were added at Index.
	Insert
	// Remove means Count items were removed at Index.
	Remove
	// Replace means the item at Index changed in place.
	Replace
)

func (k ChangeKind) String() string {
	switch k {
	case Reset:
		return "reset"
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	case Replace:
		return "replace"
	}
	return "unknown"
}

// Change is a list change notification. Items holds the removed items for
// Remove and the new ones for Insert.
type Change struct {
	Kind  ChangeKind
	Index int
	Count int
	Items []Item
}

// Notifier publishes list changes.
type Notifier interface {
	Subscribe(fn func(Change)) (unsubscribe func())
}
