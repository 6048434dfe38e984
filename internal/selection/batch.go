package selection

// Batch defers a notification until the outermost of nested operations
// ends, so one logical change fires it at most once.
type Batch struct {
	depth   int
	pending bool
	flush   func()
}

// NewBatch returns a batch that calls flush when a marked batch closes.
func NewBatch(flush func()) *Batch {
	return &Batch{flush: flush}
}

// Begin opens a scope and returns the function that closes it. Closing
// twice is a no-op.
//
//	end := b.Begin()
//	defer end()
func (b *Batch) Begin() (end func()) {
	b.depth++
	closed := false
	return func() {
		if closed {
			return
		}
		closed = true
		b.depth--
		if b.depth == 0 && b.pending {
			b.pending = false
			if b.flush != nil {
				b.flush()
			}
		}
	}
}

// Mark records that the notification must fire. Outside a scope it fires
// immediately.
func (b *Batch) Mark() {
	b.pending = true
	if b.depth == 0 {
		b.Begin()()
	}
}

// Active reports whether a scope is open.
func (b *Batch) Active() bool { return b.depth > 0 }

// Discard drops a pending notification.
func (b *Batch) Discard() { b.pending = false }
