package engine

import "fmt"

// itemIDs allocates monotonically increasing item identifiers.
//
// IDs continue the numbering of the initial backlog: a run seeded with N
// initial items assigns ITEM-00000(N+1) to the first generated item. The
// allocator lives for one run and is only touched from the sequential day
// loop, so no locking is needed.
type itemIDs struct {
	seq int
}

// newItemIDs creates an allocator starting after seed existing items.
func newItemIDs(seed int) *itemIDs {
	return &itemIDs{seq: seed}
}

// next returns the next item ID, formatted as ITEM-%06d.
func (a *itemIDs) next() string {
	a.seq++
	return fmt.Sprintf("ITEM-%06d", a.seq)
}

// current returns the last allocated sequence number.
func (a *itemIDs) current() int { return a.seq }
