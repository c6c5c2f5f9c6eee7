package engine

import "time"

// Item is the full metadata view of an entry returned by get_item/
// peek_item/get_items/peek_items.
type Item[T any] struct {
	Partition   string
	Key         string
	Value       T
	Interval    time.Duration
	UTCExpiry   time.Time
	UTCCreation time.Time
	ParentKeys  []string
}
