package commonroad

import (
	"sync/atomic"
)

// IDAllocator hands out monotonically increasing identifiers. Safe for concurrent use
type IDAllocator struct {
	next atomic.Int64
}

// NewIDAllocator returns allocator which first identifier is start
func NewIDAllocator(start int64) *IDAllocator {
	allocator := &IDAllocator{}
	allocator.next.Store(start)
	return allocator
}

// Next returns new identifier
func (allocator *IDAllocator) Next() int64 {
	return allocator.next.Add(1) - 1
}

// Peek returns identifier which will be handed out next
func (allocator *IDAllocator) Peek() int64 {
	return allocator.next.Load()
}
