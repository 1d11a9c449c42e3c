package hopslot

// Bucket is a single slot in the table's storage array. HopInfo and the
// occupant triple describe two distinct things about the same slot: the
// occupant triple (Occupied, Key, Value) is what this slot currently
// holds, while HopInfo is the neighborhood bitmap owned by this slot as a
// *home*, describing which of its Width neighbors are occupied by
// entries that call this slot home. The two never move together: hop
// displacement swaps occupants between slots without touching either
// slot's HopInfo.
type Bucket[K comparable, V any] struct {
	HopInfo  Bitmap
	Occupied bool
	Key      K
	Value    V
}

// ClearOccupant resets the occupant triple to the zero state, releasing
// any references the key or value hold so the garbage collector can
// reclaim them.
func (b *Bucket[K, V]) ClearOccupant() {
	var zeroK K
	var zeroV V
	b.Occupied = false
	b.Key = zeroK
	b.Value = zeroV
}
