// Package hopslot provides the low-level neighborhood bitmap and bucket
// types shared by the hopscotch table engine. It has no notion of a
// "table" of its own; it only models the per-slot occupancy bookkeeping.
package hopslot

// Width is the fixed size of a bucket's neighborhood window, H in the
// hopscotch literature. Every invariant of the engine is stated in terms
// of this constant; changing it is a breaking change to the bucket
// layout, not a configuration knob.
const Width = 32

// Bitmap is a neighborhood occupancy mask: bit p records whether the
// bucket at offset p from the owning home slot is occupied by an entry
// whose home is that slot.
type Bitmap uint32

// Set marks offset pos as occupied.
func (b *Bitmap) Set(pos uint) {
	*b |= Bitmap(1) << pos
}

// Clear marks offset pos as unoccupied.
func (b *Bitmap) Clear(pos uint) {
	*b &^= Bitmap(1) << pos
}

// Test reports whether offset pos is occupied.
func (b Bitmap) Test(pos uint) bool {
	return b&(Bitmap(1)<<pos) != 0
}
