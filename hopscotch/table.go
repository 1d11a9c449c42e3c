// Package hopscotch implements an in-memory associative container keyed
// by comparable values, using the hopscotch hashing scheme: every entry
// is guaranteed to live within a fixed-size neighborhood of its home
// slot, which bounds lookups to a small constant number of equality
// checks regardless of load.
package hopscotch

import (
	"github.com/BronzeBee/hopscotch/internal/hopslot"
)

// HashFn computes the hash of a key. Implementations need not defend
// against adversarial input; a poor distribution degrades performance
// and, in the extreme (for example a constant hash), makes Put fail with
// ErrTooManyResizes, but it cannot violate the table's invariants.
type HashFn[K comparable] func(key K) uintptr

// KV is a single key/value pair, as returned by Entries.
type KV[K comparable, V any] struct {
	Key   K
	Value V
}

// Table is a hopscotch hash table mapping keys of type K to values of
// type V. The zero Table is not usable; construct one with New or
// NewExtended.
//
// Table is not safe for concurrent use. Any Put, Remove, or mutating
// ForEach must be externally serialized against all other operations,
// including read-only ones. The hash function and notify callbacks must
// never call back into the table they were given to; doing so is
// undefined behavior.
type Table[K comparable, V any] struct {
	buckets  []hopslot.Bucket[K, V]
	hashFn   HashFn[K]
	onKeyDel func(K)
	onValDel func(V)
	size     uintptr
	capacity uintptr
}

// New creates a table that uses hashFn to locate a key's home slot. Keys
// and values are never released through notify hooks; use NewExtended
// for that.
func New[K comparable, V any](hashFn HashFn[K]) *Table[K, V] {
	return NewExtended[K, V](hashFn, nil, nil)
}

// NewExtended is like New but additionally invokes onKeyDel and onValDel
// whenever a key or value reference is dropped from the table: on
// Remove and on Close, always in (key, then value) order; on overwrite
// via Put, only onValDel fires, for the value being replaced (the
// stored key reference never changes on overwrite, so it is never
// reported as removed). Either callback may be nil.
func NewExtended[K comparable, V any](hashFn HashFn[K], onKeyDel func(K), onValDel func(V)) *Table[K, V] {
	return &Table[K, V]{
		buckets:  make([]hopslot.Bucket[K, V], hopslot.InitialCapacity),
		hashFn:   hashFn,
		onKeyDel: onKeyDel,
		onValDel: onValDel,
		capacity: hopslot.InitialCapacity,
	}
}

// home returns the index of key's home slot for the table's current
// capacity.
//
//go:inline
func (t *Table[K, V]) home(key K) uintptr {
	return t.hashFn(key) % t.capacity
}

// search looks for key within the neighborhood of home, returning the
// index it was found at. It never inspects more than hopslot.Width
// buckets.
//
//go:inline
func (t *Table[K, V]) search(home uintptr, key K) (uintptr, bool) {
	hop := t.buckets[home].HopInfo
	for p := uint(0); p < hopslot.Width; p++ {
		if !hop.Test(p) {
			continue
		}
		idx := home + uintptr(p)
		if t.buckets[idx].Key == key {
			return idx, true
		}
	}
	return 0, false
}

// Get returns the value stored for key, and whether it was present.
func (t *Table[K, V]) Get(key K) (V, bool) {
	idx, found := t.search(t.home(key), key)
	if !found {
		var zero V
		return zero, false
	}
	return t.buckets[idx].Value, true
}

// Has reports whether key is present in the table.
func (t *Table[K, V]) Has(key K) bool {
	_, found := t.search(t.home(key), key)
	return found
}

// Size returns the number of entries currently stored.
func (t *Table[K, V]) Size() int {
	return int(t.size)
}

// IsEmpty reports whether the table holds no entries.
func (t *Table[K, V]) IsEmpty() bool {
	return t.size == 0
}

// LoadFactor returns size/capacity. It is informational only; the
// engine never resizes on its own in response to it, only when an
// insert cannot otherwise find room.
func (t *Table[K, V]) LoadFactor() float64 {
	return float64(t.size) / float64(t.capacity)
}

// Put maps key to val, overwriting any existing value for key. It
// reports whether key was newly inserted (false means an existing
// entry was overwritten). An error is returned only if the rehash
// driver could not find a capacity at which every entry fits its
// neighborhood within hopslot.MaxResizeAttempts doublings, counted
// across every rehash this call triggers; in that case the table keeps
// the bucket array, capacity and entries it had before the call.
func (t *Table[K, V]) Put(key K, val V) (bool, error) {
	oldBuckets, oldCapacity := t.buckets, t.capacity
	resizes := 0
	for {
		isNew, ok := t.putOnce(key, val)
		if ok {
			return isNew, nil
		}
		if err := t.rehash(&resizes); err != nil {
			t.buckets, t.capacity = oldBuckets, oldCapacity
			return false, err
		}
	}
}

// putOnce attempts a single insert at the table's current capacity. ok
// is false if no placement could be found and the caller should grow
// the table and retry.
func (t *Table[K, V]) putOnce(key K, val V) (isNew bool, ok bool) {
	home := t.home(key)

	if idx, found := t.search(home, key); found {
		old := t.buckets[idx].Value
		t.buckets[idx].Value = val
		if t.onValDel != nil {
			t.onValDel(old)
		}
		return false, true
	}

	if !t.emplace(key, val, home) {
		return false, false
	}
	return true, true
}

// emplace places a key known not to already be present, starting the
// search for room at home. It returns false if no placement could be
// made to satisfy the neighborhood invariant, in which case the key is
// not stored; displacement swaps made before the dead end are kept, and
// each of them leaves the moved entry inside its own neighborhood.
func (t *Table[K, V]) emplace(key K, val V, home uintptr) bool {
	// Forward scan for the nearest empty slot. Running off the last
	// bucket without finding one counts as failure, even if the last
	// bucket happens to be occupied: the engine never wraps around.
	index := home
	for t.buckets[index].Occupied && index < t.capacity-1 {
		index++
	}
	if t.buckets[index].Occupied {
		return false
	}
	empty := index

	for empty-home >= hopslot.Width {
		start := empty + 1 - hopslot.Width
		moved := false

		for c := start; c < empty; c++ {
			cHome := t.home(t.buckets[c].Key)
			if empty-cHome >= hopslot.Width {
				// moving c's occupant to empty would put it
				// outside its own neighborhood; not a candidate
				continue
			}

			t.swapOccupants(c, empty)
			t.buckets[cHome].HopInfo.Clear(uint(c - cHome))
			t.buckets[cHome].HopInfo.Set(uint(empty - cHome))

			empty = c
			moved = true
			break
		}

		if !moved {
			return false
		}
	}

	t.buckets[home].HopInfo.Set(uint(empty - home))
	t.buckets[empty].Key = key
	t.buckets[empty].Value = val
	t.buckets[empty].Occupied = true
	t.size++
	return true
}

// swapOccupants exchanges the (Key, Value, Occupied) triple of two
// buckets without touching either bucket's HopInfo: HopInfo belongs to
// the slot in its role as a home, not to whatever currently occupies it.
//
//go:inline
func (t *Table[K, V]) swapOccupants(a, b uintptr) {
	t.buckets[a].Key, t.buckets[b].Key = t.buckets[b].Key, t.buckets[a].Key
	t.buckets[a].Value, t.buckets[b].Value = t.buckets[b].Value, t.buckets[a].Value
	t.buckets[a].Occupied, t.buckets[b].Occupied = t.buckets[b].Occupied, t.buckets[a].Occupied
}

// rehash doubles capacity and reinserts every live entry into a scratch
// array, repeating with further doublings if a reinsertion pass hits a
// dead end. Notify hooks are never invoked by this process: entries are
// being relocated, not dropped.
//
// resizes is owned by the calling Put and threaded through every rehash
// it triggers, so hopslot.MaxResizeAttempts bounds the total number of
// doublings across the whole Put call, not just this one invocation.
// That distinction matters: reinserting the entries already in the
// table can succeed trivially at a freshly doubled capacity even while
// the key Put is actually trying to place still cannot fit anywhere (a
// home slot's neighborhood is permanently saturated, which no amount of
// growing capacity elsewhere can fix), so Put can end up calling rehash
// many times for a single insert. Resetting the count on every call
// would let that loop run forever instead of terminating with
// ErrTooManyResizes.
func (t *Table[K, V]) rehash(resizes *int) error {
	newCapacity := t.capacity

	for {
		if *resizes >= hopslot.MaxResizeAttempts {
			return hopslot.ErrTooManyResizes
		}
		*resizes++

		newCapacity *= 2
		scratch := &Table[K, V]{
			buckets:  make([]hopslot.Bucket[K, V], newCapacity),
			hashFn:   t.hashFn,
			capacity: newCapacity,
		}

		ok := true
		for i := range t.buckets {
			if !t.buckets[i].Occupied {
				continue
			}
			key := t.buckets[i].Key
			if !scratch.emplace(key, t.buckets[i].Value, scratch.home(key)) {
				ok = false
				break
			}
		}

		if ok {
			t.buckets = scratch.buckets
			t.capacity = scratch.capacity
			return nil
		}
	}
}

// Remove deletes key from the table, if present. It is a no-op if key
// is absent. If notify hooks are configured, the key-removed hook fires
// before the value-removed hook.
func (t *Table[K, V]) Remove(key K) {
	home := t.home(key)
	idx, found := t.search(home, key)
	if !found {
		return
	}

	t.buckets[home].HopInfo.Clear(uint(idx - home))

	k := t.buckets[idx].Key
	v := t.buckets[idx].Value
	t.buckets[idx].ClearOccupant()
	t.size--

	if t.onKeyDel != nil {
		t.onKeyDel(k)
	}
	if t.onValDel != nil {
		t.onValDel(v)
	}
}

// Keys returns a freshly allocated slice holding every key currently
// stored, in unspecified order.
func (t *Table[K, V]) Keys() []K {
	out := make([]K, 0, t.size)
	t.ForEach(func(k K, _ V) bool {
		out = append(out, k)
		return false
	})
	return out
}

// Values returns a freshly allocated slice holding every value
// currently stored, in unspecified order.
func (t *Table[K, V]) Values() []V {
	out := make([]V, 0, t.size)
	t.ForEach(func(_ K, v V) bool {
		out = append(out, v)
		return false
	})
	return out
}

// Entries returns a freshly allocated slice holding every key/value
// pair currently stored, in unspecified order.
func (t *Table[K, V]) Entries() []KV[K, V] {
	out := make([]KV[K, V], 0, t.size)
	t.ForEach(func(k K, v V) bool {
		out = append(out, KV[K, V]{Key: k, Value: v})
		return false
	})
	return out
}

// ForEach calls visitor once for every key/value pair in the table, in
// unspecified and implementation-defined order that may change across
// resizes. Iteration stops early if visitor returns true.
func (t *Table[K, V]) ForEach(visitor func(key K, val V) bool) {
	for i := range t.buckets {
		if !t.buckets[i].Occupied {
			continue
		}
		if visitor(t.buckets[i].Key, t.buckets[i].Value) {
			return
		}
	}
}

// Close releases the table's storage. If either notify hook is
// configured, every occupied bucket is reported first, key then value,
// in the same order Remove uses. After Close the table must not be used
// again.
func (t *Table[K, V]) Close() {
	if t.onKeyDel != nil || t.onValDel != nil {
		for i := range t.buckets {
			if !t.buckets[i].Occupied {
				continue
			}
			if t.onKeyDel != nil {
				t.onKeyDel(t.buckets[i].Key)
			}
			if t.onValDel != nil {
				t.onValDel(t.buckets[i].Value)
			}
		}
	}
	t.buckets = nil
	t.size = 0
}
