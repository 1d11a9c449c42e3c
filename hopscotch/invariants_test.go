package hopscotch

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BronzeBee/hopscotch/internal/hopslot"
)

// djb2HashInvariants is a private copy of the DJB2 hash used by
// table_test.go: this file lives in package hopscotch (not
// hopscotch_test) specifically to reach the unexported bucket array, so
// it cannot import that package's test helpers without an import cycle.
func djb2HashInvariants(s string) uintptr {
	h := uintptr(5381)
	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) + uintptr(s[i])
	}
	return h
}

// checkBitmapInvariants asserts the two bitmap invariants spec §8 calls
// out as first-class testable properties directly against the table's
// internal storage: every occupied bucket's offset-from-home bit is set
// in its home's HopInfo, and every set HopInfo bit names an offset that
// is actually occupied by an entry whose home is that slot. It also
// cross-checks the cheaper size/occupancy-count invariant.
func checkBitmapInvariants[K comparable, V any](t *testing.T, tbl *Table[K, V]) {
	t.Helper()

	occupied := 0
	for idx := range tbl.buckets {
		b := &tbl.buckets[idx]
		if !b.Occupied {
			continue
		}
		occupied++

		home := tbl.home(b.Key)
		offset := uintptr(idx) - home
		require.Truef(t, uintptr(idx) >= home && offset < hopslot.Width,
			"occupied bucket %d lies outside home %d's neighborhood", idx, home)
		require.Truef(t, tbl.buckets[home].HopInfo.Test(uint(offset)),
			"bucket %d is occupied but home %d's hop bit for offset %d is unset", idx, home, offset)
	}
	require.Equal(t, int(tbl.size), occupied, "size must equal the occupied bucket count")

	for home := range tbl.buckets {
		hop := tbl.buckets[home].HopInfo
		for p := uint(0); p < hopslot.Width; p++ {
			if !hop.Test(p) {
				continue
			}
			idx := uintptr(home) + uintptr(p)
			require.Lessf(t, idx, tbl.capacity, "home %d's hop bit %d points past capacity", home, p)
			b := &tbl.buckets[idx]
			require.Truef(t, b.Occupied, "home %d's hop bit %d names unoccupied bucket %d", home, p, idx)
			require.Equalf(t, uintptr(home), tbl.home(b.Key),
				"home %d's hop bit %d names bucket %d whose actual home differs", home, p, idx)
		}
	}
}

// TestBitmapInvariantsAfterEveryMutatingOp runs a randomized sequence of
// Put and Remove operations against the table and against a builtin map
// used as a model, asserting checkBitmapInvariants after every single
// mutation rather than once at the end. This is the white-box companion
// to the black-box TestCrossCheck in table_test.go: TestCrossCheck
// cannot reach the unexported bucket array to check the bitmap
// invariants directly, so it only checks observable behavior, while this
// test checks the actual hop-info bookkeeping the spec calls out.
func TestBitmapInvariantsAfterEveryMutatingOp(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tbl := New[string, int](djb2HashInvariants)
	model := make(map[string]int)

	const nops = 3000
	const keyspace = 400

	for i := 0; i < nops; i++ {
		key := fmt.Sprintf("bm-key-%d", rng.Intn(keyspace))

		if rng.Intn(3) == 2 {
			delete(model, key)
			tbl.Remove(key)
		} else {
			val := rng.Intn(1 << 20)
			model[key] = val
			_, err := tbl.Put(key, val)
			require.NoError(t, err)
		}

		checkBitmapInvariants(t, tbl)
	}

	require.Equal(t, len(model), tbl.Size())
	for k, v := range model {
		got, ok := tbl.Get(k)
		require.True(t, ok)
		require.Equal(t, v, got)
	}
}
