package hopslot

// InitialCapacity is the number of buckets a freshly constructed table
// starts with. It equals Width: a table must always hold at least one
// full neighborhood.
const InitialCapacity = Width

// MaxResizeAttempts bounds the number of capacity doublings a single Put
// call will attempt, across every rehash invocation that call triggers,
// before giving up and surfacing ErrTooManyResizes. The count is not
// reset per rehash invocation: a key whose home neighborhood can never
// be freed by growing capacity (for example under a constant hash
// function saturating one home slot's neighborhood) must still
// terminate rather than double capacity forever. The source this engine
// is based on retries indefinitely, which can spin forever under a
// pathological hash function; this bound trades that risk for a
// well-defined failure, while staying generous enough that no realistic
// single insert needs more than a couple of doublings to find room.
const MaxResizeAttempts = 12
