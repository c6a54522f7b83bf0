package cfr

// Entry is one table row: the per-action regret or strategy mass for a
// single infoset, keyed by the action's position in the CurrentTurn
// action slice rather than by the action value itself, since actions
// need only be comparable, not orderable or serializable.
type Entry struct {
	Values []float32
}

// clone returns a deep copy so a reader's Entry is never aliased with the
// owner's internal storage.
func (e Entry) clone() Entry {
	out := make([]float32, len(e.Values))
	copy(out, e.Values)
	return Entry{Values: out}
}

// getRequest asks a shard owner for the current entry in player's table
// at key, replying on Reply. An owner that has been closed replies with
// closed=true and a zero Entry.
type getRequest struct {
	Player Player
	Key    InfoSetHash
	Reply  chan getResponse
}

type getResponse struct {
	Entry  Entry
	Closed bool
}

// deltaRequest asks a shard owner to fold Values into player's entry at
// key for the given iteration, applying the owner's discount law per
// scalar. Deltas delivered after Close has been observed are silently
// dropped -- there is no reply channel because the traversal that emits
// a delta never needs to block on its application, only on reads.
type deltaRequest struct {
	Player    Player
	Key       InfoSetHash
	Values    []float32
	Iteration int
}

// closeRequest asks a shard owner to stop serving and release its
// storage handle. Close is idempotent: a second Close on an already
// closed owner is a no-op.
type closeRequest struct {
	Done chan struct{}
}
