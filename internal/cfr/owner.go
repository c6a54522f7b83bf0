package cfr

import "sync/atomic"

// request is a one-of envelope carrying exactly one of a get, delta, or
// close message into an Owner's run loop. Go has no sum types, so this
// plays the role the original channel-handler design gave to an enum.
type request struct {
	get   *getRequest
	delta *deltaRequest
	close *closeRequest
}

// Owner runs a single shard of a regret or strategy table on its own
// goroutine, serializing all reads and writes against two Stores (one
// per player) so neither store needs its own locking. A table is
// partitioned across several Owners by Router, one goroutine per shard,
// so that contention scales with shard count rather than serializing
// every CFR agent through a single owner.
type Owner struct {
	kind      TableKind
	discount  DiscountParams
	stores    [2]Store // indexed by Player
	requests  chan request
	closed    bool
	closedReq int64 // count of Close requests served, for tests/metrics
}

// NewOwner constructs an Owner over a pair of stores, one for each
// player's table. The returned Owner does not start running until Run
// is called on its own goroutine.
func NewOwner(kind TableKind, discount DiscountParams, p1Store, p2Store Store) *Owner {
	return &Owner{
		kind:     kind,
		discount: discount,
		stores:   [2]Store{P1: p1Store, P2: p2Store},
		requests: make(chan request, 64),
	}
}

func (o *Owner) store(player Player) Store {
	return o.stores[player]
}

// Run services requests until its request channel is closed by Shutdown.
// It must be called as `go owner.Run()`. Run returns once the channel is
// drained and closed, so the caller can wait on a WaitGroup.
func (o *Owner) Run() {
	for req := range o.requests {
		switch {
		case req.get != nil:
			o.handleGet(req.get)
		case req.delta != nil:
			o.handleDelta(req.delta)
		case req.close != nil:
			o.handleClose(req.close)
		}
	}
}

func (o *Owner) handleGet(req *getRequest) {
	if o.closed {
		req.Reply <- getResponse{Closed: true}
		return
	}
	values, ok := o.store(req.Player).Get(req.Key)
	if !ok {
		req.Reply <- getResponse{}
		return
	}
	req.Reply <- getResponse{Entry: Entry{Values: values}.clone()}
}

func (o *Owner) handleDelta(req *deltaRequest) {
	if o.closed {
		return
	}
	if len(req.Values) < 2 {
		return
	}
	store := o.store(req.Player)
	current, ok := store.Get(req.Key)
	if !ok {
		current = make([]float32, len(req.Values))
	}
	if len(current) != len(req.Values) {
		panic("cfr: delta arity mismatch against existing table entry")
	}
	next := make([]float32, len(current))
	for i, d := range req.Values {
		v := o.discount.Apply(o.kind, current[i], d, req.Iteration)
		if o.kind == RegretTableKind && o.discount.ClampNegativeRegrets && v < 0 {
			v = 0
		}
		next[i] = v
	}
	if err := store.Put(req.Key, next); err != nil {
		panic("cfr: store put failed: " + err.Error())
	}
}

func (o *Owner) handleClose(req *closeRequest) {
	atomic.AddInt64(&o.closedReq, 1)
	if !o.closed {
		o.closed = true
		for _, s := range o.stores {
			if err := s.Close(); err != nil {
				panic("cfr: store close failed: " + err.Error())
			}
		}
	}
	close(req.Done)
}

// Shutdown closes the Owner's request channel, letting Run drain and
// return. Callers must guarantee no goroutine sends on the Owner after
// calling Shutdown -- in practice this means joining every CFR agent
// first, since agents are the only producers.
func (o *Owner) Shutdown() {
	close(o.requests)
}
