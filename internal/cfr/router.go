package cfr

// Router fans a table out across several shard owners by taking the
// infoset hash modulo the shard count, the same partitioning scheme the
// original regret sharder used ahead of per-shard channels.
type Router struct {
	handlers []*InProcessHandler
	owners   []*Owner
}

// ShardStores is the pair of per-player Stores backing one shard owner.
type ShardStores struct {
	P1 Store
	P2 Store
}

// NewRouter builds a Router over one freshly constructed Owner per
// shard's store pair, starting each Owner on its own goroutine.
func NewRouter(kind TableKind, discount DiscountParams, shards []ShardStores) *Router {
	r := &Router{
		handlers: make([]*InProcessHandler, len(shards)),
		owners:   make([]*Owner, len(shards)),
	}
	for i, shard := range shards {
		owner := NewOwner(kind, discount, shard.P1, shard.P2)
		r.owners[i] = owner
		r.handlers[i] = NewInProcessHandler(owner)
		go owner.Run()
	}
	return r
}

// NumShards reports how many owners the table is split across.
func (r *Router) NumShards() int {
	return len(r.handlers)
}

// Handler returns the handler owning key's shard.
func (r *Router) Handler(key InfoSetHash) *InProcessHandler {
	idx := int(uint64(key) % uint64(len(r.handlers)))
	return r.handlers[idx]
}

// CloseAll logically closes every shard (future Get calls observe
// Closed) without stopping owner goroutines. Call Shutdown afterward,
// once every CFR agent using this Router has been joined.
func (r *Router) CloseAll() {
	for _, h := range r.handlers {
		h.Close()
	}
}

// Shutdown stops every owner goroutine. Must only be called after
// CloseAll and after every producer goroutine (CFR agents) has exited.
func (r *Router) Shutdown() {
	for _, o := range r.owners {
		o.Shutdown()
	}
}
