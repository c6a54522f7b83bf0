package cfr

// Handler is how a CFR agent reaches a table shard. InProcessHandler is
// the only implementation today -- every shard owner runs as a goroutine
// in the same process as every agent -- but the interface exists so a
// later out-of-process transport (gRPC, a queue) can stand in without
// touching cfr.Agent, mirroring the provider/handler split the channel-
// based original drew between its in-memory and sled-backed handlers.
type Handler interface {
	// Get fetches player's current entry for key, or reports that the
	// owning shard has been closed.
	Get(player Player, key InfoSetHash) (Entry, bool, error)

	// Delta applies values as a regret or strategy delta to player's
	// entry at key, attributed to iteration. Delta never blocks on a
	// reply.
	Delta(player Player, key InfoSetHash, values []float32, iteration int) error
}

// InProcessHandler addresses a single Owner goroutine directly over Go
// channels.
type InProcessHandler struct {
	owner *Owner
}

// NewInProcessHandler wraps owner for use by a CFR agent.
func NewInProcessHandler(owner *Owner) *InProcessHandler {
	return &InProcessHandler{owner: owner}
}

func (h *InProcessHandler) Get(player Player, key InfoSetHash) (Entry, bool, error) {
	reply := make(chan getResponse, 1)
	h.owner.requests <- request{get: &getRequest{Player: player, Key: key, Reply: reply}}
	resp := <-reply
	return resp.Entry, resp.Closed, nil
}

func (h *InProcessHandler) Delta(player Player, key InfoSetHash, values []float32, iteration int) error {
	h.owner.requests <- request{delta: &deltaRequest{Player: player, Key: key, Values: values, Iteration: iteration}}
	return nil
}

// Close requests the owner stop serving future Gets/Deltas as closed.
// It does not stop the owner's goroutine -- that happens when the
// orchestrator calls Owner.Shutdown after every agent has been joined.
func (h *InProcessHandler) Close() {
	done := make(chan struct{})
	h.owner.requests <- request{close: &closeRequest{Done: done}}
	<-done
}
