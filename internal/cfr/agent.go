package cfr

import "math/rand/v2"

// Agent runs one goroutine's worth of external-sampling Monte Carlo CFR
// traversals against shared regret and strategy tables. It holds the
// iteration counter and the player it is currently training; the
// orchestrator advances both together via SetIteration, alternating
// which player's node enumerates every action (the trained player) and
// which is sampled from its own current strategy (the other player).
// This is a direct generalization of the reward-first recursive search
// in the original cfr.rs: the trained player's branch computes an exact
// counterfactual value over all of its own actions and feeds a regret
// delta; the other player's branch samples a single action and feeds a
// strategy delta, since repeatedly sampling from the current policy is
// what makes the accumulated strategy converge to the average strategy.
type Agent[G Game[G, A], A comparable] struct {
	regrets   *Router
	strategy  *Router
	rng       *rand.Rand
	iteration int
	onPlayer  Player
}

// NewAgent builds an Agent over shared regret/strategy routers, seeded
// with its own deterministic RNG so concurrent agents never contend on
// a shared generator.
func NewAgent[G Game[G, A], A comparable](regrets, strategy *Router, rng *rand.Rand) *Agent[G, A] {
	return &Agent[G, A]{regrets: regrets, strategy: strategy, rng: rng}
}

// SetIteration advances the agent to iteration t, toggling which player
// it trains this traversal: even t trains P1, odd t trains P2.
func (a *Agent[G, A]) SetIteration(t int) {
	a.iteration = t
	if t%2 == 0 {
		a.onPlayer = P1
	} else {
		a.onPlayer = P2
	}
}

// Search runs one external-sampling traversal of game at the agent's
// current iteration and trained player, folding regret and strategy
// deltas into the shared tables along the way. The second return value
// is false iff the traversal hit a shard that has been closed, in
// which case the float64 is meaningless and the whole call stack should
// unwind without trusting any partial result.
func (a *Agent[G, A]) Search(game G) (float64, bool) {
	if reward, ok := game.TerminalReward(); ok {
		return Pick(a.onPlayer, reward, -reward), true
	}

	mover, actions := game.CurrentTurn()
	key := game.InfoSet(mover)
	k := len(actions)

	probs, closed := a.regretMatch(mover, key, k)
	if closed {
		return 0, false
	}

	if mover == a.onPlayer {
		return a.searchTrainedPlayer(game, mover, actions, key, probs)
	}
	return a.searchSampledPlayer(game, mover, actions, key, probs)
}

func (a *Agent[G, A]) searchTrainedPlayer(game G, mover Player, actions []A, key InfoSetHash, probs []float64) (float64, bool) {
	k := len(actions)
	rewards := make([]float64, k)
	expected := 0.0
	for i, act := range actions {
		child := game.Clone()
		child.Apply(mover, act)
		reward, ok := a.Search(child)
		if !ok {
			return 0, false
		}
		rewards[i] = reward
		expected += probs[i] * reward
	}

	regrets := make([]float32, k)
	for i := range actions {
		regrets[i] = float32(rewards[i] - expected)
	}
	discountIteration := a.iteration/2 + 1
	if err := a.regrets.Handler(key).Delta(mover, key, regrets, discountIteration); err != nil {
		panic("cfr: regret delta failed: " + err.Error())
	}
	return expected, true
}

func (a *Agent[G, A]) searchSampledPlayer(game G, mover Player, actions []A, key InfoSetHash, probs []float64) (float64, bool) {
	strategyDeltas := make([]float32, len(probs))
	for i, p := range probs {
		strategyDeltas[i] = float32(p)
	}
	if err := a.strategy.Handler(key).Delta(mover, key, strategyDeltas, a.iteration); err != nil {
		panic("cfr: strategy delta failed: " + err.Error())
	}

	idx := sampleIndex(a.rng, probs)
	child := game.Clone()
	child.Apply(mover, actions[idx])
	return a.Search(child)
}

// regretMatch fetches the current regret entry for key and converts it
// to an action distribution: positive regret proportional to its share
// of the positive total, or uniform if no action carries positive
// regret. A singleton action set short-circuits without touching the
// table at all. closed is true iff the owning shard has been closed,
// in which case probs is nil and the caller must unwind.
func (a *Agent[G, A]) regretMatch(player Player, key InfoSetHash, k int) (probs []float64, closed bool) {
	if k == 1 {
		return []float64{1.0}, false
	}

	entry, shardClosed, err := a.regrets.Handler(key).Get(player, key)
	if err != nil {
		panic("cfr: regret get failed: " + err.Error())
	}
	if shardClosed {
		return nil, true
	}

	regrets := entry.Values
	if len(regrets) == 0 {
		return uniform(k), false
	}
	if len(regrets) != k {
		panic("cfr: infoset arity changed between visits")
	}

	sum := 0.0
	positive := make([]float64, k)
	for i, r := range regrets {
		if r > 0 {
			positive[i] = float64(r)
			sum += positive[i]
		}
	}
	if sum <= 0 {
		return uniform(k), false
	}
	out := make([]float64, k)
	for i := range positive {
		out[i] = positive[i] / sum
	}
	return out, false
}

func uniform(n int) []float64 {
	s := make([]float64, n)
	p := 1.0 / float64(n)
	for i := range s {
		s[i] = p
	}
	return s
}

// sampleIndex draws an index from probs, a discrete distribution that
// sums to 1 (up to floating-point slop); the last index absorbs any
// rounding remainder so the function always returns a valid index.
func sampleIndex(rng *rand.Rand, probs []float64) int {
	target := rng.Float64()
	cumulative := 0.0
	for i, p := range probs {
		cumulative += p
		if target < cumulative {
			return i
		}
	}
	return len(probs) - 1
}

// AverageStrategy applies the same regret-matching normalization to an
// accumulated strategy-sum entry, which is always non-negative, so this
// degenerates to a plain normalized average; uniform is returned for an
// infoset that was never visited. Used by the exploitability evaluator
// and by runtime play.
func AverageStrategy(values []float32, numActions int) []float64 {
	if len(values) != numActions {
		return uniform(numActions)
	}
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	if sum <= 0 {
		return uniform(numActions)
	}
	out := make([]float64, numActions)
	for i, v := range values {
		out[i] = float64(v) / sum
	}
	return out
}
