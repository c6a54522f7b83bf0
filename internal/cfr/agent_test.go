package cfr

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matrixGame is a minimal simultaneous-move two-player zero-sum game
// used to exercise the engine without depending on internal/games (that
// package imports internal/cfr, so a reverse import would cycle).
type matrixGame struct {
	payoff [][]float64
	p1, p2 *int
}

func newMatrixGame(payoff [][]float64) *matrixGame {
	return &matrixGame{payoff: payoff}
}

func (g *matrixGame) CurrentTurn() (Player, []int) {
	n := len(g.payoff)
	moves := make([]int, n)
	for i := range moves {
		moves[i] = i
	}
	if g.p1 == nil {
		return P1, moves
	}
	return P2, moves
}

func (g *matrixGame) Apply(player Player, action int) {
	if player == P1 {
		g.p1 = &action
		return
	}
	g.p2 = &action
}

func (g *matrixGame) TerminalReward() (float64, bool) {
	if g.p1 == nil || g.p2 == nil {
		return 0, false
	}
	return g.payoff[*g.p1][*g.p2], true
}

func (g *matrixGame) InfoSet(Player) InfoSetHash {
	return 0
}

func (g *matrixGame) Clone() *matrixGame {
	clone := *g
	return &clone
}

func matchingPennies() *matrixGame {
	return newMatrixGame([][]float64{{1, -1}, {-1, 1}})
}

func rockPaperScissors() *matrixGame {
	return newMatrixGame([][]float64{{0, -1, 1}, {1, 0, -1}, {-1, 1, 0}})
}

// fakeStore is a minimal in-memory Store used only by this package's own
// tests, since internal/backend imports internal/cfr and therefore
// cannot be imported back from an internal (package cfr) test file
// without an import cycle.
type fakeStore struct {
	entries map[InfoSetHash][]float32
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[InfoSetHash][]float32)}
}

func (s *fakeStore) Get(key InfoSetHash) ([]float32, bool) {
	v, ok := s.entries[key]
	return v, ok
}

func (s *fakeStore) Put(key InfoSetHash, values []float32) error {
	s.entries[key] = values
	return nil
}

func (s *fakeStore) Close() error { return nil }

func newTestRouter(kind TableKind) *Router {
	return NewRouter(kind, DefaultDiscountParams(), []ShardStores{
		{P1: newFakeStore(), P2: newFakeStore()},
	})
}

func TestAgentZeroSumAtTerminal(t *testing.T) {
	regrets := newTestRouter(RegretTableKind)
	defer func() { regrets.CloseAll(); regrets.Shutdown() }()
	strategy := newTestRouter(StrategyTableKind)
	defer func() { strategy.CloseAll(); strategy.Shutdown() }()

	// A fully played-out game is already terminal, so Search returns
	// immediately from the base case with no table access or sampling --
	// the cleanest place to pin down on_player = P1 versus on_player =
	// P2 returning negated values for the identical fixed position.
	game := matchingPennies()
	game.Apply(P1, 0)
	game.Apply(P2, 1)

	rng := rand.New(rand.NewPCG(1, 2))
	agent := NewAgent[*matrixGame, int](regrets, strategy, rng)

	agent.SetIteration(0) // even -> on_player = P1
	vP1, ok := agent.Search(game.Clone())
	require.True(t, ok)

	agent.SetIteration(1) // odd -> on_player = P2
	vP2, ok := agent.Search(game.Clone())
	require.True(t, ok)

	assert.Equal(t, -vP1, vP2)
}

func TestAgentSearchValueStaysWithinPayoffRange(t *testing.T) {
	regrets := newTestRouter(RegretTableKind)
	defer func() { regrets.CloseAll(); regrets.Shutdown() }()
	strategy := newTestRouter(StrategyTableKind)
	defer func() { strategy.CloseAll(); strategy.Shutdown() }()

	rng := rand.New(rand.NewPCG(1, 2))
	agent := NewAgent[*matrixGame, int](regrets, strategy, rng)

	for i := 0; i < 50; i++ {
		agent.SetIteration(i)
		v, ok := agent.Search(matchingPennies())
		require.True(t, ok)
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestRegretMatchSingletonAction(t *testing.T) {
	regrets := newTestRouter(RegretTableKind)
	defer func() { regrets.CloseAll(); regrets.Shutdown() }()
	strategy := newTestRouter(StrategyTableKind)
	defer func() { strategy.CloseAll(); strategy.Shutdown() }()

	rng := rand.New(rand.NewPCG(1, 2))
	agent := NewAgent[*matrixGame, int](regrets, strategy, rng)

	probs, closed := agent.regretMatch(P1, InfoSetHash(42), 1)
	assert.False(t, closed)
	assert.Equal(t, []float64{1.0}, probs)
}

func TestRegretMatchOutputIsADistribution(t *testing.T) {
	regrets := newTestRouter(RegretTableKind)
	defer func() { regrets.CloseAll(); regrets.Shutdown() }()
	strategy := newTestRouter(StrategyTableKind)
	defer func() { strategy.CloseAll(); strategy.Shutdown() }()

	rng := rand.New(rand.NewPCG(7, 9))
	agent := NewAgent[*matrixGame, int](regrets, strategy, rng)

	// Seed a regret entry with mixed-sign values via a real delta.
	key := InfoSetHash(7)
	require.NoError(t, regrets.Handler(key).Delta(P1, key, []float32{3, -1, 2}, 1))

	probs, closed := agent.regretMatch(P1, key, 3)
	require.False(t, closed)
	require.Len(t, probs, 3)
	sum := 0.0
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestConvergesToMatchingPenniesEquilibrium(t *testing.T) {
	if testing.Short() {
		t.Skip("long-running equilibrium convergence check")
	}
	regrets := newTestRouter(RegretTableKind)
	defer func() { regrets.CloseAll(); regrets.Shutdown() }()
	strategy := newTestRouter(StrategyTableKind)
	defer func() { strategy.CloseAll(); strategy.Shutdown() }()

	rng := rand.New(rand.NewPCG(11, 13))
	agent := NewAgent[*matrixGame, int](regrets, strategy, rng)

	const iterations = 50_000
	for i := 0; i < iterations; i++ {
		agent.SetIteration(i)
		_, ok := agent.Search(matchingPennies())
		require.True(t, ok)
	}

	key := InfoSetHash(0)
	entry, closed, err := strategy.Handler(key).Get(P1, key)
	require.NoError(t, err)
	require.False(t, closed)
	probs := AverageStrategy(entry.Values, 2)
	assert.InDelta(t, 0.5, probs[0], 0.05)
	assert.InDelta(t, 0.5, probs[1], 0.05)
}

func TestConvergesToRockPaperScissorsEquilibrium(t *testing.T) {
	if testing.Short() {
		t.Skip("long-running equilibrium convergence check")
	}
	regrets := newTestRouter(RegretTableKind)
	defer func() { regrets.CloseAll(); regrets.Shutdown() }()
	strategy := newTestRouter(StrategyTableKind)
	defer func() { strategy.CloseAll(); strategy.Shutdown() }()

	rng := rand.New(rand.NewPCG(17, 19))
	agent := NewAgent[*matrixGame, int](regrets, strategy, rng)

	const iterations = 80_000
	for i := 0; i < iterations; i++ {
		agent.SetIteration(i)
		_, ok := agent.Search(rockPaperScissors())
		require.True(t, ok)
	}

	key := InfoSetHash(0)
	entry, closed, err := strategy.Handler(key).Get(P1, key)
	require.NoError(t, err)
	require.False(t, closed)
	probs := AverageStrategy(entry.Values, 3)
	for _, p := range probs {
		assert.InDelta(t, 1.0/3.0, p, 0.05)
	}
}
