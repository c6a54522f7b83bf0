package eval

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lox/cfrengine/internal/cfr"
)

// actionStat is one action's running visit count and total backed-up
// value at a UCT node.
type actionStat struct {
	visits float64
	total  float64
}

// mctsShard holds UCT statistics for a disjoint slice of infosets,
// mirroring the regret engine's sharding discipline: a position hash
// selects a shard, and only that shard's mutex is contended.
type mctsShard struct {
	mu    sync.Mutex
	stats map[uint64][]actionStat
}

func (s *mctsShard) selectAction(key uint64, k int, exploration float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[key]
	if !ok {
		st = make([]actionStat, k)
		s.stats[key] = st
	}

	total := 0.0
	for _, a := range st {
		total += a.visits
	}
	best := 0
	bestScore := math.Inf(-1)
	for i, a := range st {
		if a.visits == 0 {
			return i
		}
		mean := a.total / a.visits
		score := mean + exploration*math.Sqrt(math.Log(total+1)/a.visits)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

func (s *mctsShard) backup(key uint64, idx int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats[key]
	st[idx].visits++
	st[idx].total += value
}

// MCTSEvaluator approximates a player's best response via UCT search,
// sampling the opponent from the engine's current average strategy
// rather than exploring their tree exhaustively. Statistics are
// partitioned into shards keyed by infoset hash, the same partitioning
// scheme the regret tables use, so parallel rollouts contend on at most
// one shard mutex per node visited.
type MCTSEvaluator struct {
	shards      []*mctsShard
	exploration float64
	strategy    *cfr.Router
}

// NewMCTSEvaluator builds an evaluator with numShards UCT shards and the
// given UCT exploration constant, sampling opponent moves from
// strategy.
func NewMCTSEvaluator(numShards int, exploration float64, strategy *cfr.Router) *MCTSEvaluator {
	shards := make([]*mctsShard, numShards)
	for i := range shards {
		shards[i] = &mctsShard{stats: make(map[uint64][]actionStat)}
	}
	return &MCTSEvaluator{shards: shards, exploration: exploration, strategy: strategy}
}

func (e *MCTSEvaluator) shardFor(key uint64) *mctsShard {
	return e.shards[key%uint64(len(e.shards))]
}

// rollout runs one UCT-guided path from game to a terminal for player,
// selecting player's actions via UCT and the opponent's via the average
// strategy, then backs up the resulting value along player's nodes.
func rollout[G cfr.Game[G, A], A comparable](e *MCTSEvaluator, game G, player cfr.Player, rng *rand.Rand) float64 {
	if reward, ok := game.TerminalReward(); ok {
		return cfr.Pick(player, reward, -reward)
	}

	mover, actions := game.CurrentTurn()
	key := uint64(game.InfoSet(mover))
	k := len(actions)

	if mover == player {
		shard := e.shardFor(key)
		idx := shard.selectAction(key, k, e.exploration)
		child := game.Clone()
		child.Apply(mover, actions[idx])
		value := rollout(e, child, player, rng)
		shard.backup(key, idx, value)
		return value
	}

	probs := e.opponentStrategy(cfr.InfoSetHash(key), mover, k)
	idx := sampleWeighted(rng, probs)
	child := game.Clone()
	child.Apply(mover, actions[idx])
	return rollout(e, child, player, rng)
}

func (e *MCTSEvaluator) opponentStrategy(key cfr.InfoSetHash, mover cfr.Player, k int) []float64 {
	entry, closed, err := e.strategy.Handler(key).Get(mover, key)
	if err != nil {
		panic("eval: strategy get failed: " + err.Error())
	}
	if closed {
		return uniformProbs(k)
	}
	return cfr.AverageStrategy(entry.Values, k)
}

func uniformProbs(k int) []float64 {
	probs := make([]float64, k)
	p := 1.0 / float64(k)
	for i := range probs {
		probs[i] = p
	}
	return probs
}

func sampleWeighted(rng *rand.Rand, probs []float64) int {
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

// RunMCTS launches workers goroutines, each running its share of
// rollouts rollouts with its own RNG, and returns the average
// backed-up value observed at the root -- an estimate of player's best
// response value against the opponent's current average strategy.
// Mirrors the teacher's errgroup-based Monte Carlo worker pool.
func RunMCTS[G cfr.Game[G, A], A comparable](ctx context.Context, e *MCTSEvaluator, newGame func() G, player cfr.Player, rollouts, workers int, seed uint64) (float64, error) {
	if workers < 1 {
		workers = 1
	}
	per := rollouts / workers
	remainder := rollouts % workers

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan float64, workers)

	for w := 0; w < workers; w++ {
		workerRollouts := per
		if w < remainder {
			workerRollouts++
		}
		workerSeed := seed + uint64(w)
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(workerSeed, workerSeed^0x9e3779b97f4a7c15))
			sum := 0.0
			for i := 0; i < workerRollouts; i++ {
				sum += rollout(e, newGame(), player, rng)
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
			}
			select {
			case results <- sum:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	total := 0.0
	for sum := range results {
		total += sum
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if rollouts == 0 {
		return 0, nil
	}
	return total / float64(rollouts), nil
}
