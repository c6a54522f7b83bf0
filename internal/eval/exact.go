// Package eval implements the two exploitability measures: an exact
// tree-walk best response for small games, and a sharded Monte Carlo
// tree search approximation for larger ones. Both fix the opponent to
// the engine's current average strategy and report how much a
// best-responding adversary could gain against it.
package eval

import (
	"math"

	"github.com/lox/cfrengine/internal/cfr"
)

// ExactBestResponse enumerates the full game tree once, computing
// player's best achievable value against the opponent's current average
// strategy (read from strategy). Feasible only for small games: every
// node is visited, and every opponent node additionally reads the
// strategy table.
func ExactBestResponse[G cfr.Game[G, A], A comparable](game G, player cfr.Player, strategy *cfr.Router) (float64, bool) {
	if reward, ok := game.TerminalReward(); ok {
		return cfr.Pick(player, reward, -reward), true
	}

	mover, actions := game.CurrentTurn()
	k := len(actions)

	if mover == player {
		best := math.Inf(-1)
		for _, act := range actions {
			child := game.Clone()
			child.Apply(mover, act)
			v, ok := ExactBestResponse(child, player, strategy)
			if !ok {
				return 0, false
			}
			if v > best {
				best = v
			}
		}
		return best, true
	}

	probs, ok := averageStrategyAt(game, mover, k, strategy)
	if !ok {
		return 0, false
	}
	expected := 0.0
	for i, act := range actions {
		child := game.Clone()
		child.Apply(mover, act)
		v, ok := ExactBestResponse(child, player, strategy)
		if !ok {
			return 0, false
		}
		expected += probs[i] * v
	}
	return expected, true
}

// Exploitability computes BR_P1 + BR_P2, each best-response value taken
// from the responding player's own perspective: how much P1 gains by
// best-responding plus how much P2 gains, relative to the
// average-strategy game value.
func Exploitability[G cfr.Game[G, A], A comparable](newGame func() G, strategy *cfr.Router) (float64, bool) {
	brP1, ok := ExactBestResponse(newGame(), cfr.P1, strategy)
	if !ok {
		return 0, false
	}
	brP2, ok := ExactBestResponse(newGame(), cfr.P2, strategy)
	if !ok {
		return 0, false
	}
	return brP1 + brP2, true
}

func averageStrategyAt[G cfr.Game[G, A], A comparable](game G, mover cfr.Player, k int, strategy *cfr.Router) ([]float64, bool) {
	key := game.InfoSet(mover)
	entry, closed, err := strategy.Handler(key).Get(mover, key)
	if err != nil {
		panic("eval: strategy get failed: " + err.Error())
	}
	if closed {
		return nil, false
	}
	return cfr.AverageStrategy(entry.Values, k), true
}
