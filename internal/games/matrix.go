// Package games provides sample two-player zero-sum games satisfying
// cfr.Game, used to exercise the engine and as targets for its test
// suite: a one-shot matrix game, tic-tac-toe, one-card poker, and a
// simplified player-relative variant of Skulls.
package games

import "github.com/lox/cfrengine/internal/cfr"

// Move indexes a row or column of a Matrix game's payoff matrix.
type Move = int

// Matrix is a one-shot simultaneous-move game: each player picks a move
// in [0, numMoves) without seeing the other's choice, and P1's payoff is
// matrix[numMoves*p1Move + p2Move]. Rock-paper-scissors and matching
// pennies are both instances. Neither player observes anything before
// choosing, so InfoSet is constant -- there is only one decision point
// per player.
type Matrix struct {
	numMoves int
	matrix   []float64
	p1Move   *Move
	p2Move   *Move
}

// NewMatrix constructs a Matrix game from a row-major numMoves x
// numMoves payoff matrix giving P1's payoff for each (p1Move, p2Move)
// pair. It panics if the matrix is not square.
func NewMatrix(numMoves int, matrix []float64) *Matrix {
	if len(matrix) != numMoves*numMoves {
		panic("games: matrix length must be numMoves^2")
	}
	return &Matrix{numMoves: numMoves, matrix: matrix}
}

// NewRockPaperScissors returns the standard rock/paper/scissors matrix
// game: moves 0, 1, 2 are rock, paper, scissors.
func NewRockPaperScissors() *Matrix {
	return NewMatrix(3, []float64{
		0, -1, 1,
		1, 0, -1,
		-1, 1, 0,
	})
}

// NewMatchingPennies returns the classic two-move zero-sum game with no
// pure-strategy equilibrium: moves 0, 1 are heads, tails.
func NewMatchingPennies() *Matrix {
	return NewMatrix(2, []float64{
		1, -1,
		-1, 1,
	})
}

func (g *Matrix) CurrentTurn() (cfr.Player, []Move) {
	moves := make([]Move, g.numMoves)
	for i := range moves {
		moves[i] = i
	}
	if g.p1Move == nil {
		return cfr.P1, moves
	}
	return cfr.P2, moves
}

func (g *Matrix) Apply(player cfr.Player, action Move) {
	slot := cfr.PickRef(player, &g.p1Move, &g.p2Move)
	if *slot != nil {
		panic("games: player already moved in this matrix game")
	}
	m := action
	*slot = &m
}

func (g *Matrix) TerminalReward() (float64, bool) {
	if g.p1Move == nil || g.p2Move == nil {
		return 0, false
	}
	return g.matrix[g.numMoves*(*g.p1Move)+(*g.p2Move)], true
}

// InfoSet is constant: neither player observes anything before their
// single decision.
func (g *Matrix) InfoSet(cfr.Player) cfr.InfoSetHash {
	return 0
}

func (g *Matrix) Clone() *Matrix {
	clone := &Matrix{numMoves: g.numMoves, matrix: g.matrix}
	if g.p1Move != nil {
		m := *g.p1Move
		clone.p1Move = &m
	}
	if g.p2Move != nil {
		m := *g.p2Move
		clone.p2Move = &m
	}
	return clone
}
