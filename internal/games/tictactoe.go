package games

import "github.com/lox/cfrengine/internal/cfr"

// TicTacToe is standard 3x3 tic-tac-toe: perfect information (every
// infoset is just the board, since both players see the same thing),
// used as a small, fast exact-solvable target for the exploitability
// evaluator's tree walk.
type TicTacToe struct {
	board [9]uint8 // 0 empty, 1 P1, 2 P2
	turn  cfr.Player
	moves int
}

// NewTicTacToe returns an empty board with P1 to move first.
func NewTicTacToe() *TicTacToe {
	return &TicTacToe{turn: cfr.P1}
}

func mark(p cfr.Player) uint8 {
	return cfr.Pick(p, uint8(1), uint8(2))
}

func (g *TicTacToe) CurrentTurn() (cfr.Player, []int) {
	var open []int
	for i, v := range g.board {
		if v == 0 {
			open = append(open, i)
		}
	}
	return g.turn, open
}

func (g *TicTacToe) Apply(player cfr.Player, action int) {
	if player != g.turn {
		panic("games: wrong player acted in tic-tac-toe")
	}
	if action < 0 || action > 8 || g.board[action] != 0 {
		panic("games: illegal move in tic-tac-toe")
	}
	g.board[action] = mark(player)
	g.moves++
	g.turn = g.turn.Other()
}

var ticTacToeLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func (g *TicTacToe) winner() (uint8, bool) {
	for _, line := range ticTacToeLines {
		a, b, c := g.board[line[0]], g.board[line[1]], g.board[line[2]]
		if a != 0 && a == b && b == c {
			return a, true
		}
	}
	return 0, false
}

func (g *TicTacToe) TerminalReward() (float64, bool) {
	if w, ok := g.winner(); ok {
		if w == mark(cfr.P1) {
			return 1, true
		}
		return -1, true
	}
	if g.moves == 9 {
		return 0, true
	}
	return 0, false
}

// InfoSet is simply the full board: tic-tac-toe has no hidden
// information, so both players share the same view of every position.
func (g *TicTacToe) InfoSet(cfr.Player) cfr.InfoSetHash {
	var h uint64
	for _, v := range g.board {
		h = h*3 + uint64(v)
	}
	return cfr.InfoSetHash(h)
}

func (g *TicTacToe) Clone() *TicTacToe {
	clone := *g
	return &clone
}
