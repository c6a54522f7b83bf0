package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfrengine/internal/cfr"
)

func TestTicTacToeP1WinsTopRow(t *testing.T) {
	g := NewTicTacToe()
	moves := []struct {
		player cfr.Player
		cell   int
	}{
		{cfr.P1, 0}, {cfr.P2, 3},
		{cfr.P1, 1}, {cfr.P2, 4},
		{cfr.P1, 2}, // completes top row
	}
	for _, m := range moves {
		g.Apply(m.player, m.cell)
	}
	reward, ok := g.TerminalReward()
	require.True(t, ok)
	assert.Equal(t, 1.0, reward)
}

func TestTicTacToeDraw(t *testing.T) {
	g := NewTicTacToe()
	// A standard drawn game.
	sequence := []int{0, 1, 2, 4, 3, 5, 7, 6, 8}
	player := cfr.P1
	for _, cell := range sequence {
		g.Apply(player, cell)
		player = player.Other()
	}
	reward, ok := g.TerminalReward()
	require.True(t, ok)
	assert.Equal(t, 0.0, reward)
}

func TestTicTacToeIllegalMovePanics(t *testing.T) {
	g := NewTicTacToe()
	g.Apply(cfr.P1, 0)
	assert.Panics(t, func() { g.Apply(cfr.P2, 0) })
}

func TestTicTacToeWrongPlayerPanics(t *testing.T) {
	g := NewTicTacToe()
	assert.Panics(t, func() { g.Apply(cfr.P2, 0) })
}

func TestTicTacToeInfoSetIgnoresPlayer(t *testing.T) {
	g := NewTicTacToe()
	g.Apply(cfr.P1, 4)
	assert.Equal(t, g.InfoSet(cfr.P1), g.InfoSet(cfr.P2))
}

func TestTicTacToeCloneIsIndependent(t *testing.T) {
	g := NewTicTacToe()
	clone := g.Clone()
	clone.Apply(cfr.P1, 0)

	_, actions := g.CurrentTurn()
	assert.Len(t, actions, 9, "the original board must still be empty")
}
