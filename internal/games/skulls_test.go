package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfrengine/internal/cfr"
)

func TestSkullsDealsOneSkullTwoFlowers(t *testing.T) {
	g := NewSkulls(cfr.P1)
	assert.ElementsMatch(t, []Card{CardSkull, CardFlower, CardFlower}, g.hands[cfr.P1])
	assert.ElementsMatch(t, []Card{CardSkull, CardFlower, CardFlower}, g.hands[cfr.P2])
}

func TestSkullsStackingThenBidPhase(t *testing.T) {
	g := NewSkulls(cfr.P1)
	mover, actions := g.CurrentTurn()
	require.Equal(t, cfr.P1, mover)
	require.NotEmpty(t, actions)

	g.Apply(cfr.P1, SkullsAction{Kind: SkullsPlay, CardIndex: 0})
	mover, _ = g.CurrentTurn()
	assert.Equal(t, cfr.P2, mover)

	g.Apply(cfr.P2, SkullsAction{Kind: SkullsPlay, CardIndex: 0})

	_, actions = g.CurrentTurn()
	foundBid := false
	for _, a := range actions {
		if a.Kind == SkullsBid {
			foundBid = true
		}
	}
	assert.True(t, foundBid, "once any card is stacked, bidding must become a legal action")
}

func TestSkullsTwoConsecutivePassesResolve(t *testing.T) {
	g := NewSkulls(cfr.P1)
	g.Apply(cfr.P1, SkullsAction{Kind: SkullsPlay, CardIndex: 1}) // flower
	g.Apply(cfr.P2, SkullsAction{Kind: SkullsPlay, CardIndex: 1}) // flower
	g.Apply(cfr.P1, SkullsAction{Kind: SkullsBid, Amount: 1})
	// P2 passes, then P1 (the bid leader) also passes -- two passes resolve the challenge.
	g.Apply(cfr.P2, SkullsAction{Kind: SkullsPass})

	_, ok := g.TerminalReward()
	require.False(t, ok, "a single pass must not resolve the challenge")

	g.Apply(cfr.P1, SkullsAction{Kind: SkullsPass})
	_, ok = g.TerminalReward()
	assert.True(t, ok, "the second consecutive pass must resolve the challenge")
}

func TestSkullsChallengeRevealsOwnStackFirst(t *testing.T) {
	g := NewSkulls(cfr.P1)
	// P1 stacks its skull (index 0) then a flower; P2 stacks two flowers.
	g.Apply(cfr.P1, SkullsAction{Kind: SkullsPlay, CardIndex: 0}) // skull
	g.Apply(cfr.P2, SkullsAction{Kind: SkullsPlay, CardIndex: 1}) // flower
	g.Apply(cfr.P1, SkullsAction{Kind: SkullsPlay, CardIndex: 0}) // flower (P1's remaining two are flowers now)
	g.Apply(cfr.P2, SkullsAction{Kind: SkullsPlay, CardIndex: 1}) // flower

	// P1 bids 1: only P1's own top card (the skull, played first) is revealed.
	g.Apply(cfr.P1, SkullsAction{Kind: SkullsBid, Amount: 1})
	g.Apply(cfr.P2, SkullsAction{Kind: SkullsPass})
	g.Apply(cfr.P1, SkullsAction{Kind: SkullsPass})

	reward, ok := g.TerminalReward()
	require.True(t, ok)
	assert.Equal(t, -1.0, reward, "P1 bid against its own skull and must lose")
}

func TestSkullsInfoSetHidesOpponentStackContents(t *testing.T) {
	a := NewSkulls(cfr.P1)
	a.Apply(cfr.P1, SkullsAction{Kind: SkullsPlay, CardIndex: 0}) // P1 stacks its skull
	b := NewSkulls(cfr.P1)
	b.Apply(cfr.P1, SkullsAction{Kind: SkullsPlay, CardIndex: 1}) // P1 stacks a flower instead

	// From P2's point of view nothing distinguishes these two positions:
	// only stack size is observable, not contents.
	assert.Equal(t, a.InfoSet(cfr.P2), b.InfoSet(cfr.P2))
	assert.NotEqual(t, a.InfoSet(cfr.P1), b.InfoSet(cfr.P1), "P1 itself can tell its own stack contents apart")
}

func TestSkullsCloneIsIndependent(t *testing.T) {
	g := NewSkulls(cfr.P1)
	clone := g.Clone()
	clone.Apply(cfr.P1, SkullsAction{Kind: SkullsPlay, CardIndex: 0})

	assert.Len(t, g.hands[cfr.P1], 3, "the original game's hand must be unaffected by the clone's move")
}
