package games

import (
	"hash/fnv"

	"github.com/lox/cfrengine/internal/cfr"
)

// Card is a card in a Skulls hand: a Skull ends a challenge when
// revealed, a Flower never does.
type Card uint8

const (
	CardSkull Card = iota
	CardFlower
)

type skullsPhase uint8

const (
	phaseStack skullsPhase = iota
	phaseBid
)

// SkullsActionKind distinguishes the three action shapes a turn can
// take.
type SkullsActionKind uint8

const (
	SkullsPlay SkullsActionKind = iota
	SkullsBid
	SkullsPass
)

// SkullsAction is one legal move: Play a specific hand card face down,
// Bid a higher challenge amount, or Pass.
type SkullsAction struct {
	Kind      SkullsActionKind
	CardIndex int // meaningful only for SkullsPlay
	Amount    int // meaningful only for SkullsBid
}

// Skulls is a simplified two-player rendition of the bidding/bluffing
// card game Skulls: each player stacks cards face down from a 1-skull,
// 2-flower hand, then bidding escalates a claim that some number of
// stacked cards can be revealed, own stack first then the opponent's,
// without hitting a skull. This drops the original's multi-round score
// race and card-loss-on-failed-challenge carryover (single round,
// winner-take-all) -- a deliberate scope reduction, since the point of
// including the game here is to exercise the player-relative infoset
// view, not to reproduce tournament Skulls.
type Skulls struct {
	hands      [2][]Card // remaining hand, indexed by Player
	stacks     [2][]Card // face-down stack in play order, indexed by Player
	phase      skullsPhase
	turn       cfr.Player
	bidAmount  int
	bidLeader  cfr.Player
	hasPassed  bool
	winner     cfr.Player
	terminated bool
}

// NewSkulls deals the standard 1-skull/2-flower hand to each player,
// with starter acting first.
func NewSkulls(starter cfr.Player) *Skulls {
	hand := []Card{CardSkull, CardFlower, CardFlower}
	return &Skulls{
		hands: [2][]Card{
			cfr.P1: append([]Card(nil), hand...),
			cfr.P2: append([]Card(nil), hand...),
		},
		phase: phaseStack,
		turn:  starter,
	}
}

func (g *Skulls) totalStacked() int {
	return len(g.stacks[cfr.P1]) + len(g.stacks[cfr.P2])
}

func (g *Skulls) CurrentTurn() (cfr.Player, []SkullsAction) {
	if g.phase == phaseBid && g.turn == g.bidLeader {
		return g.turn, []SkullsAction{{Kind: SkullsPass}}
	}

	var actions []SkullsAction
	if g.phase == phaseStack {
		for i := range g.hands[g.turn] {
			actions = append(actions, SkullsAction{Kind: SkullsPlay, CardIndex: i})
		}
	}
	total := g.totalStacked()
	if total > 0 {
		min := g.bidAmount + 1
		if min < 1 {
			min = 1
		}
		for amount := min; amount <= total; amount++ {
			actions = append(actions, SkullsAction{Kind: SkullsBid, Amount: amount})
		}
	}
	if g.phase == phaseBid {
		actions = append(actions, SkullsAction{Kind: SkullsPass})
	}
	return g.turn, actions
}

func (g *Skulls) Apply(player cfr.Player, action SkullsAction) {
	if player != g.turn {
		panic("games: wrong player acted in skulls")
	}

	switch action.Kind {
	case SkullsPlay:
		if g.phase != phaseStack {
			panic("games: cannot play a card outside the stacking phase")
		}
		hand := g.hands[player]
		if action.CardIndex < 0 || action.CardIndex >= len(hand) {
			panic("games: illegal card index in skulls")
		}
		card := hand[action.CardIndex]
		g.hands[player] = append(hand[:action.CardIndex], hand[action.CardIndex+1:]...)
		g.stacks[player] = append(g.stacks[player], card)
		g.turn = player.Other()

	case SkullsBid:
		if action.Amount <= g.bidAmount || action.Amount > g.totalStacked() {
			panic("games: illegal bid amount in skulls")
		}
		g.phase = phaseBid
		g.bidAmount = action.Amount
		g.bidLeader = player
		g.hasPassed = false
		g.turn = player.Other()

	case SkullsPass:
		if g.phase != phaseBid {
			panic("games: cannot pass outside the bidding phase")
		}
		if !g.hasPassed {
			g.hasPassed = true
			g.turn = player.Other()
			return
		}
		g.resolveChallenge()

	default:
		panic("games: unknown skulls action kind")
	}
}

func (g *Skulls) resolveChallenge() {
	sequence := append(append([]Card(nil), g.stacks[g.bidLeader]...), g.stacks[g.bidLeader.Other()]...)
	leaderWins := true
	for i := 0; i < g.bidAmount; i++ {
		if sequence[i] == CardSkull {
			leaderWins = false
			break
		}
	}
	if leaderWins {
		g.winner = g.bidLeader
	} else {
		g.winner = g.bidLeader.Other()
	}
	g.terminated = true
}

func (g *Skulls) TerminalReward() (float64, bool) {
	if !g.terminated {
		return 0, false
	}
	if g.winner == cfr.P1 {
		return 1, true
	}
	return -1, true
}

// InfoSet encodes a player-relative view: the querying player's own
// hand size and known stack contents, the opponent's stack size only
// (their cards are face down), and the public bid state -- re-labelled
// around "am I the bid leader" and "is it my turn" rather than absolute
// player identity, so the two symmetric seats of the game share
// infosets instead of doubling the table.
func (g *Skulls) InfoSet(player cfr.Player) cfr.InfoSetHash {
	h := fnv.New64a()
	write := func(b byte) { h.Write([]byte{b}) }

	write(byte(len(g.hands[player])))
	for _, c := range g.stacks[player] {
		write(byte(c))
	}
	write(byte(len(g.stacks[player.Other()])))
	write(byte(g.phase))
	write(byte(g.bidAmount))
	write(boolByte(g.phase == phaseBid && g.bidLeader == player))
	write(boolByte(g.turn == player))
	write(boolByte(g.hasPassed))
	return cfr.InfoSetHash(h.Sum64())
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (g *Skulls) Clone() *Skulls {
	clone := *g
	clone.hands = [2][]Card{
		cfr.P1: append([]Card(nil), g.hands[cfr.P1]...),
		cfr.P2: append([]Card(nil), g.hands[cfr.P2]...),
	}
	clone.stacks = [2][]Card{
		cfr.P1: append([]Card(nil), g.stacks[cfr.P1]...),
		cfr.P2: append([]Card(nil), g.stacks[cfr.P2]...),
	}
	return &clone
}
