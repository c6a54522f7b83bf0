package games

import (
	"hash/fnv"

	"github.com/lox/cfrengine/internal/cfr"
)

// NumCards is the size of the one-card poker deck.
const NumCards = 13

// Action is a betting action in one-card poker.
type Action uint8

const (
	ActionFold Action = iota
	ActionCall
	ActionBet
)

type pokerState uint8

const (
	stateP1Deal pokerState = iota
	stateP2Check
	stateP1Raise
	stateP2Bet
	stateFoldEnd
	stateShowdownEnd
)

func actionsFor(state pokerState) []Action {
	switch state {
	case stateP1Deal, stateP2Check:
		return []Action{ActionCall, ActionBet}
	case stateP1Raise, stateP2Bet:
		return []Action{ActionFold, ActionCall}
	default:
		return nil
	}
}

type historyEntry struct {
	player cfr.Player
	action Action
}

// OneCardPoker is the classic ante-1/bet-1 single-round poker game on a
// 13-card deck (http://www.cs.cmu.edu/~ggordon/poker/): each player
// antes 1, is dealt one private card, and may check/call, bet, or fold
// in a single betting round. Reward is the loser's pot contribution
// halved, keeping payoffs in [-1, 1]. Grounded on the source game/ocp.rs
// state machine.
type OneCardPoker struct {
	dealer         cfr.Player
	pot            [2]uint32 // indexed by Player
	hands          [2]uint32 // indexed by Player
	history        []historyEntry
	state          pokerState
	currentPlayer  cfr.Player
	currentActions []Action
}

// NewOneCardPoker deals hand1 to P1 and hand2 to P2 (each in [0,
// NumCards)), with dealer acting second in the first betting round. It
// panics if the hands are equal -- the deck has one copy of each card.
func NewOneCardPoker(hand1, hand2 uint32, dealer cfr.Player) *OneCardPoker {
	if hand1 == hand2 {
		panic("games: one-card poker hands must differ")
	}
	return &OneCardPoker{
		dealer:         dealer,
		hands:          [2]uint32{cfr.P1: hand1, cfr.P2: hand2},
		pot:            [2]uint32{cfr.P1: 1, cfr.P2: 1},
		state:          stateP1Deal,
		currentPlayer:  dealer.Other(),
		currentActions: actionsFor(stateP1Deal),
	}
}

func (g *OneCardPoker) CurrentTurn() (cfr.Player, []Action) {
	return g.currentPlayer, g.currentActions
}

func (g *OneCardPoker) Apply(player cfr.Player, action Action) {
	if player != g.currentPlayer {
		panic("games: wrong player acted in one-card poker")
	}
	if !containsAction(g.currentActions, action) {
		panic("games: illegal action in one-card poker")
	}

	p2 := g.dealer
	p1 := p2.Other()

	var next cfr.Player
	var nextState pokerState
	switch {
	case g.state == stateP1Deal && action == ActionCall:
		next, nextState = p2, stateP2Check
	case g.state == stateP1Deal && action == ActionBet:
		g.pot[p1]++
		next, nextState = p2, stateP2Bet
	case g.state == stateP2Check && action == ActionCall:
		next, nextState = p1, stateShowdownEnd
	case g.state == stateP2Check && action == ActionBet:
		g.pot[p2]++
		next, nextState = p1, stateP1Raise
	case g.state == stateP2Bet && action == ActionFold:
		next, nextState = p1, stateFoldEnd
	case g.state == stateP2Bet && action == ActionCall:
		g.pot[p2]++
		next, nextState = p1, stateShowdownEnd
	case g.state == stateP1Raise && action == ActionFold:
		next, nextState = p2, stateFoldEnd
	case g.state == stateP1Raise && action == ActionCall:
		g.pot[p1]++
		next, nextState = p2, stateShowdownEnd
	default:
		panic("games: illegal action for the current one-card poker state")
	}

	g.currentPlayer = next
	g.state = nextState
	g.currentActions = actionsFor(nextState)
	g.history = append(g.history, historyEntry{player: player, action: action})
}

func containsAction(actions []Action, action Action) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// TerminalReward returns the other player's pot contribution, halved
// and signed from P1's perspective.
func (g *OneCardPoker) TerminalReward() (float64, bool) {
	switch {
	case g.state == stateFoldEnd && g.currentPlayer == cfr.P1:
		return float64(g.pot[cfr.P2]) / 2.0, true
	case g.state == stateFoldEnd && g.currentPlayer == cfr.P2:
		return -float64(g.pot[cfr.P1]) / 2.0, true
	case g.state == stateShowdownEnd && g.hands[cfr.P1] > g.hands[cfr.P2]:
		return float64(g.pot[cfr.P2]) / 2.0, true
	case g.state == stateShowdownEnd:
		return -float64(g.pot[cfr.P1]) / 2.0, true
	default:
		return 0, false
	}
}

// InfoSet hashes the querying player's own hand together with the
// public bet history -- the only asymmetric information in the game.
func (g *OneCardPoker) InfoSet(player cfr.Player) cfr.InfoSetHash {
	h := fnv.New64a()
	var buf [1]byte
	buf[0] = byte(g.hands[player])
	h.Write(buf[:])
	for _, entry := range g.history {
		buf[0] = byte(entry.action)<<1 | byte(entry.player)
		h.Write(buf[:])
	}
	return cfr.InfoSetHash(h.Sum64())
}

func (g *OneCardPoker) Clone() *OneCardPoker {
	clone := *g
	clone.currentActions = append([]Action(nil), g.currentActions...)
	clone.history = append([]historyEntry(nil), g.history...)
	return &clone
}
