// Package cfr implements the sharded regret-tabulation engine: the game
// interface, shard owners, the shard router, the CFR agent traversal, and
// the Discounted-CFR weighting law.
package cfr

import "fmt"

// Player identifies one of the two seats in a zero-sum game.
type Player uint8

const (
	P1 Player = iota
	P2
)

// Other returns the opposing player.
func (p Player) Other() Player {
	if p == P1 {
		return P2
	}
	return P1
}

func (p Player) String() string {
	switch p {
	case P1:
		return "P1"
	case P2:
		return "P2"
	default:
		return fmt.Sprintf("Player(%d)", uint8(p))
	}
}

// Pick projects one member of a player-indexed pair, avoiding a branch on
// Player at every call site that needs "my" value versus "their" value.
func Pick[T any](p Player, p1, p2 T) T {
	if p == P1 {
		return p1
	}
	return p2
}

// PickRef returns a pointer to one member of a player-indexed pair so
// callers can mutate in place.
func PickRef[T any](p Player, p1, p2 *T) *T {
	if p == P1 {
		return p1
	}
	return p2
}

// InfoSetHash is the 64-bit opaque key a game assigns to a player's view of
// a position. The game is responsible for collision-resistance and
// stability; the engine treats it as an opaque map key only.
type InfoSetHash uint64
