package cfr

import "math"

// TableKind distinguishes a regret table from a strategy table, since the
// discount law picks a different exponent for each and the persisted
// backend directories are named accordingly (see internal/backend).
type TableKind uint8

const (
	RegretTableKind TableKind = iota
	StrategyTableKind
)

func (k TableKind) String() string {
	if k == StrategyTableKind {
		return "strategy"
	}
	return "regret"
}

// DiscountParams configures the Discounted-CFR weighting law: a weight
// t^e is applied to the prior value of a table entry before a delta is
// folded in, where e is chosen by table kind and, for the regret table,
// by the sign of the entry being updated.
//
// With every exponent at 1 the weight is t/(t+1), Linear CFR's
// weighting. An exponent of 0 gives a constant weight of 1/2, so the
// prior value halves on every update; the weight approaches 1 (no
// decay, as in vanilla CFR) only as the exponent grows. Grounded on 13jqq-go-cfr's DiscountParams /
// GetDiscountFactors, adapted to a literal per-scalar update rule.
//
// CFR+ is a separate axis from the decay law: it clamps negative regret
// to zero on write, rather than only at regret-matching read time.
// ClampNegativeRegrets selects between the two observed treatments --
// false keeps the sign on write (DCFR, the default); true clamps to
// zero on write (CFR+-style), applied in Owner.handleDelta.
type DiscountParams struct {
	Alpha                float64 `hcl:"alpha,optional"`
	Beta                 float64 `hcl:"beta,optional"`
	Gamma                float64 `hcl:"gamma,optional"`
	ClampNegativeRegrets bool    `hcl:"clamp_negative_regrets,optional"`
}

// DefaultDiscountParams returns the standard DCFR exponents (Alpha=1.5,
// Beta=0, Gamma=2) as used in the published Discounted-CFR literature,
// with ClampNegativeRegrets off (sign kept on write, per §4.3's default).
func DefaultDiscountParams() DiscountParams {
	return DiscountParams{Alpha: 1.5, Beta: 0.0, Gamma: 2.0}
}

// exponent selects e for one scalar update.
func (d DiscountParams) exponent(kind TableKind, current float32) float64 {
	if kind == StrategyTableKind {
		return d.Gamma
	}
	if current < 0 {
		return d.Beta
	}
	return d.Alpha
}

// Apply computes the new value of a single table entry scalar given its
// current value, an incoming delta, the table kind, and the iteration
// number the delta is attributed to. iteration must be >= 0; iteration 0
// carries t^e == 0 for any e > 0, so the entry is simply replaced by the
// delta, matching lazy zero-initialized creation.
func (d DiscountParams) Apply(kind TableKind, current float32, delta float32, iteration int) float32 {
	e := d.exponent(kind, current)
	t := float64(iteration)
	w := math.Pow(t, e)
	weight := w / (w + 1)
	return float32(float64(current)*weight) + delta
}
