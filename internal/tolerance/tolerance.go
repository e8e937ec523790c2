// Package tolerance implements the numeric comparison policies shared by all
// operation checks: fixed-absolute/percentage tolerances, min/max bands for
// pool-ratio adjusted amounts, and at-least thresholds for "any positive
// increase" checks.
package tolerance

import "math/big"

// bps denominator: one basis point is 0.01%.
const bpsDenom = 10000

type Kind int

const (
	// KindFixed passes iff |actual-expected| <= max(abs, expected*bps/10000).
	KindFixed Kind = iota
	// KindBand passes iff expected*minBps/10000 <= actual <= expected*maxBps/10000.
	KindBand
	// KindAtLeast passes iff actual >= expected.
	KindAtLeast
	// KindExact passes iff actual == expected. Used by the parameter
	// compliance gate, which allows no substitution at all.
	KindExact
)

// Policy is an immutable comparison rule. The zero value is exact match.
type Policy struct {
	kind   Kind
	abs    *big.Int
	bps    int64
	minBps int64
	maxBps int64
}

// Fixed builds a fixed-tolerance policy: abs wei or bps basis points of the
// expected value, whichever is larger. Pct tolerances observed in practice:
// 10 bps for amount transfers and supply drift, 100 bps for allowance/stake
// deltas, 200 bps for percentage transfers, 500 bps for reward accrual.
func Fixed(abs int64, bps int64) Policy {
	return Policy{kind: KindFixed, abs: big.NewInt(abs), bps: bps}
}

// FixedBig is Fixed with an arbitrary-precision absolute component.
func FixedBig(abs *big.Int, bps int64) Policy {
	if abs == nil {
		abs = new(big.Int)
	}
	return Policy{kind: KindFixed, abs: new(big.Int).Set(abs), bps: bps}
}

// Band builds a min/max band policy relative to the expected value, in basis
// points. Liquidity adds accept 5000-15000 (50%-150% of the requested
// amount, the pool ratio adjusts it); removals accept 9900-10100.
func Band(minBps, maxBps int64) Policy {
	return Policy{kind: KindBand, minBps: minBps, maxBps: maxBps}
}

// AtLeast builds a policy passing when actual >= expected.
func AtLeast() Policy {
	return Policy{kind: KindAtLeast}
}

// Exact builds a zero-tolerance policy.
func Exact() Policy {
	return Policy{kind: KindExact}
}

func (p Policy) Kind() Kind { return p.kind }

// Compare reports whether actual satisfies the policy against expected.
// Nil inputs read as zero.
func (p Policy) Compare(actual, expected *big.Int) bool {
	if actual == nil {
		actual = new(big.Int)
	}
	if expected == nil {
		expected = new(big.Int)
	}
	switch p.kind {
	case KindFixed:
		diff := new(big.Int).Sub(actual, expected)
		diff.Abs(diff)
		return diff.Cmp(p.allowance(expected)) <= 0
	case KindBand:
		min := scaleBps(expected, p.minBps)
		max := scaleBps(expected, p.maxBps)
		return actual.Cmp(min) >= 0 && actual.Cmp(max) <= 0
	case KindAtLeast:
		return actual.Cmp(expected) >= 0
	default:
		return actual.Cmp(expected) == 0
	}
}

// allowance is max(abs, |expected|*bps/10000).
func (p Policy) allowance(expected *big.Int) *big.Int {
	rel := scaleBps(new(big.Int).Abs(expected), p.bps)
	if p.abs != nil && p.abs.Cmp(rel) > 0 {
		return p.abs
	}
	return rel
}

func scaleBps(v *big.Int, bps int64) *big.Int {
	out := new(big.Int).Mul(v, big.NewInt(bps))
	return out.Quo(out, big.NewInt(bpsDenom))
}
