package check

import (
	"fmt"

	"github.com/questbench/txvalidator/internal/envelope"
)

// MaxScore is the fixed score ceiling of every operation.
const MaxScore = 100

// PassPolicy decides pass/fail from the accumulated score. Two rules exist in
// the wild and both are load-bearing: a score threshold for graded
// operations, and all-checks-required for strict ones. They are deliberately
// not unified.
type PassPolicy struct {
	AllRequired bool
	Fraction    float64
}

// Threshold passes when score >= MaxScore * fraction. Observed fractions:
// 0.6 for queries, 0.7 for medium-difficulty mutations, 0.8 for most
// transfers and swaps.
func Threshold(fraction float64) PassPolicy {
	return PassPolicy{Fraction: fraction}
}

// AllRequired passes only when every check passed, regardless of score.
func AllRequired() PassPolicy {
	return PassPolicy{AllRequired: true}
}

// ValidationResult is the engine's only output. Invariants: Score equals the
// sum of passed check scores and stays within [0, MaxScore]; Checks appear in
// declaration order; Trace is an ordered audit of evaluation steps.
type ValidationResult struct {
	Passed   bool           `json:"passed"`
	Score    float64        `json:"score"`
	MaxScore int            `json:"max_score"`
	Status   string         `json:"status,omitempty"`
	Checks   []Result       `json:"checks"`
	Details  map[string]any `json:"details"`
	Trace    []string       `json:"trace,omitempty"`
}

// Evaluate runs the checks in declared order and applies the passing policy.
// The first check is expected to be TxSuccess or QuerySuccess; when it fails,
// evaluation stops immediately and the result carries exactly that one check
// with score 0.
func Evaluate(checks []Check, policy PassPolicy, env *envelope.Envelope) *ValidationResult {
	res := &ValidationResult{
		MaxScore: MaxScore,
		Details:  map[string]any{},
	}

	for i, c := range checks {
		outcome := c.Evaluate(env)
		res.Checks = append(res.Checks, outcome)
		res.Score += float64(outcome.Score)
		res.Trace = append(res.Trace, fmt.Sprintf("check %d/%d %q: passed=%t score=%d", i+1, len(checks), outcome.Name, outcome.Passed, outcome.Score))

		if i == 0 && !outcome.Passed && (c.Kind == TxSuccess || c.Kind == QuerySuccess) {
			res.Passed = false
			res.Score = 0
			res.Trace = append(res.Trace, "first check failed, skipping remaining checks")
			return res
		}
	}

	if policy.AllRequired {
		res.Passed = true
		for _, c := range res.Checks {
			if !c.Passed {
				res.Passed = false
				break
			}
		}
	} else {
		res.Passed = res.Score >= float64(MaxScore)*policy.Fraction
	}
	res.Trace = append(res.Trace, fmt.Sprintf("score %.0f/%d, passed=%t", res.Score, MaxScore, res.Passed))
	return res
}
