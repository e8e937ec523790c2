// Package check defines the closed set of check kinds an operation spec can
// declare, and the evaluator that runs them in declared order against a
// single-step envelope. One code path interprets every operation; the
// per-operation knowledge lives entirely in data.
package check

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/questbench/txvalidator/internal/calldata"
	"github.com/questbench/txvalidator/internal/envelope"
	"github.com/questbench/txvalidator/internal/tolerance"
)

// Kind enumerates every check an operation can declare. The set is closed:
// adding behavior means adding a kind here and a case to the evaluator, not
// writing a new validator.
type Kind int

const (
	// TxSuccess requires receipt.status == 1. Always declared first for
	// mutating operations; on failure evaluation stops, state_after may be
	// meaningless after a revert.
	TxSuccess Kind = iota
	// QuerySuccess requires tx.query_result.success. The query counterpart
	// of TxSuccess, with the same short-circuit rule.
	QuerySuccess
	// SelectorEq compares the calldata selector to a known constant.
	SelectorEq
	// ToAddress compares tx.to to an expected address.
	ToAddress
	// CalldataAddress compares a decoded calldata address word.
	CalldataAddress
	// TxValue compares tx.value under a tolerance policy.
	TxValue
	// BalanceDelta diffs a snapshot field across the envelope and compares
	// the magnitude under a tolerance policy.
	BalanceDelta
	// StateValue compares a state_after field to an expected value.
	StateValue
	// StateAddress compares a state_after field to an expected address.
	StateAddress
	// FieldPresent requires keys in the query result data.
	FieldPresent
	// ValueEq compares a query result field to a reference captured in
	// state_before by the executor.
	ValueEq
	// ApprovalHandled accepts any of: sufficient allowance before,
	// sufficient allowance after, or allowance consumed by the amount.
	ApprovalHandled
	// DataPresent requires non-empty calldata, optionally a dynamic bytes
	// tail of at least MinLen at head word WordIndex.
	DataPresent
	// DataEmpty requires calldata to be absent, "" or "0x". A plain value
	// send must not call a function, otherwise the fallback path is not
	// what executed.
	DataEmpty
	// DataStringEq compares a query result string field to a reference in
	// state_before, falling back to ExpectedStr, or to mere non-emptiness
	// when no reference exists at all.
	DataStringEq
	// PathLength requires an address[] route of at least MinLen elements.
	PathLength
)

// ExpectedMode selects where a comparison's expected value comes from.
// Static values are bound from task parameters (ground truth) when the spec
// is constructed; the gas-aware and snapshot-relative modes fold in envelope
// facts that only exist at validation time.
type ExpectedMode int

const (
	ExpStatic ExpectedMode = iota
	// ExpPlusGas: expected + gasUsed*effectiveGasPrice.
	ExpPlusGas
	// ExpMinusGas: expected - gasUsed*effectiveGasPrice.
	ExpMinusGas
	// ExpMaxNative: state_before[BeforeKey] - gas cost. The "send
	// everything" target.
	ExpMaxNative
	// ExpPercentBefore: state_before[BeforeKey] * Percent / 100.
	ExpPercentBefore
	// ExpBefore: state_before[BeforeKey] verbatim.
	ExpBefore
)

// Check is one declared check of an operation spec. Weight is the score
// granted on pass; weights of a spec sum to the max score. Immutable once
// built.
type Check struct {
	Name   string
	Kind   Kind
	Weight int

	Selector    string
	AltSelector string

	Expected     *big.Int
	ExpectedAddr string
	ExpectedStr  string
	Mode         ExpectedMode
	Percent      int64

	BeforeKey string
	AfterKey  string
	DataKey   string
	RefKey    string
	Keys      []string

	// Array element selection for ValueEq when the data or reference field
	// holds a list (router quote amounts). Nil reads the field as a scalar;
	// negative indexes count from the end.
	DataIdx *int
	RefIdx  *int

	WordIndex int
	MinLen    int
	Decrease  bool

	Tol tolerance.Policy
}

// Result is the outcome of one check, produced once, in declaration order.
type Result struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Score   int    `json:"score"`
	Message string `json:"message"`
}

func pass(c Check, msg string) Result {
	return Result{Name: c.Name, Passed: true, Score: c.Weight, Message: msg}
}

func fail(c Check, msg string) Result {
	return Result{Name: c.Name, Passed: false, Score: 0, Message: msg}
}

// expected resolves the comparison target for the envelope at hand. The
// snapshot-relative modes read RefKey when set, falling back to BeforeKey;
// a percentage-of-balance transfer judges the receiver's delta against the
// sender's prior balance, so the two keys can differ.
func (c Check) expected(env *envelope.Envelope) *big.Int {
	base := new(big.Int)
	if c.Expected != nil {
		base.Set(c.Expected)
	}
	refKey := c.RefKey
	if refKey == "" {
		refKey = c.BeforeKey
	}
	switch c.Mode {
	case ExpPlusGas:
		return base.Add(base, env.Receipt.GasCost())
	case ExpMinusGas:
		return base.Sub(base, env.Receipt.GasCost())
	case ExpMaxNative:
		before := env.StateBefore.BigInt(refKey)
		return new(big.Int).Sub(before, env.Receipt.GasCost())
	case ExpPercentBefore:
		before := env.StateBefore.BigInt(refKey)
		out := new(big.Int).Mul(before, big.NewInt(c.Percent))
		return out.Quo(out, big.NewInt(100))
	case ExpBefore:
		return env.StateBefore.BigInt(refKey)
	default:
		return base
	}
}

// Evaluate runs a single check against the envelope.
func (c Check) Evaluate(env *envelope.Envelope) Result {
	switch c.Kind {
	case TxSuccess:
		if env.Receipt.Status == 1 {
			return pass(c, "Transaction executed successfully")
		}
		return fail(c, fmt.Sprintf("Transaction failed with status: %d", env.Receipt.Status))

	case QuerySuccess:
		qr := env.Tx.QueryResult
		if qr != nil && qr.Success {
			return pass(c, "Query executed successfully")
		}
		errMsg := "no query result"
		if qr != nil {
			errMsg = qr.Error
		}
		return fail(c, fmt.Sprintf("Query failed: %s", errMsg))

	case SelectorEq:
		sel := calldata.SelectorOf(env.Tx.Data)
		if sel == c.Selector || (c.AltSelector != "" && sel == c.AltSelector) {
			return pass(c, fmt.Sprintf("Correct function selector: %s", sel))
		}
		return fail(c, fmt.Sprintf("Expected: %s, Got: %s", c.Selector, sel))

	case ToAddress:
		if envelope.SameAddress(env.Tx.To, c.ExpectedAddr) {
			return pass(c, fmt.Sprintf("Correct contract address: %s", c.ExpectedAddr))
		}
		return fail(c, fmt.Sprintf("Expected: %s, Got: %s", c.ExpectedAddr, envelope.NormalizeAddress(env.Tx.To)))

	case CalldataAddress:
		addr, ok := calldata.AddressAt(env.Tx.Data, c.WordIndex)
		if !ok {
			return fail(c, "Calldata too short to decode address parameter")
		}
		if envelope.SameAddress(addr, c.ExpectedAddr) {
			return pass(c, fmt.Sprintf("Correct address parameter: %s", addr))
		}
		return fail(c, fmt.Sprintf("Expected: %s, Got: %s", c.ExpectedAddr, addr))

	case TxValue:
		expected := c.expected(env)
		actual := env.Tx.Value.Value()
		if c.Tol.Compare(actual, expected) {
			return pass(c, fmt.Sprintf("Transaction value correct: %s wei", actual))
		}
		return fail(c, fmt.Sprintf("Expected: %s wei, Got: %s wei", expected, actual))

	case BalanceDelta:
		afterKey := c.AfterKey
		if afterKey == "" {
			afterKey = c.BeforeKey
		}
		delta := new(big.Int).Sub(env.StateAfter.BigInt(afterKey), env.StateBefore.BigInt(c.BeforeKey))
		if c.Decrease {
			delta.Neg(delta)
		}
		expected := c.expected(env)
		if c.Tol.Compare(delta, expected) {
			dir := "increased"
			if c.Decrease {
				dir = "decreased"
			}
			return pass(c, fmt.Sprintf("%s %s by %s", c.BeforeKey, dir, delta))
		}
		return fail(c, fmt.Sprintf("Expected change of %s, got %s (%s)", expected, delta, c.BeforeKey))

	case StateValue:
		actual := env.StateAfter.BigInt(c.AfterKey)
		expected := c.expected(env)
		if c.Tol.Compare(actual, expected) {
			return pass(c, fmt.Sprintf("%s is %s", c.AfterKey, actual))
		}
		return fail(c, fmt.Sprintf("Expected %s near %s, got %s", c.AfterKey, expected, actual))

	case StateAddress:
		actual := env.StateAfter.String(c.AfterKey)
		if envelope.SameAddress(actual, c.ExpectedAddr) {
			return pass(c, fmt.Sprintf("%s is %s", c.AfterKey, envelope.NormalizeAddress(actual)))
		}
		return fail(c, fmt.Sprintf("Expected %s to be %s, got %s", c.AfterKey, c.ExpectedAddr, envelope.NormalizeAddress(actual)))

	case FieldPresent:
		qr := env.Tx.QueryResult
		var missing []string
		for _, key := range c.Keys {
			if qr == nil || !qr.Data.Has(key) {
				missing = append(missing, key)
			}
		}
		if len(missing) == 0 {
			return pass(c, "Return format correct")
		}
		return fail(c, fmt.Sprintf("Missing fields in query result: %v", missing))

	case ValueEq:
		qr := env.Tx.QueryResult
		if qr == nil || !qr.Data.Has(c.DataKey) {
			return fail(c, fmt.Sprintf("Query result has no %q field", c.DataKey))
		}
		actual := qr.Data.BigInt(c.DataKey)
		if c.DataIdx != nil {
			actual = qr.Data.BigIntAt(c.DataKey, *c.DataIdx)
		}
		reference := env.StateBefore.BigInt(c.RefKey)
		if c.RefIdx != nil {
			reference = env.StateBefore.BigIntAt(c.RefKey, *c.RefIdx)
		}
		if c.Tol.Compare(actual, reference) {
			return pass(c, fmt.Sprintf("Expected: %s, Got: %s", reference, actual))
		}
		return fail(c, fmt.Sprintf("Expected: %s, Got: %s", reference, actual))

	case ApprovalHandled:
		amount := c.expected(env)
		before := env.StateBefore.BigInt(c.BeforeKey)
		after := env.StateAfter.BigInt(c.BeforeKey)
		consumed := new(big.Int).Sub(before, after)
		// 1% slack on the consumed path, routers sometimes leave dust.
		ok := before.Cmp(amount) >= 0 || after.Cmp(amount) >= 0 ||
			tolerance.Fixed(0, 100).Compare(consumed, amount)
		if ok {
			return pass(c, "Token approval handled correctly")
		}
		return fail(c, fmt.Sprintf("Insufficient token approval. Allowance before: %s, after: %s, required: %s", before, after, amount))

	case DataPresent:
		if calldata.SelectorOf(env.Tx.Data) == calldata.SelectorNA && len(env.Tx.Data) <= 2 {
			return fail(c, "No data field or too short")
		}
		if c.MinLen > 0 {
			n, ok := calldata.DynamicBytesLen(env.Tx.Data, c.WordIndex)
			if !ok || n < uint64(c.MinLen) {
				return fail(c, fmt.Sprintf("Expected data payload of at least %d bytes", c.MinLen))
			}
		}
		return pass(c, "Data parameter present")

	case DataEmpty:
		data := strings.TrimSpace(env.Tx.Data)
		if data == "" || data == "0x" {
			return pass(c, "Data field is empty")
		}
		return fail(c, fmt.Sprintf("Expected empty data field, got %d hex chars", len(data)))

	case DataStringEq:
		qr := env.Tx.QueryResult
		if qr == nil || !qr.Data.Has(c.DataKey) {
			return fail(c, fmt.Sprintf("Query result has no %q field", c.DataKey))
		}
		actual := qr.Data.String(c.DataKey)
		expected := env.StateBefore.String(c.RefKey)
		if expected == "" {
			expected = c.ExpectedStr
		}
		if expected == "" {
			// No reference captured. A non-empty answer is the best that can
			// be verified.
			if actual != "" {
				return pass(c, fmt.Sprintf("%s is %q", c.DataKey, actual))
			}
			return fail(c, fmt.Sprintf("Query result %q is empty", c.DataKey))
		}
		if actual == expected {
			return pass(c, fmt.Sprintf("%s is %q", c.DataKey, actual))
		}
		return fail(c, fmt.Sprintf("Expected: %q, Got: %q", expected, actual))

	case PathLength:
		n, ok := calldata.PathLenAt(env.Tx.Data, c.WordIndex)
		if !ok {
			return fail(c, "Could not decode swap path from calldata")
		}
		if n >= c.MinLen {
			return pass(c, fmt.Sprintf("Swap path has %d hops", n))
		}
		return fail(c, fmt.Sprintf("Expected path of at least %d tokens, got %d", c.MinLen, n))

	default:
		return fail(c, fmt.Sprintf("unknown check kind %d", c.Kind))
	}
}
