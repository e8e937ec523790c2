// Package envelope defines the input shapes handed to the validation engine by
// the external executor: the single-step (tx, receipt, state_before,
// state_after) envelope, its query-operation variant, and the multi-step
// composite envelope. All amounts are raw integer base units (wei / smallest
// token unit).
package envelope

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/questbench/txvalidator/internal/state"
)

// BigInt is a big.Int that unmarshals from JSON numbers, decimal strings and
// 0x-prefixed hex strings. Malformed values decode as zero rather than
// failing the whole envelope.
type BigInt struct {
	big.Int
}

func NewBigInt(v *big.Int) *BigInt {
	b := new(BigInt)
	if v != nil {
		b.Int.Set(v)
	}
	return b
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	b.Int.Set(state.ToBigInt(raw))
	return nil
}

func (b *BigInt) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("0"), nil
	}
	return []byte(b.Int.String()), nil
}

// Value returns the wrapped integer, treating a nil receiver as zero.
func (b *BigInt) Value() *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return &b.Int
}

// Transaction is the submitted transaction as observed by the executor.
// Data is the ABI-encoded calldata hex string, possibly empty. For read-only
// query operations QueryResult is set in place of on-chain effects.
type Transaction struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Value       *BigInt      `json:"value"`
	Data        string       `json:"data"`
	QueryResult *QueryResult `json:"query_result,omitempty"`
}

// QueryResult carries the outcome of a read-only query operation.
type QueryResult struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Data    state.Snapshot `json:"data"`
}

// Log is a minimal receipt log entry. The engine only needs presence and
// topic identity, not full event decoding.
type Log struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

// Receipt is the confirmed execution receipt. Status 1 means success.
type Receipt struct {
	Status            int     `json:"status"`
	GasUsed           *BigInt `json:"gasUsed"`
	EffectiveGasPrice *BigInt `json:"effectiveGasPrice"`
	Logs              []Log   `json:"logs"`
}

// GasCost returns gasUsed * effectiveGasPrice in wei.
func (r *Receipt) GasCost() *big.Int {
	if r == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(r.GasUsed.Value(), r.EffectiveGasPrice.Value())
}

// Envelope is the fixed single-step input: everything the engine needs to
// judge one attempted operation. The executor completes all blocking work
// (confirmation wait, snapshot capture) before handing this over.
type Envelope struct {
	Tx          Transaction    `json:"tx"`
	Receipt     Receipt        `json:"receipt"`
	StateBefore state.Snapshot `json:"state_before"`
	StateAfter  state.Snapshot `json:"state_after"`
}

// FinalSubmission is the model's closing claim for a multi-step task. When
// ErrorDetected is set the claim is judged against ground truth instead of
// scanning the interaction history.
type FinalSubmission struct {
	ErrorDetected bool   `json:"error_detected"`
	ErrorType     string `json:"error_type,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// ExecutedTx is a transaction recorded on the forked chain during a
// multi-step task.
type ExecutedTx struct {
	Hash   string  `json:"hash"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Value  *BigInt `json:"value"`
	Data   string  `json:"data"`
	Status int     `json:"status"`
}

// ChainState is the executor's view of the chain at task end.
type ChainState struct {
	InitialState state.Snapshot `json:"initial_state"`
	Transactions []ExecutedTx   `json:"transactions"`
}

// ActionResult is the executed outcome of one interaction round.
type ActionResult struct {
	Success     bool   `json:"success"`
	TxHash      string `json:"tx_hash,omitempty"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Round is one entry of the multi-turn interaction history.
type Round struct {
	Round        int           `json:"round"`
	ActionResult *ActionResult `json:"action_result,omitempty"`
}

// CompositeInput is the multi-step envelope. FinalSubmission nil selects the
// atomic-reuse path, which scores the Envelope with a validator constructed
// from the observed transaction itself.
type CompositeInput struct {
	FinalSubmission    *FinalSubmission `json:"final_submission,omitempty"`
	ChainState         *ChainState      `json:"chain_state,omitempty"`
	InteractionHistory []Round          `json:"interaction_history,omitempty"`
	Envelope           *Envelope        `json:"envelope,omitempty"`
}

// NormalizeAddress lowercases a hex address for comparison. Addresses in
// envelopes come from JSON produced by several tools and differ only in
// checksum casing.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// SameAddress compares two hex addresses ignoring case.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b) && a != ""
}

// ParseEnvelope decodes a single-step envelope from JSON.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}
	return &env, nil
}

// ParseCompositeInput decodes a composite envelope from JSON.
func ParseCompositeInput(data []byte) (*CompositeInput, error) {
	var in CompositeInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse composite input: %w", err)
	}
	return &in, nil
}
