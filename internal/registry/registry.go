// Package registry maps operation kinds to validator constructors paired
// with calldata parameter extractors. The composite layer uses it when a
// validator must be built from the parameters observed in a submitted
// transaction rather than from the original task configuration: multi-step
// tasks may legitimately route through an unplanned intermediate call.
package registry

import (
	"math/big"

	"github.com/questbench/txvalidator/internal/calldata"
	"github.com/questbench/txvalidator/internal/envelope"
	"github.com/questbench/txvalidator/internal/ops"
)

// Extractor reads the constructor arguments for one operation kind out of an
// observed transaction. Returns false when the calldata does not carry the
// words the layout requires.
type Extractor func(tx envelope.Transaction) (ops.Params, bool)

// Entry pairs a validator constructor with its parameter extractor.
type Entry struct {
	Kind    ops.Kind
	Extract Extractor
}

// Build constructs an AtomicValidator from the parameters observed in tx.
func (e Entry) Build(tx envelope.Transaction) (*ops.AtomicValidator, bool) {
	params, ok := e.Extract(tx)
	if !ok {
		return nil, false
	}
	v, err := ops.New(e.Kind, params)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Registry is a read-only lookup table, safe for concurrent reads.
type Registry struct {
	entries map[ops.Kind]Entry
}

// Resolve returns the entry for an operation kind. A missing kind is a
// configuration error the caller reports as validator_load_failed; Resolve
// itself never panics.
func (r *Registry) Resolve(kind ops.Kind) (Entry, bool) {
	e, ok := r.entries[kind]
	return e, ok
}

func uintAsBig(data string, index int) (*big.Int, bool) {
	v, ok := calldata.UintAt(data, index)
	if !ok {
		return nil, false
	}
	return v.ToBig(), true
}

// Default builds the registry covering the operations composite tasks route
// through. The word mapping per kind is the exact ABI argument order of the
// called function.
func Default() *Registry {
	entries := map[ops.Kind]Entry{
		ops.BNBTransfer: {Kind: ops.BNBTransfer, Extract: func(tx envelope.Transaction) (ops.Params, bool) {
			return ops.Params{ToAddress: tx.To, Amount: tx.Value.Value()}, true
		}},

		ops.ERC20Transfer: {Kind: ops.ERC20Transfer, Extract: func(tx envelope.Transaction) (ops.Params, bool) {
			to, ok := calldata.AddressAt(tx.Data, 0)
			if !ok {
				return ops.Params{}, false
			}
			amount, ok := uintAsBig(tx.Data, 1)
			if !ok {
				return ops.Params{}, false
			}
			return ops.Params{TokenAddress: tx.To, ToAddress: to, Amount: amount}, true
		}},

		ops.ERC20TransferFrom: {Kind: ops.ERC20TransferFrom, Extract: func(tx envelope.Transaction) (ops.Params, bool) {
			from, ok1 := calldata.AddressAt(tx.Data, 0)
			to, ok2 := calldata.AddressAt(tx.Data, 1)
			amount, ok3 := uintAsBig(tx.Data, 2)
			if !ok1 || !ok2 || !ok3 {
				return ops.Params{}, false
			}
			return ops.Params{TokenAddress: tx.To, FromAddress: from, ToAddress: to, Amount: amount}, true
		}},

		ops.ERC20Approve: {Kind: ops.ERC20Approve, Extract: extractSpenderAmount},

		ops.ERC20IncreaseAllowance: {Kind: ops.ERC20IncreaseAllowance, Extract: extractSpenderAmount},

		ops.ERC20DecreaseAllowance: {Kind: ops.ERC20DecreaseAllowance, Extract: extractSpenderAmount},

		ops.WBNBDeposit: {Kind: ops.WBNBDeposit, Extract: func(tx envelope.Transaction) (ops.Params, bool) {
			return ops.Params{TokenAddress: tx.To, Amount: tx.Value.Value()}, true
		}},

		ops.WBNBWithdraw: {Kind: ops.WBNBWithdraw, Extract: func(tx envelope.Transaction) (ops.Params, bool) {
			amount, ok := uintAsBig(tx.Data, 0)
			if !ok {
				return ops.Params{}, false
			}
			return ops.Params{TokenAddress: tx.To, Amount: amount}, true
		}},

		ops.ERC721SafeTransfer: {Kind: ops.ERC721SafeTransfer, Extract: func(tx envelope.Transaction) (ops.Params, bool) {
			from, ok1 := calldata.AddressAt(tx.Data, 0)
			to, ok2 := calldata.AddressAt(tx.Data, 1)
			id, ok3 := uintAsBig(tx.Data, 2)
			if !ok1 || !ok2 || !ok3 {
				return ops.Params{}, false
			}
			return ops.Params{NFTAddress: tx.To, FromAddress: from, ToAddress: to, TokenID: id}, true
		}},

		ops.ERC1155TransferSingle: {Kind: ops.ERC1155TransferSingle, Extract: func(tx envelope.Transaction) (ops.Params, bool) {
			from, ok1 := calldata.AddressAt(tx.Data, 0)
			to, ok2 := calldata.AddressAt(tx.Data, 1)
			id, ok3 := uintAsBig(tx.Data, 2)
			amount, ok4 := uintAsBig(tx.Data, 3)
			if !ok1 || !ok2 || !ok3 || !ok4 {
				return ops.Params{}, false
			}
			return ops.Params{NFTAddress: tx.To, FromAddress: from, ToAddress: to, TokenID: id, Amount: amount}, true
		}},

		ops.SwapExactTokens: {Kind: ops.SwapExactTokens, Extract: func(tx envelope.Transaction) (ops.Params, bool) {
			amountIn, ok1 := uintAsBig(tx.Data, 0)
			amountOutMin, ok2 := uintAsBig(tx.Data, 1)
			if !ok1 || !ok2 {
				return ops.Params{}, false
			}
			return ops.Params{RouterAddress: tx.To, Amount: amountIn, AmountOut: amountOutMin}, true
		}},
	}
	return &Registry{entries: entries}
}

func extractSpenderAmount(tx envelope.Transaction) (ops.Params, bool) {
	spender, ok := calldata.AddressAt(tx.Data, 0)
	if !ok {
		return ops.Params{}, false
	}
	amount, ok := uintAsBig(tx.Data, 1)
	if !ok {
		return ops.Params{}, false
	}
	return ops.Params{TokenAddress: tx.To, SpenderAddress: spender, Amount: amount}, true
}
