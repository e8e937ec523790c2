package composite

import (
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/questbench/txvalidator/internal/envelope"
	"github.com/questbench/txvalidator/internal/ops"
	"github.com/questbench/txvalidator/internal/state"
)

const (
	tokenAddr = "0x3333333333333333333333333333333333333333"
	recvAddr  = "0x4444444444444444444444444444444444444444"
)

func wordHex(v uint64) string {
	return fmt.Sprintf("%064x", v)
}

func addrWord(addr string) string {
	return strings.Repeat("0", 24) + strings.TrimPrefix(addr, "0x")
}

func transferCalldata(to string, amount uint64) string {
	return "0xa9059cbb" + addrWord(to) + wordHex(amount)
}

func TestAtomicReuse(t *testing.T) {
	t.Run("unknown key operation reports load failure", func(t *testing.T) {
		v := New(ops.Params{}, Strategy{KeyOperation: "mint_stablecoin"}, nil)
		res := v.Validate(&envelope.CompositeInput{})
		require.False(t, res.Passed)
		require.Zero(t, res.Score)
		require.Equal(t, StatusValidatorLoadFailed, res.Status)
	})

	t.Run("missing envelope is a validation error", func(t *testing.T) {
		v := New(ops.Params{}, Strategy{KeyOperation: string(ops.BNBTransfer)}, nil)
		res := v.Validate(&envelope.CompositeInput{})
		require.Equal(t, StatusValidationError, res.Status)
	})

	t.Run("scores the observed transaction", func(t *testing.T) {
		v := New(ops.Params{}, Strategy{KeyOperation: string(ops.BNBTransfer)}, nil)
		env := &envelope.Envelope{
			Tx: envelope.Transaction{
				To:    recvAddr,
				Value: envelope.NewBigInt(big.NewInt(100)),
				Data:  "0x",
			},
			Receipt: envelope.Receipt{
				Status:            1,
				GasUsed:           envelope.NewBigInt(big.NewInt(21000)),
				EffectiveGasPrice: envelope.NewBigInt(big.NewInt(1)),
			},
			StateBefore: state.Snapshot{"balance": "10000000"},
			StateAfter:  state.Snapshot{"balance": "9978900"},
		}
		res := v.Validate(&envelope.CompositeInput{Envelope: env})
		require.True(t, res.Passed)
		require.Equal(t, float64(100), res.Score)
		require.Equal(t, string(ops.BNBTransfer), res.Details["key_operation"])
	})
}

func TestErrorReportVerification(t *testing.T) {
	params := ops.Params{Amount: big.NewInt(100)}
	v := New(params, Strategy{KeyOperation: string(ops.ERC20Transfer)}, nil)

	report := func(errType string) *envelope.CompositeInput {
		return &envelope.CompositeInput{
			FinalSubmission: &envelope.FinalSubmission{ErrorDetected: true, ErrorType: errType},
			ChainState:      &envelope.ChainState{InitialState: state.Snapshot{"token_balance": "50", "balance": "150"}},
		}
	}

	t.Run("correct diagnosis scores full", func(t *testing.T) {
		res := v.Validate(report(ErrTokenInsufficientBalance))
		require.True(t, res.Passed)
		require.Equal(t, float64(100), res.Score)
		require.Equal(t, StatusErrorReportValid, res.Status)
	})

	t.Run("false alarm scores zero", func(t *testing.T) {
		// 150 wei on hand covers the claimed 100.
		res := v.Validate(report(ErrInsufficientBNBBalance))
		require.False(t, res.Passed)
		require.Zero(t, res.Score)
		require.Equal(t, StatusErrorReportInvalid, res.Status)
	})

	t.Run("token not found matches absent field", func(t *testing.T) {
		in := report(ErrTokenNotFound)
		in.ChainState.InitialState = state.Snapshot{"balance": "150"}
		res := v.Validate(in)
		require.True(t, res.Passed)
	})

	t.Run("unknown error type is always invalid", func(t *testing.T) {
		res := v.Validate(report("GREMLINS_IN_THE_POOL"))
		require.False(t, res.Passed)
		require.Zero(t, res.Score)
	})

	t.Run("correct diagnosis decays with wasted rounds", func(t *testing.T) {
		slow := params
		slow.OptimalSteps = 2
		sv := New(slow, Strategy{KeyOperation: string(ops.ERC20Transfer)}, nil)
		in := report(ErrTokenInsufficientBalance)
		in.InteractionHistory = []envelope.Round{
			{Round: 1}, {Round: 2}, {Round: 3}, {Round: 4},
		}
		res := sv.Validate(in)
		require.Equal(t, StatusErrorReportValid, res.Status)
		require.Equal(t, float64(50), res.Score)
		require.Equal(t, 0.5, res.Details["decay_factor"])
		require.False(t, res.Passed)
	})
}

func TestTaskCompletion(t *testing.T) {
	params := ops.Params{ToAddress: recvAddr, Amount: big.NewInt(500)}
	strategy := Strategy{KeyOperation: string(ops.ERC20Transfer)}

	input := func(calldata string) *envelope.CompositeInput {
		return &envelope.CompositeInput{
			FinalSubmission: &envelope.FinalSubmission{},
			ChainState: &envelope.ChainState{
				Transactions: []envelope.ExecutedTx{
					{Hash: "0xabc", To: tokenAddr, Data: calldata, Status: 1},
				},
			},
			InteractionHistory: []envelope.Round{
				{Round: 1, ActionResult: &envelope.ActionResult{Success: false, Error: "reverted"}},
				{Round: 2, ActionResult: &envelope.ActionResult{Success: true, TxHash: "0xabc"}},
			},
		}
	}

	t.Run("completion with compliant parameters", func(t *testing.T) {
		v := New(params, strategy, nil)
		res := v.Validate(input(transferCalldata(recvAddr, 500)))
		require.True(t, res.Passed)
		require.Equal(t, float64(100), res.Score)
		require.Equal(t, StatusTaskCompleted, res.Status)
	})

	t.Run("substituted recipient scores zero", func(t *testing.T) {
		v := New(params, strategy, nil)
		res := v.Validate(input(transferCalldata("0x9999999999999999999999999999999999999999", 500)))
		require.False(t, res.Passed)
		require.Zero(t, res.Score)
		require.Equal(t, StatusParameterMismatch, res.Status)
	})

	t.Run("substituted amount scores zero", func(t *testing.T) {
		v := New(params, strategy, nil)
		res := v.Validate(input(transferCalldata(recvAddr, 499)))
		require.False(t, res.Passed)
		require.Equal(t, StatusParameterMismatch, res.Status)
	})

	t.Run("hash absent from chain state scores zero", func(t *testing.T) {
		v := New(params, strategy, nil)
		in := input(transferCalldata(recvAddr, 500))
		in.ChainState.Transactions = nil
		res := v.Validate(in)
		require.False(t, res.Passed)
		require.Zero(t, res.Score)
		require.Equal(t, StatusTransactionMissing, res.Status)
	})

	t.Run("no transaction earns fixed partial credit", func(t *testing.T) {
		v := New(params, strategy, nil)
		in := input("")
		in.InteractionHistory = []envelope.Round{
			{Round: 1, ActionResult: &envelope.ActionResult{Success: false, Error: "reverted"}},
		}
		res := v.Validate(in)
		require.False(t, res.Passed)
		require.Equal(t, float64(50), res.Score)
		require.Equal(t, StatusNoTransaction, res.Status)
	})

	t.Run("step decay halves the score past double the optimum", func(t *testing.T) {
		decayed := params
		decayed.OptimalSteps = 1
		v := New(decayed, strategy, nil)
		res := v.Validate(input(transferCalldata(recvAddr, 500)))
		require.Equal(t, float64(50), res.Score)
		require.False(t, res.Passed)
		require.Equal(t, 0.5, res.Details["decay_factor"])
	})

	t.Run("optimal step count keeps full score", func(t *testing.T) {
		fast := params
		fast.OptimalSteps = 2
		v := New(fast, strategy, nil)
		res := v.Validate(input(transferCalldata(recvAddr, 500)))
		require.Equal(t, float64(100), res.Score)
		require.True(t, res.Passed)
	})
}

func TestValidateNeverPanics(t *testing.T) {
	v := New(ops.Params{}, Strategy{KeyOperation: string(ops.BNBTransfer)}, nil)

	t.Run("nil input", func(t *testing.T) {
		res := v.Validate(nil)
		require.Equal(t, StatusValidationError, res.Status)
	})

	t.Run("history entries without action results", func(t *testing.T) {
		res := v.Validate(&envelope.CompositeInput{
			FinalSubmission:    &envelope.FinalSubmission{},
			InteractionHistory: []envelope.Round{{Round: 1}},
		})
		require.Equal(t, StatusNoTransaction, res.Status)
	})
}
