package check

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/questbench/txvalidator/internal/envelope"
	"github.com/questbench/txvalidator/internal/state"
	"github.com/questbench/txvalidator/internal/tolerance"
)

const recipient = "0x2222222222222222222222222222222222222222"

func successfulEnvelope() *envelope.Envelope {
	return &envelope.Envelope{
		Tx: envelope.Transaction{
			From:  "0x1111111111111111111111111111111111111111",
			To:    recipient,
			Value: envelope.NewBigInt(big.NewInt(1000)),
			Data:  "0x",
		},
		Receipt: envelope.Receipt{
			Status:            1,
			GasUsed:           envelope.NewBigInt(big.NewInt(21000)),
			EffectiveGasPrice: envelope.NewBigInt(big.NewInt(1)),
		},
		StateBefore: state.Snapshot{"balance": "100000"},
		StateAfter:  state.Snapshot{"balance": "78000"},
	}
}

func TestEvaluateShortCircuit(t *testing.T) {
	env := successfulEnvelope()
	env.Receipt.Status = 0

	checks := []Check{
		{Name: "Transaction Success", Kind: TxSuccess, Weight: 30},
		{Name: "Recipient Address", Kind: ToAddress, Weight: 70, ExpectedAddr: recipient},
	}
	res := Evaluate(checks, Threshold(0.8), env)

	require.False(t, res.Passed)
	require.Zero(t, res.Score)
	require.Len(t, res.Checks, 1)
	require.False(t, res.Checks[0].Passed)
}

func TestEvaluateQueryShortCircuit(t *testing.T) {
	env := &envelope.Envelope{
		Tx: envelope.Transaction{
			QueryResult: &envelope.QueryResult{Success: false, Error: "rpc timeout"},
		},
	}
	checks := []Check{
		{Name: "Query Execution Success", Kind: QuerySuccess, Weight: 30},
		{Name: "Return Format Correct", Kind: FieldPresent, Weight: 70, Keys: []string{"balance_wei"}},
	}
	res := Evaluate(checks, AllRequired(), env)

	require.False(t, res.Passed)
	require.Zero(t, res.Score)
	require.Len(t, res.Checks, 1)
	require.Contains(t, res.Checks[0].Message, "rpc timeout")
}

func TestEvaluateScoreIsSumOfPassedWeights(t *testing.T) {
	env := successfulEnvelope()
	checks := []Check{
		{Name: "Transaction Success", Kind: TxSuccess, Weight: 30},
		{Name: "Recipient Address", Kind: ToAddress, Weight: 20, ExpectedAddr: recipient},
		{Name: "Wrong Address", Kind: ToAddress, Weight: 50, ExpectedAddr: "0x9999999999999999999999999999999999999999"},
	}
	res := Evaluate(checks, Threshold(0.8), env)

	require.Equal(t, float64(50), res.Score)
	require.False(t, res.Passed)
	require.Len(t, res.Checks, 3)
	require.Len(t, res.Trace, 4)
}

func TestEvaluatePassPolicies(t *testing.T) {
	env := successfulEnvelope()
	passing := Check{Name: "Transaction Success", Kind: TxSuccess, Weight: 80}
	failing := Check{Name: "Wrong Address", Kind: ToAddress, Weight: 20, ExpectedAddr: "0x9999999999999999999999999999999999999999"}

	t.Run("threshold ignores individual failures", func(t *testing.T) {
		res := Evaluate([]Check{passing, failing}, Threshold(0.8), env)
		require.True(t, res.Passed)
		require.Equal(t, float64(80), res.Score)
	})

	t.Run("all required fails on any failure", func(t *testing.T) {
		res := Evaluate([]Check{passing, failing}, AllRequired(), env)
		require.False(t, res.Passed)
		require.Equal(t, float64(80), res.Score)
	})

	t.Run("all required passes regardless of score", func(t *testing.T) {
		res := Evaluate([]Check{passing}, AllRequired(), env)
		require.True(t, res.Passed)
	})
}

func TestCheckKinds(t *testing.T) {
	t.Run("tx value with gas-adjusted expected", func(t *testing.T) {
		env := successfulEnvelope()
		// before 100000, gas 21000: a full sweep sends 79000.
		env.Tx.Value = envelope.NewBigInt(big.NewInt(79000))
		c := Check{Name: "Maximum Amount Transferred", Kind: TxValue, Mode: ExpMaxNative,
			RefKey: "balance", Weight: 30, Tol: tolerance.Fixed(0, 0)}
		require.True(t, c.Evaluate(env).Passed)
	})

	t.Run("balance delta decrease includes gas", func(t *testing.T) {
		env := successfulEnvelope()
		// balance fell 22000: 1000 transferred plus 21000 gas.
		c := Check{Name: "Sender Balance Change", Kind: BalanceDelta, BeforeKey: "balance",
			Decrease: true, Expected: big.NewInt(1000), Mode: ExpPlusGas, Weight: 30, Tol: tolerance.Fixed(0, 0)}
		env.StateAfter = state.Snapshot{"balance": "78000"}
		require.True(t, c.Evaluate(env).Passed)

		env.StateAfter = state.Snapshot{"balance": "77000"}
		require.False(t, c.Evaluate(env).Passed)
	})

	t.Run("percent of prior balance", func(t *testing.T) {
		env := successfulEnvelope()
		env.StateBefore = state.Snapshot{"token_balance": "1000"}
		env.StateAfter = state.Snapshot{"token_balance": "505"}
		// 50% of 1000 with 2% slack accepts 490..510 of spend.
		c := Check{Name: "Transfer Amount (Percentage)", Kind: BalanceDelta, BeforeKey: "token_balance",
			Decrease: true, Mode: ExpPercentBefore, Percent: 50, Weight: 30, Tol: tolerance.Fixed(0, 200)}
		require.True(t, c.Evaluate(env).Passed)

		env.StateAfter = state.Snapshot{"token_balance": "480"}
		require.False(t, c.Evaluate(env).Passed)
	})

	t.Run("state address", func(t *testing.T) {
		env := successfulEnvelope()
		env.StateAfter = state.Snapshot{"nft_owner": "0x2222222222222222222222222222222222222222"}
		c := Check{Name: "NFT Ownership Transfer", Kind: StateAddress, AfterKey: "nft_owner",
			ExpectedAddr: "0x2222222222222222222222222222222222222222", Weight: 40}
		require.True(t, c.Evaluate(env).Passed)
	})

	t.Run("approval handled accepts prior allowance", func(t *testing.T) {
		env := successfulEnvelope()
		env.StateBefore = state.Snapshot{"allowance": "5000"}
		env.StateAfter = state.Snapshot{"allowance": "5000"}
		c := Check{Name: "Token Approval", Kind: ApprovalHandled, BeforeKey: "allowance",
			Expected: big.NewInt(1000), Weight: 15}
		require.True(t, c.Evaluate(env).Passed)
	})

	t.Run("approval handled accepts consumed allowance", func(t *testing.T) {
		env := successfulEnvelope()
		env.StateBefore = state.Snapshot{"allowance": "900"}
		env.StateAfter = state.Snapshot{"allowance": "0"}
		c := Check{Name: "Token Approval", Kind: ApprovalHandled, BeforeKey: "allowance",
			Expected: big.NewInt(1000), Weight: 15}
		require.False(t, c.Evaluate(env).Passed)

		env.StateBefore = state.Snapshot{"allowance": "1000"}
		require.True(t, c.Evaluate(env).Passed)
	})

	t.Run("value equality against reference", func(t *testing.T) {
		env := successfulEnvelope()
		env.Tx.QueryResult = &envelope.QueryResult{Success: true, Data: state.Snapshot{"block_number": 1050}}
		env.StateBefore = state.Snapshot{"reference_block_number": 1000}
		c := Check{Name: "Block Number Validity", Kind: ValueEq, DataKey: "block_number",
			RefKey: "reference_block_number", Weight: 25, Tol: tolerance.Fixed(100, 0)}
		require.True(t, c.Evaluate(env).Passed)

		env.Tx.QueryResult.Data = state.Snapshot{"block_number": 1200}
		require.False(t, c.Evaluate(env).Passed)
	})

	t.Run("missing query field", func(t *testing.T) {
		env := successfulEnvelope()
		env.Tx.QueryResult = &envelope.QueryResult{Success: true, Data: state.Snapshot{}}
		c := Check{Name: "Return Format Correct", Kind: FieldPresent, Keys: []string{"reserve0", "reserve1"}, Weight: 30}
		out := c.Evaluate(env)
		require.False(t, out.Passed)
		require.Contains(t, out.Message, "reserve0")
	})
}
