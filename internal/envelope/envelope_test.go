package envelope

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	raw := []byte(`{
		"tx": {
			"from": "0xAAA0000000000000000000000000000000000001",
			"to": "0xBBB0000000000000000000000000000000000002",
			"value": "1000000000000000000",
			"data": "0x"
		},
		"receipt": {
			"status": 1,
			"gasUsed": 21000,
			"effectiveGasPrice": "0x3b9aca00",
			"logs": []
		},
		"state_before": {"balance": "2000000000000000000"},
		"state_after": {"balance": "999979000000000000"}
	}`)

	env, err := ParseEnvelope(raw)
	require.NoError(t, err)
	require.Equal(t, 1, env.Receipt.Status)
	require.Equal(t, "1000000000000000000", env.Tx.Value.Value().String())
	// 21000 gas at 1 gwei.
	require.Equal(t, "21000000000000", env.Receipt.GasCost().String())
	require.Equal(t, "2000000000000000000", env.StateBefore.BigInt("balance").String())
}

func TestParseEnvelopeMalformed(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{not json`))
	require.Error(t, err)
}

func TestParseCompositeInput(t *testing.T) {
	raw := []byte(`{
		"final_submission": {"error_detected": true, "error_type": "INSUFFICIENT_BNB_BALANCE"},
		"chain_state": {
			"initial_state": {"balance": "50"},
			"transactions": [{"hash": "0xabc", "from": "0x1", "to": "0x2", "value": 10, "data": "0x", "status": 1}]
		},
		"interaction_history": [
			{"round": 1, "action_result": {"success": false, "error": "reverted"}},
			{"round": 2, "action_result": {"success": true, "tx_hash": "0xabc", "block_number": 7}}
		]
	}`)

	in, err := ParseCompositeInput(raw)
	require.NoError(t, err)
	require.NotNil(t, in.FinalSubmission)
	require.True(t, in.FinalSubmission.ErrorDetected)
	require.Len(t, in.InteractionHistory, 2)
	require.Equal(t, uint64(7), in.InteractionHistory[1].ActionResult.BlockNumber)
	require.Equal(t, "10", in.ChainState.Transactions[0].Value.Value().String())
}

func TestBigIntJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"number", `123`, "123"},
		{"decimal string", `"456"`, "456"},
		{"hex string", `"0xff"`, "255"},
		{"null", `null`, "0"},
		{"garbage decodes as zero", `"zzz"`, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var b BigInt
			require.NoError(t, json.Unmarshal([]byte(tc.in), &b))
			require.Equal(t, tc.want, b.Value().String())
		})
	}

	t.Run("marshal", func(t *testing.T) {
		out, err := json.Marshal(NewBigInt(big.NewInt(789)))
		require.NoError(t, err)
		require.Equal(t, "789", string(out))
	})

	t.Run("nil value reads as zero", func(t *testing.T) {
		var b *BigInt
		require.Equal(t, "0", b.Value().String())
	})
}

func TestSameAddress(t *testing.T) {
	require.True(t, SameAddress("0xAbC0000000000000000000000000000000000001", "0xabc0000000000000000000000000000000000001"))
	require.False(t, SameAddress("0xabc0000000000000000000000000000000000001", "0xdef0000000000000000000000000000000000002"))
	require.False(t, SameAddress("", ""))
}

func TestGasCostNilReceipt(t *testing.T) {
	var r *Receipt
	require.Equal(t, "0", r.GasCost().String())
}
