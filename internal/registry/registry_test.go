package registry

import (
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/questbench/txvalidator/internal/envelope"
	"github.com/questbench/txvalidator/internal/ops"
)

const (
	tokenAddr = "0x3333333333333333333333333333333333333333"
	recvAddr  = "0x4444444444444444444444444444444444444444"
	ownerAddr = "0x5555555555555555555555555555555555555555"
)

func wordHex(v uint64) string {
	return fmt.Sprintf("%064x", v)
}

func addrWord(addr string) string {
	return strings.Repeat("0", 24) + strings.TrimPrefix(addr, "0x")
}

func TestResolve(t *testing.T) {
	reg := Default()

	t.Run("known kind", func(t *testing.T) {
		entry, ok := reg.Resolve(ops.ERC20Transfer)
		require.True(t, ok)
		require.Equal(t, ops.ERC20Transfer, entry.Kind)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, ok := reg.Resolve("mint_stablecoin")
		require.False(t, ok)
	})
}

func TestExtractors(t *testing.T) {
	reg := Default()

	t.Run("bnb transfer reads tx fields", func(t *testing.T) {
		entry, _ := reg.Resolve(ops.BNBTransfer)
		p, ok := entry.Extract(envelope.Transaction{
			To:    recvAddr,
			Value: envelope.NewBigInt(big.NewInt(1000)),
		})
		require.True(t, ok)
		require.Equal(t, recvAddr, p.ToAddress)
		require.Equal(t, "1000", p.Amount.String())
	})

	t.Run("erc20 transfer decodes calldata", func(t *testing.T) {
		entry, _ := reg.Resolve(ops.ERC20Transfer)
		p, ok := entry.Extract(envelope.Transaction{
			To:   tokenAddr,
			Data: "0xa9059cbb" + addrWord(recvAddr) + wordHex(500),
		})
		require.True(t, ok)
		require.Equal(t, tokenAddr, p.TokenAddress)
		require.Equal(t, recvAddr, p.ToAddress)
		require.Equal(t, "500", p.Amount.String())
	})

	t.Run("transferFrom decodes three words", func(t *testing.T) {
		entry, _ := reg.Resolve(ops.ERC20TransferFrom)
		p, ok := entry.Extract(envelope.Transaction{
			To:   tokenAddr,
			Data: "0x23b872dd" + addrWord(ownerAddr) + addrWord(recvAddr) + wordHex(750),
		})
		require.True(t, ok)
		require.Equal(t, ownerAddr, p.FromAddress)
		require.Equal(t, recvAddr, p.ToAddress)
		require.Equal(t, "750", p.Amount.String())
	})

	t.Run("swap decodes amount bounds", func(t *testing.T) {
		entry, _ := reg.Resolve(ops.SwapExactTokens)
		p, ok := entry.Extract(envelope.Transaction{
			To:   tokenAddr,
			Data: "0x38ed1739" + wordHex(10000) + wordHex(9500),
		})
		require.True(t, ok)
		require.Equal(t, "10000", p.Amount.String())
		require.Equal(t, "9500", p.AmountOut.String())
	})

	t.Run("truncated calldata refuses extraction", func(t *testing.T) {
		entry, _ := reg.Resolve(ops.ERC20Transfer)
		_, ok := entry.Extract(envelope.Transaction{To: tokenAddr, Data: "0xa9059cbb" + addrWord(recvAddr)})
		require.False(t, ok)
	})
}

func TestBuild(t *testing.T) {
	reg := Default()
	entry, _ := reg.Resolve(ops.ERC20Transfer)

	t.Run("builds a bound validator", func(t *testing.T) {
		v, ok := entry.Build(envelope.Transaction{
			To:   tokenAddr,
			Data: "0xa9059cbb" + addrWord(recvAddr) + wordHex(500),
		})
		require.True(t, ok)
		require.Equal(t, ops.ERC20Transfer, v.Spec().Kind)
	})

	t.Run("undecodable transaction fails the build", func(t *testing.T) {
		_, ok := entry.Build(envelope.Transaction{To: tokenAddr, Data: "0x"})
		require.False(t, ok)
	})
}
