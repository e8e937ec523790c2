package calldata

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const addrA = "0x1111111111111111111111111111111111111111"

func wordHex(v uint64) string {
	return fmt.Sprintf("%064x", v)
}

func addrWord(addr string) string {
	return strings.Repeat("0", 24) + strings.TrimPrefix(addr, "0x")
}

func TestSelectorOf(t *testing.T) {
	t.Run("short data yields sentinel", func(t *testing.T) {
		require.Equal(t, SelectorNA, SelectorOf(""))
		require.Equal(t, SelectorNA, SelectorOf("0x"))
		require.Equal(t, SelectorNA, SelectorOf("0xa9059c"))
	})

	t.Run("selector is lowercased", func(t *testing.T) {
		require.Equal(t, "0xa9059cbb", SelectorOf("0xA9059CBB"+wordHex(1)))
	})

	t.Run("missing prefix yields sentinel", func(t *testing.T) {
		require.Equal(t, SelectorNA, SelectorOf("a9059cbb00000000"))
	})
}

func TestWordAccessors(t *testing.T) {
	data := "0xa9059cbb" + addrWord(addrA) + wordHex(500)

	t.Run("word count", func(t *testing.T) {
		require.Equal(t, 2, WordCount(data))
		require.Equal(t, 0, WordCount("0xd0e30db0"))
	})

	t.Run("address at index", func(t *testing.T) {
		addr, ok := AddressAt(data, 0)
		require.True(t, ok)
		require.Equal(t, addrA, addr)
	})

	t.Run("uint at index", func(t *testing.T) {
		v, ok := UintAt(data, 1)
		require.True(t, ok)
		require.Equal(t, uint64(500), v.Uint64())
	})

	t.Run("out of range", func(t *testing.T) {
		_, ok := AddressAt(data, 2)
		require.False(t, ok)
		_, ok = UintAt(data, -1)
		require.False(t, ok)
	})

	t.Run("bool at index", func(t *testing.T) {
		approved := "0xa22cb465" + addrWord(addrA) + wordHex(1)
		v, ok := BoolAt(approved, 1)
		require.True(t, ok)
		require.True(t, v)

		revoked := "0xa22cb465" + addrWord(addrA) + wordHex(0)
		v, ok = BoolAt(revoked, 1)
		require.True(t, ok)
		require.False(t, v)
	})
}

func TestDynamicBytesLen(t *testing.T) {
	t.Run("resolves offset and length", func(t *testing.T) {
		// head word 0 points at offset 32, tail declares 3 bytes.
		data := "0xcae9ca51" + wordHex(32) + wordHex(3) + "abcdef" + strings.Repeat("0", 58)
		n, ok := DynamicBytesLen(data, 0)
		require.True(t, ok)
		require.Equal(t, uint64(3), n)
	})

	t.Run("truncated tail fails", func(t *testing.T) {
		data := "0xcae9ca51" + wordHex(32) + wordHex(64)
		_, ok := DynamicBytesLen(data, 0)
		require.False(t, ok)
	})

	t.Run("misaligned offset fails", func(t *testing.T) {
		data := "0xcae9ca51" + wordHex(33) + wordHex(0)
		_, ok := DynamicBytesLen(data, 0)
		require.False(t, ok)
	})
}

func TestPathLenAt(t *testing.T) {
	t.Run("counts address elements", func(t *testing.T) {
		data := "0x38ed1739" + wordHex(32) + wordHex(2) + addrWord(addrA) + addrWord(addrA)
		n, ok := PathLenAt(data, 0)
		require.True(t, ok)
		require.Equal(t, 2, n)
	})

	t.Run("declared count beyond calldata fails", func(t *testing.T) {
		data := "0x38ed1739" + wordHex(32) + wordHex(5) + addrWord(addrA)
		_, ok := PathLenAt(data, 0)
		require.False(t, ok)
	})
}
