package state

import (
	"fmt"
	"math/big"
	"strings"
)

// Snapshot is an open mapping of domain fields (balance, token_balance,
// allowance, nft_owner, ...) captured at one instant. Absent fields read as
// zero values, never as errors: a missing balance is a legitimate (usually
// failing) observation.
type Snapshot map[string]any

// Has reports whether the field was captured at all.
func (s Snapshot) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s[key]
	return ok
}

// BigInt returns the field as an unsigned big integer. Accepts native ints,
// floats with integral value, decimal strings and 0x-hex strings. Anything
// absent or unparseable reads as 0.
func (s Snapshot) BigInt(key string) *big.Int {
	if s == nil {
		return new(big.Int)
	}
	return ToBigInt(s[key])
}

// String returns the field as a string, or "" when absent.
func (s Snapshot) String(key string) string {
	if s == nil {
		return ""
	}
	switch v := s[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// BigIntAt returns one element of a list-valued field as an unsigned big
// integer. A negative index counts from the end, so -1 reads the last hop of
// a router amounts array. Absent fields, non-list values and out-of-range
// indexes read as 0.
func (s Snapshot) BigIntAt(key string, index int) *big.Int {
	if s == nil {
		return new(big.Int)
	}
	list, ok := s[key].([]any)
	if !ok {
		return new(big.Int)
	}
	if index < 0 {
		index += len(list)
	}
	if index < 0 || index >= len(list) {
		return new(big.Int)
	}
	return ToBigInt(list[index])
}

// Bool returns the field as a boolean, treating absent fields as false.
func (s Snapshot) Bool(key string) bool {
	if s == nil {
		return false
	}
	v, _ := s[key].(bool)
	return v
}

// Delta returns after[key] - before[key]. Negative results are meaningful:
// a sender balance delta for a transfer is expected to be negative.
func Delta(before, after Snapshot, key string) *big.Int {
	return new(big.Int).Sub(after.BigInt(key), before.BigInt(key))
}

// ToBigInt converts any envelope value to a big integer, defaulting to 0.
func ToBigInt(v any) *big.Int {
	switch n := v.(type) {
	case nil:
		return new(big.Int)
	case *big.Int:
		if n == nil {
			return new(big.Int)
		}
		return new(big.Int).Set(n)
	case big.Int:
		return new(big.Int).Set(&n)
	case int:
		return big.NewInt(int64(n))
	case int64:
		return big.NewInt(n)
	case uint64:
		return new(big.Int).SetUint64(n)
	case bool:
		if n {
			return big.NewInt(1)
		}
		return new(big.Int)
	case float64:
		// JSON numbers decode as float64; snapshots carry raw base units so
		// the value is integral whenever it is in float range at all.
		bi, _ := new(big.Float).SetFloat64(n).Int(nil)
		return bi
	case string:
		str := strings.TrimSpace(n)
		if str == "" {
			return new(big.Int)
		}
		base := 10
		if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
			str = str[2:]
			base = 16
		}
		bi, ok := new(big.Int).SetString(str, base)
		if !ok {
			return new(big.Int)
		}
		return bi
	default:
		return new(big.Int)
	}
}
