// Package calldata extracts function selectors and positional ABI words from
// raw transaction calldata. Decoding failures are data, not exceptions: every
// accessor returns a sentinel or an ok flag so the caller can report a failed
// check instead of crashing on malformed input.
package calldata

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SelectorNA is returned when calldata is too short to carry a selector.
const SelectorNA = "N/A"

const wordSize = 32

// SelectorOf returns the lowercased 4-byte function selector with 0x prefix,
// or SelectorNA when the calldata is shorter than "0x" plus 8 hex chars.
func SelectorOf(data string) string {
	if len(data) < 10 || !strings.HasPrefix(strings.ToLower(data), "0x") {
		return SelectorNA
	}
	return strings.ToLower(data[:10])
}

// payload decodes everything after the selector into bytes. Odd-length or
// non-hex input yields nil.
func payload(data string) []byte {
	if SelectorOf(data) == SelectorNA {
		return nil
	}
	raw, err := hex.DecodeString(data[10:])
	if err != nil {
		return nil
	}
	return raw
}

// WordCount returns the number of complete 32-byte argument words present.
func WordCount(data string) int {
	return len(payload(data)) / wordSize
}

// WordAt returns the 32-byte word at byte offset 4 + index*32. The second
// return value is false when the calldata does not reach that far.
func WordAt(data string, index int) ([wordSize]byte, bool) {
	var word [wordSize]byte
	raw := payload(data)
	if index < 0 || len(raw) < (index+1)*wordSize {
		return word, false
	}
	copy(word[:], raw[index*wordSize:(index+1)*wordSize])
	return word, true
}

// AddressFromWord reads the right-aligned 20-byte address from a word and
// returns it as a lowercase hex string.
func AddressFromWord(word [wordSize]byte) string {
	return strings.ToLower(common.BytesToAddress(word[12:]).Hex())
}

// UintFromWord interprets a word as an unsigned 256-bit integer.
func UintFromWord(word [wordSize]byte) *uint256.Int {
	return new(uint256.Int).SetBytes(word[:])
}

// AddressAt is WordAt followed by AddressFromWord.
func AddressAt(data string, index int) (string, bool) {
	word, ok := WordAt(data, index)
	if !ok {
		return "", false
	}
	return AddressFromWord(word), true
}

// UintAt is WordAt followed by UintFromWord.
func UintAt(data string, index int) (*uint256.Int, bool) {
	word, ok := WordAt(data, index)
	if !ok {
		return nil, false
	}
	return UintFromWord(word), true
}

// BoolAt interprets the word at index as an ABI-encoded bool.
func BoolAt(data string, index int) (bool, bool) {
	v, ok := UintAt(data, index)
	if !ok {
		return false, false
	}
	return !v.IsZero(), true
}

// DynamicBytesLen resolves the dynamic-tail layout used by
// safeTransferFrom(..., bytes) and 3-arg approveAndCall: the head word at
// headIndex holds a byte offset into the argument area, the word at that
// offset holds the tail length. Only presence and length are needed for the
// current operations, not the payload itself. Returns false when the offset
// or length word is out of range or absurd.
func DynamicBytesLen(data string, headIndex int) (uint64, bool) {
	offset, ok := UintAt(data, headIndex)
	if !ok || !offset.IsUint64() {
		return 0, false
	}
	off := offset.Uint64()
	if off%wordSize != 0 {
		return 0, false
	}
	length, ok := UintAt(data, int(off/wordSize))
	if !ok || !length.IsUint64() {
		return 0, false
	}
	raw := payload(data)
	if uint64(len(raw)) < off+wordSize {
		return 0, false
	}
	n := length.Uint64()
	if uint64(len(raw)) < off+wordSize+n {
		return 0, false
	}
	return n, true
}

// PathLenAt reads the element count of a dynamic address[] argument (a swap
// route) whose head word sits at headIndex. Array elements occupy one word
// each, unlike the byte-packed tail of a bytes argument.
func PathLenAt(data string, headIndex int) (int, bool) {
	offset, ok := UintAt(data, headIndex)
	if !ok || !offset.IsUint64() || offset.Uint64()%wordSize != 0 {
		return 0, false
	}
	off := offset.Uint64()
	count, ok := UintAt(data, int(off/wordSize))
	if !ok || !count.IsUint64() {
		return 0, false
	}
	n := count.Uint64()
	if uint64(len(payload(data))) < off+wordSize+n*wordSize {
		return 0, false
	}
	return int(n), true
}
