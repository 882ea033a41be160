package domain

import (
	"crypto/rand"
	"fmt"
)

// Code constants.
const (
	// MinCodeLength is the shortest accepted code.
	MinCodeLength = 7

	// MaxCodeLength is the longest accepted code.
	MaxCodeLength = 8

	// CodeFieldSize is the fixed width of the code field on the wire.
	// Shorter codes are right-padded with spaces.
	CodeFieldSize = 8

	// MaxCodesPerRequest is the largest batch a single generate call may request.
	MaxCodesPerRequest = 2000

	// Alphabet is the character set codes are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// rejectAbove is the largest multiple of len(Alphabet) that fits in a byte.
// Random bytes at or above it are discarded to avoid modulo bias.
const rejectAbove = 256 - 256%len(Alphabet)

// CodeEntry is a single code and its redemption state.
type CodeEntry struct {
	Code string `json:"code"`
	Used bool   `json:"used"`
}

// ValidCodeLength reports whether n is an accepted code length.
func ValidCodeLength(n int) bool {
	return n >= MinCodeLength && n <= MaxCodeLength
}

// ValidateCode checks length and charset of a code.
func ValidateCode(code string) error {
	if !ValidCodeLength(len(code)) {
		return ErrCodeMalformed.WithDetails(fmt.Sprintf("length %d", len(code)))
	}
	for i := 0; i < len(code); i++ {
		if !inAlphabet(code[i]) {
			return ErrCodeMalformed.WithDetails(fmt.Sprintf("invalid character %q", code[i]))
		}
	}
	return nil
}

func inAlphabet(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// GenerateCode draws a uniformly random code of the given length from Alphabet.
func GenerateCode(length int) (string, error) {
	if !ValidCodeLength(length) {
		return "", ErrCodeMalformed.WithDetails(fmt.Sprintf("length %d", length))
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", ErrInternal.WithCause(err)
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
