package security

import (
	"crypto/rand"
	"fmt"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Bytes at or above this value are rejected so every alphabet character is
// equally likely (256 is not a multiple of the alphabet size).
const codeByteLimit = 256 - 256%len(codeAlphabet)

// GenerateAccessCode returns a short uppercase alphanumeric access code
// drawn uniformly from the alphabet.
func GenerateAccessCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	code := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(code) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate access code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= codeByteLimit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == length {
				break
			}
		}
	}
	return string(code), nil
}
