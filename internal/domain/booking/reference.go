package booking

import (
	"crypto/rand"
	"fmt"
)

// referenceAlphabet drops 0/O/1/I/L so codes survive being read out loud.
const referenceAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const referenceLength = 8

// NewReference generates a human-readable booking code like GS-7KQ2M9XF.
func NewReference() (string, error) {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("booking: reference entropy: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return "GS-" + string(buf), nil
}
