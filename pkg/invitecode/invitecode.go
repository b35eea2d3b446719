// Package invitecode produces the short codes used to find a group without
// browsing the public directory.
package invitecode

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	Length   = 8
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generator returns candidate codes. Uniqueness is checked by the caller
// against storage.
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator draws every character uniformly from Alphabet.
type RandomGenerator struct {
	source io.Reader
}

// NewRandomGenerator uses crypto/rand when source is nil.
func NewRandomGenerator(source io.Reader) *RandomGenerator {
	if source == nil {
		source = rand.Reader
	}
	return &RandomGenerator{source: source}
}

func (g *RandomGenerator) Generate() (string, error) {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		n, err := rand.Int(g.source, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Normalize upper-cases and trims user input so lookups are case-insensitive.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsValid reports whether code is exactly Length characters of Alphabet.
// Callers normalise first.
func IsValid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
