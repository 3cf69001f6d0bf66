// Package otpcode generates short-lived numeric verification codes.
package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generator produces verification codes.
type Generator interface {
	Generate() string
}

// Numeric generates fixed-length decimal codes from a cryptographically
// secure random source. Leading zeros are allowed.
type Numeric struct {
	length int
	max    *big.Int
}

// NewNumeric returns a generator producing codes of the given length.
func NewNumeric(length int) *Numeric {
	max := big.NewInt(10)
	max.Exp(max, big.NewInt(int64(length)), nil)

	return &Numeric{length: length, max: max}
}

// Generate returns a new random code.
func (n *Numeric) Generate() string {
	v, err := rand.Int(rand.Reader, n.max)
	if err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		panic(fmt.Sprintf("otpcode: read random: %v", err))
	}
	return fmt.Sprintf("%0*d", n.length, v)
}
