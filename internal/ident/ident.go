// Package ident produces the short identifiers used for sections and links.
package ident

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync/atomic"
)

// Length of identifiers produced by New.
const Length = 9

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generator produces a new identifier on every call.
type Generator func() string

// New returns a random lowercase base36 token. Callers never check for collisions.
func New() string {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, Length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("ident: entropy source failed: %v", err))
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out)
}

// Sequential returns a deterministic generator yielding prefix1, prefix2, ...
func Sequential(prefix string) Generator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s%d", prefix, n.Add(1))
	}
}
