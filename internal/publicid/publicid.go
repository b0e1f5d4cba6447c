// Package publicid generates the opaque identifiers used in customer-facing
// links. They are random, URL-safe and distinct from internal storage keys.
package publicid

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	prefix   = "cv-"
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	length   = 10
)

// New returns a fresh public id of the form cv-xxxxxxxxxx.
func New() (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate public id: %w", err)
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return prefix + string(out), nil
}

// Valid reports whether a string has the shape of a public id. It is a shape
// check only; existence is always decided by the database.
func Valid(id string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	rest := id[len(prefix):]
	if len(rest) != length {
		return false
	}
	for _, r := range rest {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}
