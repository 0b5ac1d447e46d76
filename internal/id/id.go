// Package id generates prefixed identifiers for dispatches and stream clients.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used across docwatch.
const (
	PrefixGeneration = "gen"
	PrefixSSEClient  = "sse"
)

// Generate creates a prefixed NanoID, e.g. "gen-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
