// Package id generates random URL-safe identifiers for tokens and stored objects.
// Database rows use store-assigned integers instead.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// objectAlphabet avoids characters that are awkward in file names and object keys.
const objectAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generate creates a prefixed unique ID, e.g. "tok-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// ObjectName returns a lowercase alphanumeric name of n characters,
// suitable for a blob key segment.
func ObjectName(n int) (string, error) {
	name, err := gonanoid.Generate(objectAlphabet, n)
	if err != nil {
		return "", fmt.Errorf("generate object name: %w", err)
	}
	return name, nil
}
