// Package idgen mints ids for save and load events so subscribers can
// de-duplicate redelivered messages. Ids are nanoid strings behind a prefix
// naming the operation.
package idgen

import (
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Operation prefixes.
const (
	SavePrefix = "save-"
	LoadPrefix = "load-"
)

// Alphabet omits characters that are easy to misread in logs (0/O, 1/l/I).
const Alphabet = "23456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// Length is the number of random characters after the prefix.
const Length = 12

// Save returns a new id for a save event.
func Save() (string, error) {
	return withPrefix(SavePrefix)
}

// Load returns a new id for a load event.
func Load() (string, error) {
	return withPrefix(LoadPrefix)
}

func withPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Valid reports whether id has a known prefix followed by Length characters
// from Alphabet.
func Valid(id string) bool {
	var rest string
	switch {
	case strings.HasPrefix(id, SavePrefix):
		rest = id[len(SavePrefix):]
	case strings.HasPrefix(id, LoadPrefix):
		rest = id[len(LoadPrefix):]
	default:
		return false
	}
	if len(rest) != Length {
		return false
	}
	for _, r := range rest {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
