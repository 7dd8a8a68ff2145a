// Package idgen provides short unique ID generation for generated records.
//
// Two shapes are produced: random nanoid-backed IDs with an entity prefix
// (sprints, fix versions) and human-readable project keys with a
// running counter (tickets, e.g. "INNO-42").
package idgen

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes for random IDs.
const (
	PrefixSprint     = "SPR-"
	PrefixFixVersion = "VER-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 8

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Allocator hands out project keys ("PREFIX-N") from a running counter
// and random IDs for the other entity kinds. It is not safe for
// concurrent use.
type Allocator struct {
	project string
	next    int
	rng     *rand.Rand
}

// NewAllocator returns an allocator for the given project prefix. The
// first key handed out is "<project>-1".
func NewAllocator(project string) *Allocator {
	return &Allocator{project: project, next: 1}
}

// Next returns the next ticket key.
func (a *Allocator) Next() string {
	key := a.project + "-" + strconv.Itoa(a.next)
	a.next++
	return key
}

// NewSeededAllocator is like NewAllocator but draws the random part of
// ForKind IDs from r, so a fixed seed yields the same IDs.
func NewSeededAllocator(project string, r *rand.Rand) *Allocator {
	return &Allocator{project: project, next: 1, rng: r}
}

// Issued reports how many ticket keys have been handed out.
func (a *Allocator) Issued() int {
	return a.next - 1
}

// ForKind returns a random ID namespaced by prefix. Unseeded allocators
// use nanoid and surface entropy failures.
func (a *Allocator) ForKind(prefix string) (string, error) {
	if a.rng == nil {
		return GenerateWithPrefix(prefix)
	}
	b := make([]byte, Length)
	for i := range b {
		b[i] = Alphabet[a.rng.IntN(len(Alphabet))]
	}
	return prefix + string(b), nil
}
