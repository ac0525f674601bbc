package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// Roller draws a die value in [1,6].
type Roller interface {
	Roll() int
}

// RandRoller is a uniform d6 backed by a seeded PCG generator, so a game can be
// replayed from its seed.
type RandRoller struct {
	seed uint64
	rng  *rand.Rand
}

// NewRandRoller creates a roller for the given seed.
func NewRandRoller(seed uint64) *RandRoller {
	return &RandRoller{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Roll returns a uniform value in [1,6].
func (r *RandRoller) Roll() int {
	return r.rng.IntN(6) + 1
}

// Shuffle has the signature of rand.Shuffle and draws from the same stream.
func (r *RandRoller) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}

// Seed returns the seed the roller was created with.
func (r *RandRoller) Seed() uint64 { return r.seed }

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// SequenceRoller replays fixed values in order and then repeats the last one.
// Tests and scripted games use it to pin every roll.
type SequenceRoller struct {
	values []int
	next   int
}

// NewSequenceRoller creates a roller that yields values in order.
func NewSequenceRoller(values ...int) *SequenceRoller {
	return &SequenceRoller{values: values}
}

func (s *SequenceRoller) Roll() int {
	if len(s.values) == 0 {
		return 1
	}
	if s.next >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.next]
	s.next++
	return v
}
