// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package ksa

import (
	"math/rand/v2"
)

const mask = 1<<Width - 1

// Result is the pair of values produced by the adder.
//
type Result struct {
	Sum   uint8 `json:"sum"`
	Carry uint8 `json:"carry_out"`
}

// Reference returns the expected adder result for operands a and b, which
// must be in the range [0, 15].
//
func Reference(a, b uint8) Result {
	r := uint(a) + uint(b)
	return Result{
		Sum:   uint8(r & mask),
		Carry: uint8(r >> Width & 1),
	}
}

// Pair is a pair of adder operands.
//
type Pair struct {
	A uint8 `json:"a"`
	B uint8 `json:"b"`
}

// RandomOperands returns n operand pairs drawn from a PCG generator seeded
// with seed. The same seed always yields the same sequence.
//
func RandomOperands(seed uint64, n int) []Pair {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ps := make([]Pair, n)
	for i := range ps {
		ps[i] = Pair{uint8(r.IntN(mask + 1)), uint8(r.IntN(mask + 1))}
	}
	return ps
}

// ExhaustiveOperands returns all 256 operand pairs, a major.
//
func ExhaustiveOperands() []Pair {
	ps := make([]Pair, 0, (mask+1)*(mask+1))
	for a := 0; a <= mask; a++ {
		for b := 0; b <= mask; b++ {
			ps = append(ps, Pair{uint8(a), uint8(b)})
		}
	}
	return ps
}
