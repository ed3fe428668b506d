// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package ksa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tt-ksa/hwsim/ksa"
	"pgregory.net/rapid"
)

func TestReference(t *testing.T) {
	td := []struct {
		a, b uint8
		r    ksa.Result
	}{
		{0, 0, ksa.Result{0, 0}},
		{3, 4, ksa.Result{7, 0}},
		{7, 9, ksa.Result{0, 1}},
		{8, 8, ksa.Result{0, 1}},
		{15, 0, ksa.Result{15, 0}},
		{15, 1, ksa.Result{0, 1}},
		{15, 15, ksa.Result{14, 1}},
	}
	for _, d := range td {
		assert.Equal(t, d.r, ksa.Reference(d.a, d.b), "%d + %d", d.a, d.b)
	}
}

func TestReference_sum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Uint8Range(0, 15).Draw(t, "a")
		b := rapid.Uint8Range(0, 15).Draw(t, "b")
		r := ksa.Reference(a, b)
		if r.Sum > 15 || r.Carry > 1 {
			t.Fatalf("%d + %d: result out of range: %+v", a, b, r)
		}
		if got := int(r.Carry)<<4 | int(r.Sum); got != int(a)+int(b) {
			t.Fatalf("%d + %d = %d, expected %d", a, b, got, int(a)+int(b))
		}
	})
}

func TestRandomOperands(t *testing.T) {
	ps := ksa.RandomOperands(42, 1000)
	assert.Len(t, ps, 1000)
	assert.Equal(t, ps, ksa.RandomOperands(42, 1000))
	assert.Equal(t, ps[:10], ksa.RandomOperands(42, 10))
	assert.NotEqual(t, ps, ksa.RandomOperands(43, 1000))
	assert.Empty(t, ksa.RandomOperands(42, 0))

	seen := make(map[ksa.Pair]bool)
	for _, p := range ps {
		if p.A > 15 || p.B > 15 {
			t.Fatalf("operands out of range: %+v", p)
		}
		seen[p] = true
	}
	// 1000 draws out of 256 pairs should hit most of them.
	assert.Greater(t, len(seen), 200)
}

func TestExhaustiveOperands(t *testing.T) {
	ps := ksa.ExhaustiveOperands()
	assert.Len(t, ps, 256)
	assert.Equal(t, ksa.Pair{0, 0}, ps[0])
	assert.Equal(t, ksa.Pair{0, 15}, ps[15])
	assert.Equal(t, ksa.Pair{1, 15}, ps[31])
	assert.Equal(t, ksa.Pair{15, 15}, ps[255])

	seen := make(map[ksa.Pair]bool)
	for _, p := range ps {
		seen[p] = true
	}
	assert.Len(t, seen, 256)
}
