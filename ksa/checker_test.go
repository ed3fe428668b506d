// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package ksa_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tt-ksa/hwsim/ksa"
)

// fakeDUT computes its outputs with add on every clock cycle.
type fakeDUT struct {
	v       map[string]uint64
	add     func(a, b uint64) (sum, carry uint64)
	cycles  int
	failSet string
	failGet string
}

func newFakeDUT(add func(a, b uint64) (uint64, uint64)) *fakeDUT {
	if add == nil {
		add = func(a, b uint64) (uint64, uint64) { return (a + b) & 15, (a + b) >> 4 }
	}
	return &fakeDUT{v: make(map[string]uint64), add: add}
}

func (d *fakeDUT) Set(_ context.Context, name string, v uint64) error {
	if name == d.failSet {
		return errors.New("boom")
	}
	d.v[name] = v
	return nil
}

func (d *fakeDUT) Get(_ context.Context, name string) (uint64, error) {
	if name == d.failGet {
		return 0, errors.New("boom")
	}
	return d.v[name], nil
}

func (d *fakeDUT) ClockCycles(_ context.Context, n int) error {
	d.cycles += n
	if d.v[ksa.PinRstN] == 0 {
		d.v[ksa.PinSum], d.v[ksa.PinCarry] = 0, 0
	} else if d.v[ksa.PinEna] == 1 {
		d.v[ksa.PinSum], d.v[ksa.PinCarry] = d.add(d.v[ksa.PinA], d.v[ksa.PinB])
	}
	return nil
}

func TestMismatchError(t *testing.T) {
	td := []struct {
		e   ksa.MismatchError
		msg string
	}{
		{ksa.MismatchError{Trial: 3, A: 7, B: 9, Expected: ksa.Result{Sum: 0, Carry: 1}, Observed: ksa.Result{Sum: 1, Carry: 1}},
			"trial 3: a=7, b=9: Sum mismatch: Expected 0, Got 1"},
		{ksa.MismatchError{Trial: 31, A: 1, B: 15, Expected: ksa.Result{Sum: 0, Carry: 1}, Observed: ksa.Result{Sum: 0, Carry: 0}},
			"trial 31: a=1, b=15: Carry mismatch: Expected 1, Got 0"},
		{ksa.MismatchError{A: 15, B: 15, Expected: ksa.Result{Sum: 14, Carry: 1}, Observed: ksa.Result{Sum: 15, Carry: 0}},
			"trial 0: a=15, b=15: Sum mismatch: Expected 14, Got 15; Carry mismatch: Expected 1, Got 0"},
	}
	for _, d := range td {
		assert.EqualError(t, &d.e, d.msg)
	}
}

func TestChecker_Run(t *testing.T) {
	var buf bytes.Buffer
	dut := newFakeDUT(nil)
	chk := &ksa.Checker{
		Operands: ksa.ExhaustiveOperands(),
		Logger:   slog.New(slog.NewTextHandler(&buf, nil)),
	}
	rep, err := chk.Run(context.Background(), dut)
	require.NoError(t, err)
	assert.True(t, rep.Passed)
	assert.Equal(t, 256, rep.Trials)
	assert.Equal(t, ksa.DefaultSettleCycles, rep.SettleCycles)
	assert.Nil(t, rep.Mismatch)
	assert.Equal(t, 256*ksa.DefaultSettleCycles, dut.cycles)
	assert.Equal(t, uint64(1), dut.v[ksa.PinRstN])
	assert.Equal(t, uint64(1), dut.v[ksa.PinEna])

	assert.Contains(t, buf.String(), `msg="all test cases passed" trials=256`)
	// per trial logs are at debug level
	assert.NotContains(t, buf.String(), "testing inputs")
}

func TestChecker_Run_debug(t *testing.T) {
	var buf bytes.Buffer
	chk := &ksa.Checker{
		Operands:     []ksa.Pair{{7, 9}},
		SettleCycles: 3,
		Logger:       slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	dut := newFakeDUT(nil)
	rep, err := chk.Run(context.Background(), dut)
	require.NoError(t, err)
	assert.Equal(t, 3, dut.cycles)
	assert.Equal(t, 3, rep.SettleCycles)
	assert.Contains(t, buf.String(), `msg="testing inputs" trial=0 a=7 b=9`)
	assert.Contains(t, buf.String(), `msg=expected sum=0 carry_out=1`)
}

func TestChecker_Run_mismatch(t *testing.T) {
	var buf bytes.Buffer
	// sum bit 3 stuck low
	dut := newFakeDUT(func(a, b uint64) (uint64, uint64) {
		return (a + b) & 7, (a + b) >> 4
	})
	chk := &ksa.Checker{
		Operands: []ksa.Pair{{1, 2}, {3, 4}, {15, 15}},
		Logger:   slog.New(slog.NewTextHandler(&buf, nil)),
	}
	rep, err := chk.Run(context.Background(), dut)
	require.Error(t, err)
	var m *ksa.MismatchError
	require.True(t, errors.As(err, &m))
	assert.Same(t, rep.Mismatch, m)
	assert.False(t, rep.Passed)
	assert.Equal(t, 2, rep.Trials)
	assert.Equal(t, &ksa.MismatchError{
		Trial:    2,
		A:        15,
		B:        15,
		Expected: ksa.Result{Sum: 14, Carry: 1},
		Observed: ksa.Result{Sum: 6, Carry: 1},
	}, m)
	assert.Contains(t, buf.String(), "level=ERROR msg=mismatch trial=2")
}

func TestChecker_Run_errors(t *testing.T) {
	ops := []ksa.Pair{{1, 2}}
	td := []struct {
		name string
		chk  ksa.Checker
		dut  func() *fakeDUT
		err  string
	}{
		{"settle", ksa.Checker{Operands: ops, SettleCycles: -1}, nil, "invalid settle cycle count -1"},
		{"range", ksa.Checker{Operands: []ksa.Pair{{1, 2}, {16, 0}}}, nil, "trial 1: operands out of range: a=16, b=0"},
		{"reset", ksa.Checker{Operands: ops}, func() *fakeDUT {
			d := newFakeDUT(nil)
			d.failSet = ksa.PinRstN
			return d
		}, "failed to set rst_n: boom"},
		{"set", ksa.Checker{Operands: ops}, func() *fakeDUT {
			d := newFakeDUT(nil)
			d.failSet = ksa.PinB
			return d
		}, "failed to set operand b: boom"},
		{"get", ksa.Checker{Operands: ops}, func() *fakeDUT {
			d := newFakeDUT(nil)
			d.failGet = ksa.PinCarry
			return d
		}, "failed to read carry_out: boom"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			dut := newFakeDUT(nil)
			if d.dut != nil {
				dut = d.dut()
			}
			_, err := d.chk.Run(context.Background(), dut)
			assert.EqualError(t, err, d.err)
		})
	}
}
