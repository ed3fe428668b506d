// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package ksa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
)

// DefaultSettleCycles is the default number of clock cycles between applying
// operands and sampling the results.
const DefaultSettleCycles = 10

// A DUT is a running simulation of the project. It is implemented by
// *hwtest.Bench.
//
type DUT interface {
	Set(ctx context.Context, name string, v uint64) error
	Get(ctx context.Context, name string) (uint64, error)
	ClockCycles(ctx context.Context, n int) error
}

// MismatchError is returned by Checker.Run when the project output differs
// from the reference model.
//
type MismatchError struct {
	Trial    int    `json:"trial"`
	A        uint8  `json:"a"`
	B        uint8  `json:"b"`
	Expected Result `json:"expected"`
	Observed Result `json:"observed"`
}

func (e *MismatchError) Error() string {
	var msgs []string
	if e.Expected.Sum != e.Observed.Sum {
		msgs = append(msgs, fmt.Sprintf("Sum mismatch: Expected %d, Got %d", e.Expected.Sum, e.Observed.Sum))
	}
	if e.Expected.Carry != e.Observed.Carry {
		msgs = append(msgs, fmt.Sprintf("Carry mismatch: Expected %d, Got %d", e.Expected.Carry, e.Observed.Carry))
	}
	return fmt.Sprintf("trial %d: a=%d, b=%d: %s", e.Trial, e.A, e.B, strings.Join(msgs, "; "))
}

// A Checker applies operand pairs to a DUT and compares its outputs with the
// reference model.
//
type Checker struct {
	Operands     []Pair
	SettleCycles int          // DefaultSettleCycles if 0
	Logger       *slog.Logger // logs are discarded if nil
}

// Run holds the DUT out of reset and enabled, then runs one trial per operand
// pair. It stops at the first mismatch and returns a *MismatchError. The
// returned report is valid even if err is not nil.
//
func (k *Checker) Run(ctx context.Context, dut DUT) (rep *Report, err error) {
	log := k.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	settle := k.SettleCycles
	if settle == 0 {
		settle = DefaultSettleCycles
	}
	if settle < 0 {
		return nil, errors.Errorf("invalid settle cycle count %d", settle)
	}

	rep = &Report{SettleCycles: settle}

	for _, n := range []string{PinRstN, PinEna} {
		if err = dut.Set(ctx, n, 1); err != nil {
			return rep, errors.Wrapf(err, "failed to set %s", n)
		}
	}

	for i, p := range k.Operands {
		if p.A > mask || p.B > mask {
			return rep, errors.Errorf("trial %d: operands out of range: a=%d, b=%d", i, p.A, p.B)
		}
		if err = dut.Set(ctx, PinA, uint64(p.A)); err != nil {
			return rep, errors.Wrap(err, "failed to set operand a")
		}
		if err = dut.Set(ctx, PinB, uint64(p.B)); err != nil {
			return rep, errors.Wrap(err, "failed to set operand b")
		}
		if err = dut.ClockCycles(ctx, settle); err != nil {
			return rep, err
		}

		exp := Reference(p.A, p.B)
		log.Debug("testing inputs", "trial", i, "a", p.A, "b", p.B)
		log.Debug("expected", "sum", exp.Sum, "carry_out", exp.Carry)

		var obs Result
		if obs, err = sample(ctx, dut); err != nil {
			return rep, err
		}
		if obs != exp {
			rep.Mismatch = &MismatchError{Trial: i, A: p.A, B: p.B, Expected: exp, Observed: obs}
			log.Error("mismatch", "trial", i, "a", p.A, "b", p.B, "error", rep.Mismatch)
			return rep, rep.Mismatch
		}
		rep.Trials++
	}

	rep.Passed = true
	log.Info("all test cases passed", "trials", rep.Trials)
	return rep, nil
}

func sample(ctx context.Context, dut DUT) (Result, error) {
	s, err := dut.Get(ctx, PinSum)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to read sum")
	}
	c, err := dut.Get(ctx, PinCarry)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to read carry_out")
	}
	return Result{Sum: uint8(s), Carry: uint8(c)}, nil
}
