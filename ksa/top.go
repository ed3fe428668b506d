// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package ksa implements a 4 bits Kogge-Stone adder project together with the
// checker that verifies it against a reference model.
//
// The project follows the usual Tiny Tapeout user module layout: besides its
// operands, it receives a clock, an active low reset and an enable signal, and
// its outputs are registered.
//
package ksa

import (
	"github.com/pkg/errors"
	"github.com/tt-ksa/hwsim"
	"github.com/tt-ksa/hwsim/hwlib"
)

// Width is the operand width of the adder.
const Width = 4

// Project pin names.
const (
	PinA     = "a"
	PinB     = "b"
	PinRstN  = "rst_n"
	PinEna   = "ena"
	PinSum   = "sum"
	PinCarry = "carry_out"
)

// NewTop returns the project top level chip built around the given adder,
// which must have the same interface as hwlib.AdderN(4).
//
//	Inputs: clk, rst_n, ena, a[4], b[4]
//	Outputs: sum[4], carry_out
//	Function: on every raising edge of clk,
//	          if rst_n == 0 { sum, carry_out = 0, 0 }
//	          else if ena == 1 { sum, carry_out = (a + b) & 15, (a + b) >> 4 }
//
func NewTop(adder hwsim.NewPartFn) (hwsim.NewPartFn, error) {
	return hwsim.Chip("tt_um_ksa4", "clk, rst_n, ena, a[4], b[4]", "sum[4], carry_out",
		adder("a=a, b=b, out=s, c=co"),
		// hold the current value while ena is low.
		hwlib.MuxN(Width)("a=sum, b=s, sel=ena, out=d"),
		hwlib.Mux("a=carry_out, b=co, sel=ena, out=dc"),
		// synchronous reset
		hwlib.AndN(Width)("a=d, b[0..3]=rst_n, out=r"),
		hwlib.And("a=dc, b=rst_n, out=rc"),
		hwlib.DFFN(Width)("in=r, out=sum"),
		hwlib.DFF("in=rc, out=carry_out"),
	)
}

// Top is the project top level chip with a Kogge-Stone adder.
//
var Top = mustTop(hwlib.KoggeStoneN(Width))

func mustTop(adder hwsim.NewPartFn) hwsim.NewPartFn {
	t, err := NewTop(adder)
	if err != nil {
		panic(err)
	}
	return t
}

// A Fault is a manufacturing defect that can be injected into the adder of
// the project, mostly to check that the checker catches it.
//
type Fault string

// Supported faults.
const (
	NoFault     Fault = ""
	CarryStuck0 Fault = "carry-stuck-0" // carry out tied low
	Sum0Stuck1  Fault = "sum0-stuck-1"  // sum bit 0 tied high
)

// Faults returns the list of supported faults.
//
func Faults() []Fault { return []Fault{CarryStuck0, Sum0Stuck1} }

type stuckLow struct {
	In  int `hw:"in"`
	Out int `hw:"out"`
}

func (s *stuckLow) Update(c *hwsim.Circuit) { c.Set(s.Out, false) }

type stuckHigh struct {
	In  int `hw:"in"`
	Out int `hw:"out"`
}

func (s *stuckHigh) Update(c *hwsim.Circuit) { c.Set(s.Out, true) }

var (
	stuck0 = hwsim.MakePart(&stuckLow{}).NewPart
	stuck1 = hwsim.MakePart(&stuckHigh{}).NewPart
)

// FaultyAdder returns a Kogge-Stone adder with the given fault injected.
//
func FaultyAdder(f Fault) (hwsim.NewPartFn, error) {
	ks := hwlib.KoggeStoneN(Width)
	switch f {
	case NoFault:
		return ks, nil
	case CarryStuck0:
		return hwsim.Chip("KOGGESTONE4_C0", "a[4], b[4]", "out[4], c",
			ks("a=a, b=b, out=out, c=c_int"),
			stuck0("in=c_int, out=c"),
		)
	case Sum0Stuck1:
		return hwsim.Chip("KOGGESTONE4_S1", "a[4], b[4]", "out[4], c",
			ks("a=a, b=b, out[0]=s0_int, out[1..3]=out[1..3], c=c"),
			stuck1("in=s0_int, out=out[0]"),
		)
	}
	return nil, errors.Errorf("unknown fault %q", string(f))
}

// FaultyTop returns the project top level chip with the given fault injected
// into its adder.
//
func FaultyTop(f Fault) (hwsim.NewPartFn, error) {
	adder, err := FaultyAdder(f)
	if err != nil {
		return nil, err
	}
	return NewTop(adder)
}
