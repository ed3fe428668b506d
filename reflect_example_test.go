// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim_test

import (
	"fmt"

	hw "github.com/tt-ksa/hwsim"
	hl "github.com/tt-ksa/hwsim/hwlib"
)

// stuckAt1 forwards a 4 bits bus, with bit 0 stuck at 1 while its bit input
// is high.
//
type stuckAt1 struct {
	In  [4]int `hw:"in"`     // input bus "in"
	Out [4]int `hw:"out"`    // output bus "out"
	F   int    `hw:"in,bit"` // single pin, the second tag value forces the pin name to "bit"
}

// Update implements Updater.
//
func (s *stuckAt1) Update(c *hw.Circuit) {
	for i, in := range s.In {
		v := c.Get(in)
		if i == 0 && c.Get(s.F) {
			v = true
		}
		c.Set(s.Out[i], v)
	}
}

// no need to import reflect, just cast a nil pointer to stuckAt1
var saSpec = hw.MakePart((*stuckAt1)(nil))

// saSpec is the *PartSpec for our part. In order to use it like the
// built-ins in hwlib, we need to get its NewPartFn method as a variable, or
// make it a function:
func StuckAt1(c string) hw.Part { return saSpec.NewPart(c) }

// MakePart example with a custom fault injection part placed between a
// Kogge-Stone adder and the circuit outputs.
func ExampleMakePart() {
	var a, b, out int64
	var fault bool
	c, err := hw.NewCircuit(0, 16, hw.Parts{
		// IOs to test the circuit
		hl.InputN(4, func() int64 { return a })("out=in_a"),
		hl.InputN(4, func() int64 { return b })("out=in_b"),
		hl.Input(func() bool { return fault })("out=in_fault"),
		hl.KoggeStoneN(4)("a=in_a, b=in_b, out=sum"),
		// our custom part
		StuckAt1("in=sum, bit=in_fault, out=faulty"),
		// IOs continued...
		hl.OutputN(4, func(v int64) { out = v })("in=faulty"),
	})
	if err != nil {
		panic(err)
	}
	defer c.Dispose()

	a, b = 2, 4
	c.TickTock()
	fmt.Printf("a=%d, b=%d, fault=%v => out=%d\n", a, b, fault, out)
	fault = true
	c.TickTock()
	fmt.Printf("a=%d, b=%d, fault=%v => out=%d\n", a, b, fault, out)

	// Output:
	// a=2, b=4, fault=false => out=6
	// a=2, b=4, fault=true => out=7
}
