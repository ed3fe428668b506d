// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/tt-ksa/hwsim"
)

var hAdder = &hwsim.PartSpec{
	Name:    "HalfAdder",
	Inputs:  []string{pA, pB},
	Outputs: []string{"s", "c"},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		a, b := s.Pin(pA), s.Pin(pB)
		sum, cout := s.Pin("s"), s.Pin("c")
		return []hwsim.Component{
			func(c *hwsim.Circuit) {
				va, vb := c.Get(a), c.Get(b)
				c.Set(sum, va != vb)
				c.Set(cout, va && vb)
			}}
	}}

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
func HalfAdder(c string) hwsim.Part {
	return hAdder.NewPart(c)
}

var adder = &hwsim.PartSpec{
	Name:    "FullAdder",
	Inputs:  []string{pA, pB, "cin"},
	Outputs: []string{"s", "cout"},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		a, b, cin := s.Pin(pA), s.Pin(pB), s.Pin("cin")
		sum, cout := s.Pin("s"), s.Pin("cout")
		return []hwsim.Component{
			func(c *hwsim.Circuit) {
				va, vb, vc := c.Get(a), c.Get(b), c.Get(cin)
				p := va != vb
				c.Set(sum, p != vc)
				c.Set(cout, p && vc || va && vb)
			}}
	}}

// FullAdder returns a 3 bit adder.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
func FullAdder(c string) hwsim.Part {
	return adder.NewPart(c)
}

// AdderN returns a N-bits adder. Its outputs are computed in a single
// simulation step, which makes it a good reference model for structural
// adders.
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits], c
//	Function: out = (a + b) & (1<<bits - 1)
//	          c = (a + b) >> bits
//
func AdderN(bits int) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "ADDER" + strconv.Itoa(bits),
		Inputs:  bus(bits, pA, pB),
		Outputs: append(bus(bits, pOut), "c"),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			a, b := s.Bus(pA, bits), s.Bus(pB, bits)
			out, cout := s.Bus(pOut, bits), s.Pin("c")
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					cc := false
					for i, o := range out {
						va, vb := c.Get(a[i]), c.Get(b[i])
						p := va != vb
						c.Set(o, p != cc)
						cc = va && vb || p && cc
					}
					c.Set(cout, cc)
				}}
		}}).NewPart
}
