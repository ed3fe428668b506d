// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/tt-ksa/hwsim"
)

var dff = &hwsim.PartSpec{
	Name:    "DFF",
	Inputs:  []string{pIn},
	Outputs: []string{pOut},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		in, out := s.Pin(pIn), s.Pin(pOut)
		var curOut bool
		return []hwsim.Component{
			func(c *hwsim.Circuit) {
				// raising edge?
				if c.AtTick() {
					curOut = c.Get(in)
				}
				c.Set(out, curOut)
			}}
	}}

// DFF returns a clocked data flip flop.
//
//	Inputs: in
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
//
func DFF(w string) hwsim.Part { return dff.NewPart(w) }

// DFFN returns a N-bits register made of DFFs sharing the same clock.
//
//	Inputs: in[bits]
//	Outputs: out[bits]
//	Function: for i := range out { out[i](t) = in[i](t-1) }
//
func DFFN(bits int) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "DFF" + strconv.Itoa(bits),
		Inputs:  bus(bits, pIn),
		Outputs: bus(bits, pOut),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			in, out := s.Bus(pIn, bits), s.Bus(pOut, bits)
			cur := make([]bool, bits)
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					tick := c.AtTick()
					for i := range out {
						if tick {
							cur[i] = c.Get(in[i])
						}
						c.Set(out[i], cur[i])
					}
				}}
		}}).NewPart
}
