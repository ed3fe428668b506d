// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"github.com/pkg/errors"
)

// a chipPart is a part mounted in a chip together with the resolved
// mapping of its pins to the chip's wire names.
type chipPart struct {
	*PartSpec
	wires map[string]string
}

type chip struct {
	PartSpec // PartSpec for this chip
	parts    []chipPart
}

func (c *chip) mount(s *Socket) []Component {
	var cs []Component

	for _, p := range c.parts {
		sub := newSocket(s.c)
		for _, k := range p.Inputs {
			switch w, ok := p.wires[k]; {
			case ok:
				sub.m[k] = s.PinOrNew(w)
			case k == Clk:
				sub.m[k] = cstClk
			default:
				// unconnected inputs are grounded.
				sub.m[k] = cstFalse
			}
		}
		for _, k := range p.Outputs {
			if w, ok := p.wires[k]; ok {
				sub.m[k] = s.PinOrNew(w)
			} else {
				sub.m[k] = s.c.allocPin()
			}
		}
		cs = append(cs, p.Mount(sub)...)
	}
	return cs
}

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip. See ParseIOSpec for the syntax of the inputs and
// outputs strings.
//
// A XOR gate could be created like this:
//
//	xor, err := hwsim.Chip("XOR", "a, b", "out",
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips:
//
//	xnor, err := hwsim.Chip("XNOR", "a, b", "out",
//		xor("a=a, b=b, out=xorAB"),
//		hwlib.Not("in=xorAB, out=out"),
//	)
//
// The wire names true, false and clk are reserved: true and false are
// constant inputs and clk is the circuit clock. A chip may list clk among its
// inputs; it is then connected to the clock of the circuit.
//
func Chip(name string, inputs string, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := ParseIOSpec(inputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" inputs")
	}
	outs, err := ParseIOSpec(outputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" outputs")
	}

	wr, err := newWiring(ins, outs)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	cps := make([]chipPart, len(parts))

	for pnum, p := range parts {
		sp := p.PartSpec
		pins := sp.pins()
		outputPins := make(map[string]bool, len(sp.Outputs))
		for _, o := range sp.Outputs {
			outputPins[o] = true
		}
		wires := make(map[string]string, len(p.Conns))

		for _, conn := range p.Conns {
			if !pins[conn.PP] {
				return nil, errors.New("invalid pin name " + conn.PP + " for part " + sp.Name)
			}
			if _, ok := wires[conn.PP]; ok {
				return nil, errors.New(sp.Name + " pin " + conn.PP + " connected more than once")
			}
			if len(conn.CP) != 1 {
				return nil, errors.New(sp.Name + " pin " + conn.PP + " connected to more than one pin")
			}
			w := conn.CP[0]
			if outputPins[conn.PP] {
				if err := wr.addOutput(sp.Name+"."+conn.PP, w); err != nil {
					return nil, err
				}
			} else {
				wr.addInput(w)
			}
			wires[conn.PP] = w
		}
		cps[pnum] = chipPart{sp, wires}
	}

	if err = wr.check(); err != nil {
		return nil, errors.Wrap(err, name)
	}

	c := &chip{
		PartSpec{
			Name:    name,
			Inputs:  ins,
			Outputs: outs,
		},
		cps,
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}

// MustChip is like Chip but panics on error. It is intended for
// package level part definitions.
//
func MustChip(name string, inputs string, outputs string, parts ...Part) NewPartFn {
	fn, err := Chip(name, inputs, outputs, parts...)
	if err != nil {
		panic(err)
	}
	return fn
}
