// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"sort"

	"github.com/pkg/errors"
)

// a wire is a named signal within a chip.
type wire struct {
	name   string
	typ    int
	driver string // part pin driving the wire, for error messages
	driven bool
	read   bool
}

const (
	typeInternal = iota
	typeInput
	typeOutput
	typeConstant
)

type wiring map[string]*wire

func newWiring(ins, outs []string) (wiring, error) {
	wr := make(wiring, len(ins)+len(outs)+3)
	for _, n := range []string{True, False, Clk} {
		wr[n] = &wire{name: n, typ: typeConstant, driven: true}
	}
	for _, n := range ins {
		if n == Clk {
			// clk is always driven by the circuit clock.
			continue
		}
		if n == True || n == False {
			return nil, errors.New("chip input " + n + " shadows a constant pin")
		}
		if wr[n] != nil {
			return nil, errors.New("duplicate chip input " + n)
		}
		wr[n] = &wire{name: n, typ: typeInput, driven: true}
	}
	for _, n := range outs {
		if w := wr[n]; w != nil {
			if w.typ == typeOutput {
				return nil, errors.New("duplicate chip output " + n)
			}
			return nil, errors.New("chip output " + n + " is also an input or a constant pin")
		}
		wr[n] = &wire{name: n, typ: typeOutput}
	}
	return wr, nil
}

func (wr wiring) get(name string) *wire {
	w := wr[name]
	if w == nil {
		w = &wire{name: name, typ: typeInternal}
		wr[name] = w
	}
	return w
}

// addInput records that wire name is read by a part input.
//
func (wr wiring) addInput(name string) {
	wr.get(name).read = true
}

// addOutput records that part pin pp drives wire name.
//
func (wr wiring) addOutput(pp, name string) error {
	switch name {
	case False, True:
		return errors.New(pp + ":" + name + ": output pin connected to constant " + name + " input")
	case Clk:
		return errors.New(pp + ":" + name + ": output pin connected to clock signal")
	}
	w := wr.get(name)
	switch {
	case w.typ == typeInput:
		return errors.New(pp + ":" + name + ": chip input pin used as output")
	case w.driven:
		return errors.New(pp + ":" + name + ": output pin already used as output by " + w.driver)
	}
	w.driven = true
	w.driver = pp
	return nil
}

// check reports wires that are read but never driven and internal wires that
// are driven but never read.
//
func (wr wiring) check() error {
	names := make([]string, 0, len(wr))
	for n := range wr {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		w := wr[n]
		switch {
		case !w.driven && (w.read || w.typ == typeOutput):
			return errors.New("pin " + n + " not connected to any output")
		case w.driven && !w.read && w.typ == typeInternal:
			return errors.New("pin " + n + " not connected to any input")
		}
	}
	return nil
}
