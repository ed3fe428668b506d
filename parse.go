// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tt-ksa/hwsim/internal/hdl"
)

// A Connection represents a connection between the pin PP of a part and
// the pins CP in its host chip. An input pin connects to exactly one chip pin.
//
type Connection struct {
	PP string
	CP []string
}

// BusPinName returns the pin name for the n-th bit of the given bus.
//
func BusPinName(bus string, bit int) string {
	return bus + "[" + strconv.Itoa(bit) + "]"
}

func isIndexed(name string) bool {
	return strings.IndexByte(name, '[') >= 0
}

// ParseIOSpec parses an input or output pin specification string and returns
// a slice of individual pin names suitable for use as the Input or Output field
// of a PartSpec.
//
// The input format is:
//
//	InputDecl  = PinDecl { "," PinDecl } .
//	PinDecl    = PinIdentifier [ BusWidth ] .
//	PinIdentifier = letter { letter | digit } .
//	BusWidth   = "[" size "]" .
//	size       = { digit } .
//	letter     = "A" ... "Z" | "a" ... "z" | "_" .
//	digit      = "0" ... "9" .
//
// Buses are expanded to individual pin names. For example:
//
//	ParseIOSpec("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
func ParseIOSpec(names string) ([]string, error) {
	var out []string
	p := &hdl.Parser{Input: names}
	for {
		item, err := p.Next(false)
		if err != nil {
			return nil, err
		}
		switch v := item.(type) {
		case nil:
			return out, nil
		case hdl.Pin:
			out = append(out, v.Name)
		case hdl.PinIndex:
			if v.Index <= 0 {
				return nil, errors.Errorf("in %q at pos %d: invalid bus size %d", names, v.Pos+1, v.Index)
			}
			for i := 0; i < v.Index; i++ {
				out = append(out, BusPinName(v.Name, i))
			}
		default:
			return nil, errors.Errorf("in %q: pin ranges are not allowed in pin specifications", names)
		}
	}
}

// IO is a wrapper around ParseIOSpec that panics if an error is returned.
//
func IO(spec string) []string {
	pins, err := ParseIOSpec(spec)
	if err != nil {
		panic(err)
	}
	return pins
}

// pinNames expands a pin, indexed pin or pin range into individual pin names.
//
func pinNames(pin interface{}) []string {
	switch p := pin.(type) {
	case hdl.Pin:
		return []string{p.Name}
	case hdl.PinIndex:
		return []string{BusPinName(p.Name, p.Index)}
	case hdl.PinRange:
		r := make([]string, 0, p.End-p.Start+1)
		for i := p.Start; i <= p.End; i++ {
			r = append(r, BusPinName(p.Name, i))
		}
		return r
	}
	panic("unexpected pin type")
}

func checkRange(in string, pin interface{}) error {
	if r, ok := pin.(hdl.PinRange); ok && r.End < r.Start {
		return errors.Errorf("in %q at pos %d: invalid range %d..%d", in, r.Pos+1, r.Start, r.End)
	}
	return nil
}

// ParseConnections parses a connection configuration like
// "partPinX=chipPinY, ..." into a []Connection{{PP: "partPinX", CP: []string{"chipPinY"}}, ...}.
//
//	Wire       = Assignment { [ space ] "," [ space ] Assignment } .
//	Assignment = Pin "=" Pin .
//	Pin        = identifier [ "[" Index | Range "]" ] .
//	Index      = integer .
//	Range      = integer ".." integer .
//
// If the left side of an assignment is a range, the right side must be a
// range of the same width, or a single pin that is then connected to every
// pin of the left side.
//
func ParseConnections(c string) ([]Connection, error) {
	var conns []Connection
	p := &hdl.Parser{Input: c}
	for {
		item, err := p.Next(true)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return conns, nil
		}
		a, ok := item.(hdl.PinAssignment)
		if !ok {
			return nil, errors.Errorf("in %q: expected pin assignment", c)
		}
		if err = checkRange(c, a.LHS); err != nil {
			return nil, err
		}
		if err = checkRange(c, a.RHS); err != nil {
			return nil, err
		}
		lhs, rhs := pinNames(a.LHS), pinNames(a.RHS)
		switch {
		case len(lhs) == len(rhs):
			for i := range lhs {
				conns = append(conns, Connection{lhs[i], []string{rhs[i]}})
			}
		case len(rhs) == 1:
			for i := range lhs {
				conns = append(conns, Connection{lhs[i], rhs})
			}
		default:
			return nil, errors.Errorf("in %q: pin count mismatch in assignment %s=%s", c, pinString(a.LHS), pinString(a.RHS))
		}
	}
}

func pinString(pin interface{}) string {
	switch p := pin.(type) {
	case hdl.Pin:
		return p.Name
	case hdl.PinIndex:
		return BusPinName(p.Name, p.Index)
	case hdl.PinRange:
		return p.Name + "[" + strconv.Itoa(p.Start) + ".." + strconv.Itoa(p.End) + "]"
	}
	return "?"
}
