// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Updater is the interface that custom components built using reflection must implement.
// See MakePart.
//
type Updater interface {
	Update(c *Circuit)
}

// MakePart wraps an Updater into a custom component.
// Input/output pins are identified by field tags.
//
// The field tag must be `hw:"in"` or `hw:"out"` to identify input and output
// pins. By default, the pin name is the field name in lowercase. A specific
// field name can be forced by adding it in the tag: `hw:"in,pin_name"`.
//
// Pins must be of type int and buses must be arrays of int. When the part is
// mounted, a new value of the underlying type is allocated and its pin fields
// set to the pin numbers allocated in the circuit.
//
func MakePart(t Updater) *PartSpec {
	typ := reflect.TypeOf(t)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if k := typ.Kind(); k != reflect.Struct {
		panic(errors.Errorf("unsupported type %q for %q", k, typ.Name()))
	}

	sp := &PartSpec{
		Name: typ.Name(),
	}

	for _, f := range pinFields(typ) {
		var names []string
		if f.bits < 0 {
			names = []string{f.pin}
		} else {
			for i := 0; i < f.bits; i++ {
				names = append(names, BusPinName(f.pin, i))
			}
		}
		if f.input {
			sp.Inputs = append(sp.Inputs, names...)
		} else {
			sp.Outputs = append(sp.Outputs, names...)
		}
	}
	sp.Mount = mountPart(typ)
	return sp
}

type pinField struct {
	index int
	pin   string
	input bool
	bits  int // -1 for single pins
}

func pinFields(typ reflect.Type) []pinField {
	var fs []pinField
	n := typ.NumField()
	for i := 0; i < n; i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		pf := pinField{index: i, pin: strings.ToLower(f.Name), bits: -1}
		tv := strings.Split(tag, ",")
		if len(tv) > 2 {
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if len(tv) == 2 && tv[1] != "" {
			pf.pin = tv[1]
		}
		switch tv[0] {
		case "in":
			pf.input = true
		case "out":
		default:
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}

		ft := f.Type
		switch k := ft.Kind(); {
		case k == reflect.Array && ft.Elem().Kind() == reflect.Int:
			pf.bits = ft.Len()
		case k == reflect.Int:
		default:
			panic(errors.Errorf("unsupported type %q for field %q in %q", k, f.Name, typ.Name()))
		}
		fs = append(fs, pf)
	}
	return fs
}

func mountPart(typ reflect.Type) MountFn {
	fields := pinFields(typ)
	return func(s *Socket) []Component {
		v := reflect.New(typ)
		e := v.Elem()
		for _, f := range fields {
			fv := e.Field(f.index)
			if f.bits < 0 {
				fv.SetInt(int64(s.Pin(f.pin)))
				continue
			}
			for i := 0; i < f.bits; i++ {
				fv.Index(i).SetInt(int64(s.Pin(BusPinName(f.pin, i))))
			}
		}

		u := v.Interface().(Updater)
		return []Component{u.Update}
	}
}
