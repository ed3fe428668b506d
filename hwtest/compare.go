// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/tt-ksa/hwsim"
	"github.com/tt-ksa/hwsim/hwlib"
)

// maxExhaustive is the maximum number of input pins for which ComparePart
// tries every input combination.
const maxExhaustive = 12

func connString(in, out []string) string {
	var b strings.Builder
	for _, n := range append(append([]string(nil), in...), out...) {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(n)
		b.WriteRune('=')
		b.WriteString(n)
	}
	return b.String()
}

// pinList builds a pin specification string from a list of expanded pin names.
//
func pinList(in []string) string {
	bus := make(map[string]int)
	var pins []string

	for _, n := range in {
		if b := strings.IndexRune(n, '['); b >= 0 {
			bn := n[:b]
			idx, err := strconv.Atoi(n[b+1 : strings.IndexRune(n, ']')])
			if err != nil {
				panic(err)
			}
			if bidx, ok := bus[bn]; !ok || bidx < idx {
				bus[bn] = idx
			}
		} else {
			pins = append(pins, n)
		}
	}

	names := make([]string, 0, len(bus))
	for k := range bus {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, k := range names {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(k)
		b.WriteRune('[')
		b.WriteString(strconv.Itoa(bus[k] + 1))
		b.WriteRune(']')
	}
	for _, n := range pins {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(n)
	}
	return b.String()
}

// ComparePart takes two parts and compares their outputs given the same inputs.
// Both parts must have the same Input/Output interface.
//
// If the parts have at most 12 input pins, every input combination is tested.
// Otherwise the inputs are all zeroes, all ones, then 4096 vectors drawn from
// a fixed seed pseudo random generator. Outputs are compared after a full
// clock cycle of tpc steps, so tpc must be large enough for the outputs of
// both parts to settle.
//
func ComparePart(t *testing.T, tpc uint, part1 hwsim.NewPartFn, part2 hwsim.NewPartFn) {
	t.Helper()

	ps1, ps2 := part1(""), part2("")

	// compare specs
	if len(ps1.Inputs) != len(ps2.Inputs) {
		t.Fatal("len(ps1.Inputs) != len(ps2.Inputs)")
	}
	if len(ps1.Outputs) != len(ps2.Outputs) {
		t.Fatal("len(ps1.Outputs) != len(ps2.Outputs)")
	}
	for i := range ps1.Inputs {
		if ps1.Inputs[i] != ps2.Inputs[i] {
			t.Fatalf("ps1.Inputs[i] = %q != ps2.Inputs[i] = %q", ps1.Inputs[i], ps2.Inputs[i])
		}
	}
	for i := range ps1.Outputs {
		if ps1.Outputs[i] != ps2.Outputs[i] {
			t.Fatalf("ps1.Outputs[i] = %q != ps2.Outputs[i] = %q", ps1.Outputs[i], ps2.Outputs[i])
		}
	}

	conns := connString(ps1.Inputs, ps1.Outputs)
	ps1, ps2 = part1(conns), part2(conns)

	inputs := make([]bool, len(ps1.Inputs))
	outputs := make([][2]bool, len(ps1.Outputs))

	// build two wrappers with their own set of outputs
	parts1 := hwsim.Parts{ps1}
	for i, o := range ps1.Outputs {
		n := i
		parts1 = append(parts1, hwlib.Output(func(b bool) { outputs[n][0] = b })("in="+o))
	}
	parts2 := hwsim.Parts{ps2}
	for i, o := range ps2.Outputs {
		n := i
		parts2 = append(parts2, hwlib.Output(func(b bool) { outputs[n][1] = b })("in="+o))
	}
	w1, err := hwsim.Chip("wrapper1", pinList(ps1.Inputs), "", parts1...)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := hwsim.Chip("wrapper2", pinList(ps2.Inputs), "", parts2...)
	if err != nil {
		t.Fatal(err)
	}

	var parts hwsim.Parts
	for i, n := range ps1.Inputs {
		k := i
		parts = append(parts, hwlib.Input(func() bool { return inputs[k] })("out="+n))
	}
	cstr := connString(ps1.Inputs, nil)
	parts = append(parts, w1(cstr), w2(cstr))

	c, err := hwsim.NewCircuit(0, tpc, parts)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	check := func() {
		t.Helper()
		c.TickTock()
		for o, out := range outputs {
			if out[0] != out[1] {
				var b strings.Builder
				for i, n := range ps1.Inputs {
					if b.Len() > 0 {
						b.WriteString(", ")
					}
					b.WriteString(n)
					b.WriteRune('=')
					b.WriteString(strconv.FormatBool(inputs[i]))
				}
				t.Fatalf("\nExpected %s => %s=%v\nGot %v", b.String(), ps1.Outputs[o], out[0], out[1])
			}
		}
	}

	start := time.Now()

	if len(inputs) <= maxExhaustive {
		for i := 0; i < 1<<uint(len(inputs)); i++ {
			for bit := range inputs {
				inputs[bit] = i&(1<<uint(bit)) != 0
			}
			check()
		}
	} else {
		check()
		for in := range inputs {
			inputs[in] = true
		}
		check()
		rnd := rand.New(rand.NewPCG(1, uint64(len(inputs))))
		for i := 0; i < 1<<maxExhaustive; i++ {
			for in := range inputs {
				inputs[in] = rnd.IntN(2) != 0
			}
			check()
		}
	}

	elapsed := time.Since(start)
	ticks := c.Steps() / c.SPC()
	t.Logf("%d components. %d steps in %v. %d clock ticks => %.2f Hz", c.Size(), c.Steps(), elapsed, ticks, float64(ticks)/elapsed.Seconds())
}
