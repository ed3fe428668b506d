// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"
	"strings"

	"github.com/tt-ksa/hwsim"
)

var grayCell = hwsim.MustChip("GrayCell", "gi, pi, gj", "g",
	And("a=pi, b=gj, out=t"),
	Or("a=gi, b=t, out=g"),
)

var blackCell = hwsim.MustChip("BlackCell", "gi, pi, gj, pj", "g, p",
	And("a=pi, b=gj, out=t"),
	Or("a=gi, b=t, out=g"),
	And("a=pi, b=pj, out=p"),
)

// GrayCell returns a parallel prefix gray cell. It combines the
// generate/propagate pair of a group i with the generate signal of the
// adjacent lower group j when the result spans down to bit 0 and no group
// propagate signal is needed.
//
//	Inputs: gi, pi, gj
//	Outputs: g
//	Function: g = gi || pi && gj
//
func GrayCell(c string) hwsim.Part { return grayCell(c) }

// BlackCell returns a parallel prefix black cell.
//
//	Inputs: gi, pi, gj, pj
//	Outputs: g, p
//	Function: g = gi || pi && gj
//	          p = pi && pj
//
func BlackCell(c string) hwsim.Part { return blackCell(c) }

type conn [2]string

type partConns struct {
	fn    hwsim.NewPartFn
	conns []conn
}

func (p partConns) part(rename map[string]string) hwsim.Part {
	var b strings.Builder
	for i, c := range p.conns {
		if i > 0 {
			b.WriteString(", ")
		}
		v := c[1]
		if r, ok := rename[v]; ok {
			v = r
		}
		b.WriteString(c[0])
		b.WriteByte('=')
		b.WriteString(v)
	}
	return p.fn(b.String())
}

func wireName(sig string, level, bit int) string {
	return sig + strconv.Itoa(level) + "_" + strconv.Itoa(bit)
}

// KoggeStoneN returns a N-bits Kogge-Stone adder built from logic gates.
//
// The adder has the same interface as AdderN:
//
//	Inputs: a[bits], b[bits]
//	Outputs: out[bits], c
//	Function: out = (a + b) & (1<<bits - 1)
//	          c = (a + b) >> bits
//
// Bit i generate and propagate signals g = a[i] && b[i], p = a[i] != b[i] are
// computed by half adders. They are then combined in ceil(log2(bits)) prefix
// levels; at level k, the group ending at bit i is merged with the group
// ending at bit i-2^k using a black cell, or a gray cell when the merged group
// reaches bit 0. After the last level, the group generate signal of bit i is
// the carry into bit i+1 and out[i+1] = p[i+1] != G[i..0]. The carry out c is
// the group generate signal of the most significant bit.
//
// Logic depth is 2*ceil(log2(bits)) + 2 gates, so a circuit should run at least
// that many steps per clock cycle before sampling the outputs.
//
func KoggeStoneN(bits int) hwsim.NewPartFn {
	if bits < 1 {
		panic("invalid adder width " + strconv.Itoa(bits))
	}
	g := make([]string, bits)
	p := make([]string, bits)
	var ps []partConns

	for i := 0; i < bits; i++ {
		g[i], p[i] = wireName("g", 0, i), wireName("p", 0, i)
		ps = append(ps, partConns{HalfAdder, []conn{
			{pA, hwsim.BusPinName(pA, i)},
			{pB, hwsim.BusPinName(pB, i)},
			{"s", p[i]},
			{"c", g[i]},
		}})
	}
	pre := append([]string(nil), p...)

	level := 0
	for d := 1; d < bits; d *= 2 {
		level++
		ng := append([]string(nil), g...)
		np := append([]string(nil), p...)
		for i := d; i < bits; i++ {
			j := i - d
			ng[i] = wireName("g", level, i)
			// the group propagate signal is only needed if this group takes
			// part in the next level as the upper group.
			if 2*d < bits && i >= 2*d {
				np[i] = wireName("p", level, i)
				ps = append(ps, partConns{BlackCell, []conn{
					{"gi", g[i]}, {"pi", p[i]}, {"gj", g[j]}, {"pj", p[j]},
					{"g", ng[i]}, {"p", np[i]},
				}})
				continue
			}
			np[i] = ""
			ps = append(ps, partConns{GrayCell, []conn{
				{"gi", g[i]}, {"pi", p[i]}, {"gj", g[j]},
				{"g", ng[i]},
			}})
		}
		g, p = ng, np
	}

	// post processing. Bit 0 has no carry in: Xor input b is left unconnected.
	ps = append(ps, partConns{Xor, []conn{{pA, pre[0]}, {pOut, hwsim.BusPinName(pOut, 0)}}})
	for i := 1; i < bits; i++ {
		ps = append(ps, partConns{Xor, []conn{
			{pA, pre[i]},
			{pB, g[i-1]},
			{pOut, hwsim.BusPinName(pOut, i)},
		}})
	}

	rename := map[string]string{g[bits-1]: "c"}
	parts := make(hwsim.Parts, len(ps))
	for i, pc := range ps {
		parts[i] = pc.part(rename)
	}
	bs := strconv.Itoa(bits)
	return hwsim.MustChip("KOGGESTONE"+bs, "a["+bs+"], b["+bs+"]", "out["+bs+"], c", parts...)
}
