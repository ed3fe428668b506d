// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/tt-ksa/hwsim"
	"github.com/tt-ksa/hwsim/hwlib"
)

// Errors returned by Bench methods.
var (
	ErrStopped       = errors.New("bench clock stopped")
	ErrUnknownSignal = errors.New("unknown signal")
)

// Signal describes a top level signal of the part under test.
//
type Signal struct {
	Name   string
	Width  int  // 1 for single pins
	Bus    bool // true if the signal is a bus, even of width 1
	Output bool
}

type signal struct {
	Signal
	v uint64 // driven value for inputs, last sampled value for outputs
}

type options struct {
	workers int
	spc     uint
	period  time.Duration
	log     *slog.Logger
}

// An Option configures a Bench.
//
type Option func(*options)

// WithWorkers sets the number of simulation worker goroutines. See
// hwsim.NewCircuit.
//
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

// WithStepsPerCycle sets the number of simulation steps per clock cycle.
// Defaults to 16.
//
func WithStepsPerCycle(n uint) Option { return func(o *options) { o.spc = n } }

// WithClockPeriod sets the simulated duration of a clock cycle, as reported
// by Now. Defaults to 10µs.
//
func WithClockPeriod(d time.Duration) Option { return func(o *options) { o.period = d } }

// WithLogger sets the bench logger. Logs are discarded by default.
//
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.log = l } }

type request struct {
	fn   func() error
	done chan error
}

// A Bench wraps a part into a circuit and drives its clock.
//
// Every input signal of the part is driven by the bench and every output is
// sampled. Bus pins like a[0]..a[3] are grouped into a single signal "a". An
// input pin named clk is tied to the circuit clock.
//
// The circuit is owned by the goroutine executing Run. Set, Get and
// ClockCycles are requests served by that goroutine in the order they are
// received, and block until Run is started.
//
type Bench struct {
	name   string
	c      *hwsim.Circuit
	sigs   map[string]*signal
	order  []string
	period time.Duration
	log    *slog.Logger

	reqs    chan request
	done    chan struct{}
	started atomic.Bool
	cycles  atomic.Uint64
	close   sync.Once
}

// NewBench returns a new Bench for the given part. Callers must call Close
// once the bench is no longer needed.
//
func NewBench(dut hwsim.NewPartFn, opts ...Option) (*Bench, error) {
	o := options{
		spc:    16,
		period: 10 * time.Microsecond,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.period <= 0 {
		return nil, errors.Errorf("invalid clock period %v", o.period)
	}

	spec := dut("").PartSpec
	ins, err := groupSignals(spec.Inputs, false)
	if err != nil {
		return nil, errors.Wrap(err, spec.Name+" inputs")
	}
	outs, err := groupSignals(spec.Outputs, true)
	if err != nil {
		return nil, errors.Wrap(err, spec.Name+" outputs")
	}

	b := &Bench{
		name:   spec.Name,
		sigs:   make(map[string]*signal),
		period: o.period,
		log:    o.log,
		reqs:   make(chan request),
		done:   make(chan struct{}),
	}

	var (
		parts hwsim.Parts
		conns []string
	)
	for _, s := range append(ins, outs...) {
		conns = append(conns, s.Name+"="+s.Name)
		if s.Name == hwsim.Clk && !s.Bus && !s.Output {
			continue
		}
		sig := &signal{Signal: s}
		b.sigs[s.Name] = sig
		b.order = append(b.order, s.Name)
		switch {
		case s.Output && s.Bus:
			parts = append(parts, hwlib.OutputN(s.Width, func(v int64) { sig.v = uint64(v) })("in="+s.Name))
		case s.Output:
			parts = append(parts, hwlib.Output(func(v bool) { sig.v = b2u(v) })("in="+s.Name))
		case s.Bus:
			parts = append(parts, hwlib.InputN(s.Width, func() int64 { return int64(sig.v) })("out="+s.Name))
		default:
			parts = append(parts, hwlib.Input(func() bool { return sig.v != 0 })("out="+s.Name))
		}
	}
	parts = append(parts, dut(strings.Join(conns, ", ")))

	b.c, err = hwsim.NewCircuit(o.workers, o.spc, parts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build bench circuit")
	}
	return b, nil
}

func b2u(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// groupSignals groups bus pins by bus name. Buses must have contiguous pin
// indices starting at 0.
//
func groupSignals(pins []string, output bool) ([]Signal, error) {
	var sigs []Signal
	idx := make(map[string]int)
	for _, p := range pins {
		name, bit := p, -1
		if i := strings.IndexByte(p, '['); i >= 0 && strings.HasSuffix(p, "]") {
			n, err := strconv.Atoi(p[i+1 : len(p)-1])
			if err != nil {
				return nil, errors.Wrapf(err, "invalid pin name %q", p)
			}
			name, bit = p[:i], n
		}
		k, ok := idx[name]
		if !ok {
			if bit > 0 {
				return nil, errors.Errorf("bus %s does not start at bit 0", name)
			}
			idx[name] = len(sigs)
			sigs = append(sigs, Signal{Name: name, Width: 1, Bus: bit == 0, Output: output})
			continue
		}
		s := &sigs[k]
		if !s.Bus || bit != s.Width {
			return nil, errors.Errorf("non contiguous pin %s in signal %s", p, name)
		}
		s.Width++
	}
	for _, s := range sigs {
		if s.Width > 63 {
			return nil, errors.Errorf("signal %s is too wide (%d bits)", s.Name, s.Width)
		}
	}
	return sigs, nil
}

// Run runs the bench clock until ctx is cancelled. It returns nil once ctx is
// done, or an error if the bench has already been started.
//
func (b *Bench) Run(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return errors.New("bench already started")
	}
	b.run(ctx)
	return nil
}

// Start is like Run but runs the clock in a new goroutine.
//
func (b *Bench) Start(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return errors.New("bench already started")
	}
	go b.run(ctx)
	return nil
}

func (b *Bench) run(ctx context.Context) {
	defer close(b.done)

	b.log.Info("clock started", "part", b.name, "period", b.period, "steps_per_cycle", b.c.SPC())
	for {
		select {
		case <-ctx.Done():
			b.log.Debug("clock stopped", "part", b.name, "cycles", b.Cycles())
			return
		case r := <-b.reqs:
			r.done <- r.fn()
		}
	}
}

// do runs fn in the clock goroutine.
//
func (b *Bench) do(ctx context.Context, fn func() error) error {
	r := request{fn: fn, done: make(chan error, 1)}
	select {
	case b.reqs <- r:
	case <-b.done:
		return ErrStopped
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
	return <-r.done
}

func (b *Bench) signal(name string) (*signal, error) {
	s, ok := b.sigs[name]
	if !ok {
		if name == hwsim.Clk {
			return nil, errors.New("clk is driven by the bench clock")
		}
		return nil, errors.Wrap(ErrUnknownSignal, name)
	}
	return s, nil
}

// Set sets the value of an input signal. The new value is seen by the part
// on the next simulation step.
//
func (b *Bench) Set(ctx context.Context, name string, v uint64) error {
	s, err := b.signal(name)
	if err != nil {
		return err
	}
	if s.Output {
		return errors.Errorf("%s: cannot set output signal", name)
	}
	if v>>uint(s.Width) != 0 {
		return errors.Errorf("%s: value %d does not fit in %d bits", name, v, s.Width)
	}
	return b.do(ctx, func() error {
		s.v = v
		return nil
	})
}

// Get returns the value of a signal. For outputs, this is the value sampled
// at the end of the last simulation step. For inputs, this is the driven
// value.
//
func (b *Bench) Get(ctx context.Context, name string) (uint64, error) {
	s, err := b.signal(name)
	if err != nil {
		return 0, err
	}
	var v uint64
	err = b.do(ctx, func() error {
		v = s.v
		return nil
	})
	return v, err
}

// ClockCycles runs the simulation for n rising clock edges. If ctx is
// cancelled in the meantime, ClockCycles returns after the current cycle.
//
func (b *Bench) ClockCycles(ctx context.Context, n int) error {
	if n < 0 {
		return errors.Errorf("invalid cycle count %d", n)
	}
	return b.do(ctx, func() error {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return errors.WithStack(err)
			}
			b.c.TickTock()
			b.cycles.Add(1)
		}
		return nil
	})
}

// Cycles returns the number of clock cycles run so far.
//
func (b *Bench) Cycles() uint64 { return b.cycles.Load() }

// Now returns the simulated time.
//
func (b *Bench) Now() time.Duration {
	return time.Duration(b.Cycles()) * b.period
}

// Signals returns the bench signals, inputs first, in pin declaration order.
// The clock pin is not listed.
//
func (b *Bench) Signals() []Signal {
	out := make([]Signal, len(b.order))
	for i, n := range b.order {
		out[i] = b.sigs[n].Signal
	}
	return out
}

// Close waits for the clock to stop, if it was started, and releases the
// circuit resources. The context passed to Run or Start must be cancelled
// before calling Close.
//
func (b *Bench) Close() {
	b.close.Do(func() {
		if b.started.Load() {
			<-b.done
		}
		b.c.Dispose()
	})
}
