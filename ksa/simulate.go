// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package ksa

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/tt-ksa/hwsim"
	"github.com/tt-ksa/hwsim/hwtest"
	"golang.org/x/sync/errgroup"
)

// Report summarizes a verification run.
//
type Report struct {
	RunID         string         `json:"run_id"`
	Mode          string         `json:"mode"`
	Seed          uint64         `json:"seed"`
	Fault         Fault          `json:"fault,omitempty"`
	Trials        int            `json:"trials"`
	SettleCycles  int            `json:"settle_cycles"`
	Cycles        uint64         `json:"cycles"`
	SimulatedTime time.Duration  `json:"simulated_time_ns"`
	Passed        bool           `json:"passed"`
	Mismatch      *MismatchError `json:"mismatch,omitempty"`
}

// Simulate builds the project, with the configured fault if any, and verifies
// it with the configured operands. See Verify.
//
func Simulate(ctx context.Context, cfg Config, log *slog.Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	top, err := FaultyTop(cfg.Fault)
	if err != nil {
		return nil, err
	}
	return Verify(ctx, top, cfg.Operands(), cfg, log)
}

// Verify runs the checker with the given operands against top, which must
// have the same interface as Top. The clock runs in its own goroutine until
// the checker is done. The Operands, Fault and Seed settings of cfg are only
// reported.
//
// On mismatch, Verify returns the report together with a *MismatchError.
// Use errors.Cause to retrieve it.
//
func Verify(ctx context.Context, top hwsim.NewPartFn, ops []Pair, cfg Config, log *slog.Logger) (*Report, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = log.With("run_id", cfg.RunID)

	b, err := hwtest.NewBench(top,
		hwtest.WithWorkers(cfg.Workers),
		hwtest.WithStepsPerCycle(cfg.StepsPerCycle),
		hwtest.WithClockPeriod(cfg.ClockPeriod),
		hwtest.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	log.Info("starting verification", "mode", cfg.Mode(), "seed", cfg.Seed, "settle_cycles", cfg.SettleCycles, "fault", string(cfg.Fault))

	chk := &Checker{
		Operands:     ops,
		SettleCycles: cfg.SettleCycles,
		Logger:       log,
	}
	var rep *Report
	clkCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(clkCtx)
	g.Go(func() error {
		return b.Run(gctx)
	})
	g.Go(func() error {
		defer stop()
		var err error
		rep, err = chk.Run(gctx, b)
		return err
	})
	err = g.Wait()

	if rep == nil {
		return nil, err
	}
	rep.RunID = cfg.RunID
	rep.Mode = cfg.Mode()
	rep.Seed = cfg.Seed
	rep.Fault = cfg.Fault
	rep.Cycles = b.Cycles()
	rep.SimulatedTime = b.Now()
	if err != nil {
		if _, ok := errors.Cause(err).(*MismatchError); !ok {
			return rep, errors.Wrap(err, "verification aborted")
		}
	}
	return rep, err
}
