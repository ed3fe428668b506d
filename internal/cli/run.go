// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tt-ksa/hwsim/ksa"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath    string
	Trials        int
	Seed          uint64
	Exhaustive    bool
	SettleCycles  int
	StepsPerCycle uint
	Workers       int
	Fault         string
	RunID         string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}
	def := ksa.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the adder verification",
		Long: `Run the adder verification.

Settings are read from the configuration file given with --config, if any, then
overridden by the flags set on the command line. The command exits with status
1 on the first mismatch, and 2 on any other error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "YAML configuration file")
	f.IntVarP(&opts.Trials, "trials", "n", def.Trials, "number of random trials")
	f.Uint64Var(&opts.Seed, "seed", def.Seed, "operand generator seed")
	f.BoolVar(&opts.Exhaustive, "exhaustive", def.Exhaustive, "test all 256 operand pairs")
	f.IntVar(&opts.SettleCycles, "settle", def.SettleCycles, "clock cycles to wait before sampling outputs")
	f.UintVar(&opts.StepsPerCycle, "steps-per-cycle", def.StepsPerCycle, "simulation steps per clock cycle")
	f.IntVar(&opts.Workers, "workers", def.Workers, "simulation goroutines (0 for GOMAXPROCS)")
	f.StringVar(&opts.Fault, "fault", "", fmt.Sprintf("inject a fault in the adder %v", ksa.Faults()))
	f.StringVar(&opts.RunID, "run-id", "", "run identifier (random UUID if empty)")

	return cmd
}

// config loads the configuration file, if any, and applies the flags
// explicitly set on the command line.
func (o *RunOptions) config(cmd *cobra.Command) (ksa.Config, error) {
	cfg := ksa.DefaultConfig()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = ksa.LoadConfig(o.ConfigPath); err != nil {
			return cfg, err
		}
	}
	f := cmd.Flags()
	if f.Changed("trials") {
		cfg.Trials = o.Trials
	}
	if f.Changed("seed") {
		cfg.Seed = o.Seed
	}
	if f.Changed("exhaustive") {
		cfg.Exhaustive = o.Exhaustive
	}
	if f.Changed("settle") {
		cfg.SettleCycles = o.SettleCycles
	}
	if f.Changed("steps-per-cycle") {
		cfg.StepsPerCycle = o.StepsPerCycle
	}
	if f.Changed("workers") {
		cfg.Workers = o.Workers
	}
	if f.Changed("fault") {
		cfg.Fault = ksa.Fault(o.Fault)
	}
	if f.Changed("run-id") {
		cfg.RunID = o.RunID
	}
	return cfg, cfg.Validate()
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := opts.config(cmd)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "configuration error", err)
	}

	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	rep, err := ksa.Simulate(cmd.Context(), cfg, log)
	if err != nil {
		if m, ok := errors.Cause(err).(*ksa.MismatchError); ok {
			_ = out.Error(ErrCodeMismatch, m.Error(), rep)
			return WrapExitError(ExitFailure, "verification failed", err)
		}
		_ = out.Error(ErrCodeSim, err.Error(), rep)
		return WrapExitError(ExitCommandError, "simulation error", err)
	}

	return out.Success(rep, fmt.Sprintf("PASS: all %d test cases passed (run %s, mode %s, seed %d, %d cycles, %v simulated)",
		rep.Trials, rep.RunID, rep.Mode, rep.Seed, rep.Cycles, rep.SimulatedTime))
}
