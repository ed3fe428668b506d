// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tt-ksa/hwsim/ksa"
)

type refResult struct {
	ksa.Pair
	ksa.Result
}

// NewRefCommand creates the ref command.
func NewRefCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ref <a> <b>",
		Short: "Print the expected adder outputs for two operands",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRef(cmd, rootOpts, args[0], args[1])
		},
	}
}

func parseOperand(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil || v > 15 {
		return 0, errors.Errorf("invalid operand %q: must be an integer in [0, 15]", s)
	}
	return uint8(v), nil
}

func runRef(cmd *cobra.Command, opts *RootOptions, sa, sb string) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	a, err := parseOperand(sa)
	if err != nil {
		return WrapExitError(ExitCommandError, "ref", err)
	}
	b, err := parseOperand(sb)
	if err != nil {
		return WrapExitError(ExitCommandError, "ref", err)
	}
	r := ksa.Reference(a, b)
	return out.Success(refResult{ksa.Pair{A: a, B: b}, r},
		fmt.Sprintf("a=%d b=%d sum=%d carry_out=%d", a, b, r.Sum, r.Carry))
}
