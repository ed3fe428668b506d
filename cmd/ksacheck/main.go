// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Command ksacheck verifies a gate level 4 bits Kogge-Stone adder against a
// reference model.
//
//	ksacheck run --exhaustive
//	ksacheck run --trials 1000 --seed 42 --format json
//	ksacheck ref 7 9
//
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/tt-ksa/hwsim/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ksacheck:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
