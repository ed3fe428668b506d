// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package ksa_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hw "github.com/tt-ksa/hwsim"
	hl "github.com/tt-ksa/hwsim/hwlib"
	"github.com/tt-ksa/hwsim/ksa"
)

func TestSimulate(t *testing.T) {
	var buf bytes.Buffer
	cfg := ksa.DefaultConfig()
	cfg.Trials = 20
	cfg.Seed = 7
	cfg.RunID = "test"

	rep, err := ksa.Simulate(context.Background(), cfg, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)
	assert.Equal(t, &ksa.Report{
		RunID:         "test",
		Mode:          "random",
		Seed:          7,
		Trials:        20,
		SettleCycles:  10,
		Cycles:        200,
		SimulatedTime: 2 * time.Millisecond,
		Passed:        true,
	}, rep)

	logs := buf.String()
	assert.Contains(t, logs, `msg="clock started" run_id=test part=tt_um_ksa4`)
	assert.Contains(t, logs, `msg="starting verification" run_id=test mode=random seed=7`)
	assert.Contains(t, logs, `msg="all test cases passed" run_id=test trials=20`)
}

func TestSimulate_mismatch(t *testing.T) {
	cfg := ksa.DefaultConfig()
	cfg.Exhaustive = true
	cfg.Fault = ksa.CarryStuck0

	rep, err := ksa.Simulate(context.Background(), cfg, nil)
	require.Error(t, err)
	m, ok := errors.Cause(err).(*ksa.MismatchError)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "trial 31: a=1, b=15: Carry mismatch: Expected 1, Got 0", m.Error())

	require.NotNil(t, rep)
	assert.False(t, rep.Passed)
	assert.Same(t, m, rep.Mismatch)
	assert.Equal(t, 31, rep.Trials)
	assert.Equal(t, uint64(320), rep.Cycles)
	assert.Equal(t, 3200*time.Microsecond, rep.SimulatedTime)
	assert.Equal(t, ksa.CarryStuck0, rep.Fault)
	assert.Equal(t, "exhaustive", rep.Mode)
	assert.NotEmpty(t, rep.RunID)
}

func TestSimulate_errors(t *testing.T) {
	cfg := ksa.DefaultConfig()
	cfg.SettleCycles = 0
	rep, err := ksa.Simulate(context.Background(), cfg, nil)
	assert.Nil(t, rep)
	assert.ErrorContains(t, err, "invalid configuration")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err = ksa.Simulate(ctx, ksa.DefaultConfig(), nil)
	assert.ErrorContains(t, err, "verification aborted")
	require.NotNil(t, rep)
	assert.False(t, rep.Passed)
}

// adder with all outputs tied low
var zeroAdder = hw.MustChip("ZERO4", "a[4], b[4]", "out[4], c",
	hl.AndN(4)("out=out"),
	hl.And("out=c"),
)

func TestVerify(t *testing.T) {
	cfg := ksa.DefaultConfig()
	cfg.RunID = "7+9"
	ops := []ksa.Pair{{A: 7, B: 9}}

	rep, err := ksa.Verify(context.Background(), ksa.Top, ops, cfg, nil)
	require.NoError(t, err)
	assert.True(t, rep.Passed)
	assert.Equal(t, 1, rep.Trials)
	assert.Equal(t, uint64(10), rep.Cycles)
	assert.Nil(t, rep.Mismatch)

	zero, err := ksa.NewTop(zeroAdder)
	require.NoError(t, err)
	rep, err = ksa.Verify(context.Background(), zero, ops, cfg, nil)
	require.Error(t, err)
	m, ok := errors.Cause(err).(*ksa.MismatchError)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "trial 0: a=7, b=9: Carry mismatch: Expected 1, Got 0", m.Error())
	assert.Equal(t, ksa.Result{}, m.Observed)
	require.NotNil(t, rep)
	assert.False(t, rep.Passed)
	assert.Equal(t, "7+9", rep.RunID)
}
