// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package ksa_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tt-ksa/hwsim/ksa"
)

func TestConfig_Validate(t *testing.T) {
	cfg := ksa.DefaultConfig()
	require.NoError(t, cfg.Validate())
	_, err := uuid.Parse(cfg.RunID)
	assert.NoError(t, err, "run id %q", cfg.RunID)

	cfg.RunID = "nightly-42"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "nightly-42", cfg.RunID)

	td := []struct {
		name string
		fn   func(c *ksa.Config)
	}{
		{"trials", func(c *ksa.Config) { c.Trials = 0 }},
		{"settle", func(c *ksa.Config) { c.SettleCycles = 0 }},
		{"settle_1", func(c *ksa.Config) { c.SettleCycles = 1 }},
		{"settle_short", func(c *ksa.Config) { c.SettleCycles, c.StepsPerCycle = 2, 2 }},
		{"settle_short_rounded", func(c *ksa.Config) { c.SettleCycles, c.StepsPerCycle = 2, 5 }},
		{"steps", func(c *ksa.Config) { c.StepsPerCycle = 1 }},
		{"workers", func(c *ksa.Config) { c.Workers = -1 }},
		{"period", func(c *ksa.Config) { c.ClockPeriod = 0 }},
		{"fault", func(c *ksa.Config) { c.Fault = "bridge" }},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			c := ksa.DefaultConfig()
			d.fn(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Empty(t, c.RunID)
		})
	}
}

func TestMinSettleCycles(t *testing.T) {
	td := []struct {
		spc uint
		min int
	}{
		{0, 6}, {2, 6}, {3, 4}, {4, 4}, {8, 3}, {9, 2}, {16, 2}, {1024, 2},
	}
	for _, d := range td {
		assert.Equal(t, d.min, ksa.MinSettleCycles(d.spc), "spc %d", d.spc)
	}

	cfg := ksa.DefaultConfig()
	cfg.SettleCycles, cfg.StepsPerCycle = 2, 2
	assert.EqualError(t, cfg.Validate(), "invalid configuration: 2 settle cycles at 2 steps per cycle, need at least 6")

	for _, d := range td[1:] {
		cfg := ksa.DefaultConfig()
		cfg.SettleCycles, cfg.StepsPerCycle = d.min, d.spc
		assert.NoError(t, cfg.Validate(), "spc %d", d.spc)
	}
}

func TestConfig_Operands(t *testing.T) {
	cfg := ksa.DefaultConfig()
	cfg.Trials, cfg.Seed = 20, 5
	assert.Equal(t, "random", cfg.Mode())
	assert.Equal(t, ksa.RandomOperands(5, 20), cfg.Operands())

	cfg.Exhaustive = true
	assert.Equal(t, "exhaustive", cfg.Mode())
	assert.Equal(t, ksa.ExhaustiveOperands(), cfg.Operands())
}

func writeConfig(t *testing.T, s string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "ksa.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(s), 0o600))
	return fn
}

func TestLoadConfig(t *testing.T) {
	fn := writeConfig(t, `
trials: 50
seed: 42
settle_cycles: 4
clock_period: 20us
fault: carry-stuck-0
run_id: ci
`)
	cfg, err := ksa.LoadConfig(fn)
	require.NoError(t, err)

	exp := ksa.DefaultConfig()
	exp.Trials = 50
	exp.Seed = 42
	exp.SettleCycles = 4
	exp.ClockPeriod = 20 * time.Microsecond
	exp.Fault = ksa.CarryStuck0
	exp.RunID = "ci"
	assert.Equal(t, exp, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_errors(t *testing.T) {
	_, err := ksa.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ksa.LoadConfig(writeConfig(t, "trails: 5\n"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = ksa.LoadConfig(writeConfig(t, "trials: many\n"))
	assert.Error(t, err)

	// values are not checked until Validate
	cfg, err := ksa.LoadConfig(writeConfig(t, "trials: 0\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}
