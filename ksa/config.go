// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package ksa

import (
	"math/bits"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of a verification run.
//
type Config struct {
	// Number of random trials. Ignored in exhaustive mode.
	Trials int `yaml:"trials" json:"trials" validate:"gte=1,lte=1000000"`
	// Seed of the operand generator.
	Seed uint64 `yaml:"seed" json:"seed"`
	// Exhaustive runs all 256 operand pairs instead of random ones.
	Exhaustive bool `yaml:"exhaustive" json:"exhaustive"`
	// Clock cycles between applying operands and sampling the results.
	SettleCycles int `yaml:"settle_cycles" json:"settle_cycles" validate:"gte=2,lte=1000"`
	// Simulation steps per clock cycle. Rounded up to a power of two.
	StepsPerCycle uint `yaml:"steps_per_cycle" json:"steps_per_cycle" validate:"gte=2,lte=1024"`
	// Simulation worker goroutines. GOMAXPROCS if 0.
	Workers int `yaml:"workers" json:"workers" validate:"gte=0,lte=256"`
	// Simulated clock period.
	ClockPeriod time.Duration `yaml:"clock_period" json:"clock_period" validate:"gt=0"`
	// Fault injected into the adder, if any.
	Fault Fault `yaml:"fault" json:"fault,omitempty" validate:"omitempty,oneof=carry-stuck-0 sum0-stuck-1"`
	// Run identifier reported in logs and reports. A random UUID is used if
	// empty.
	RunID string `yaml:"run_id" json:"run_id,omitempty" validate:"omitempty,max=64"`
}

// DefaultConfig returns the default configuration: 1000 random trials with
// seed 0 and a 10 cycles settle time on a 100kHz clock.
//
func DefaultConfig() Config {
	return Config{
		Trials:        1000,
		SettleCycles:  DefaultSettleCycles,
		StepsPerCycle: 16,
		ClockPeriod:   10 * time.Microsecond,
	}
}

// Upper bounds, in simulation steps, of the path from an operand change to the
// top's register inputs, and from the register clock edge to the outputs.
const (
	registerDepth = 10
	outputDepth   = 2
)

// MinSettleCycles returns the smallest settle delay that lets the top's
// outputs settle when running at spc simulation steps per clock cycle. spc is
// rounded up to a power of two like hwsim.NewCircuit does.
//
func MinSettleCycles(spc uint) int {
	if spc < 2 {
		spc = 2
	}
	spc = 1 << bits.Len(spc-1)
	return int((registerDepth+spc-1)/spc + (outputDepth+spc-1)/spc)
}

var validate = validator.New()

// Validate checks the configuration values and sets RunID if empty. The
// settle delay must be at least MinSettleCycles(StepsPerCycle).
//
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if need := MinSettleCycles(c.StepsPerCycle); c.SettleCycles < need {
		return errors.Errorf("invalid configuration: %d settle cycles at %d steps per cycle, need at least %d",
			c.SettleCycles, c.StepsPerCycle, need)
	}
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	return nil
}

// Mode returns "exhaustive" or "random".
//
func (c *Config) Mode() string {
	if c.Exhaustive {
		return "exhaustive"
	}
	return "random"
}

// Operands returns the operand pairs for the configured mode.
//
func (c *Config) Operands() []Pair {
	if c.Exhaustive {
		return ExhaustiveOperands()
	}
	return RandomOperands(c.Seed, c.Trials)
}

// LoadConfig reads a YAML configuration file. Missing fields keep their
// default value. Unknown fields are an error. The returned configuration is
// not validated.
//
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return cfg, nil
}
