// Copyright 2026 The ksacheck Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns its standard output.
// Logs are discarded unless stderr is not nil.
func execute(t *testing.T, stderr io.Writer, args ...string) ([]byte, error) {
	t.Helper()
	if stderr == nil {
		stderr = io.Discard
	}
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.Bytes(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ksacheck", cmd.Use)
	assert.Contains(t, cmd.Long, "Kogge-Stone")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"run", "ref"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	td := []struct {
		name, short, def string
	}{
		{"config", "c", ""},
		{"trials", "n", "1000"},
		{"seed", "", "0"},
		{"exhaustive", "", "false"},
		{"settle", "", "10"},
		{"steps-per-cycle", "", "16"},
		{"workers", "", "0"},
		{"fault", "", ""},
		{"run-id", "", ""},
	}
	for _, d := range td {
		f := run.Flags().Lookup(d.name)
		require.NotNil(t, f, d.name)
		assert.Equal(t, d.short, f.Shorthand, d.name)
		assert.Equal(t, d.def, f.DefValue, d.name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, nil, "--format", "xml", "ref", "1", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&RootOptions{}, &buf)
	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")

	buf.Reset()
	log = newLogger(&RootOptions{Verbose: true}, &buf)
	log.Debug("shown")
	assert.Contains(t, buf.String(), "level=DEBUG msg=shown")
}
