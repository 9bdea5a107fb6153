package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapql/internal/config"
)

// runCLI executes the root command over fs and returns stdout, stderr and
// the command error.
func runCLI(t *testing.T, fs afero.Fs, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(WithFs(fs), WithConfigOptions(config.WithWorkDir("/"), config.WithHome("/home/tester")))
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// memFs returns a filesystem holding the given files.
func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, body := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0o644))
	}
	return fs
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mapql", cmd.Use)
	assert.Contains(t, cmd.Long, "criteria mappings")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "exec"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command string
		flags   []string
	}{
		{"compile", []string{"inline", "dialect"}},
		{"exec", []string{"driver", "dsn", "one"}},
	}

	cmd := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.command})
			require.NoError(t, err)
			for _, name := range tt.flags {
				assert.NotNil(t, sub.Flags().Lookup(name), "flag --%s", name)
			}
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := runCLI(t, memFs(t, nil), "--format", "xml", "validate", "doc.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMissingArgument(t *testing.T) {
	_, _, err := runCLI(t, memFs(t, nil), "compile")
	assert.Error(t, err)
}

func TestBadConfigFile(t *testing.T) {
	fs := memFs(t, map[string]string{"/doc.yaml": "kind: select\ntable: users\n"})

	stdout, _, err := runCLI(t, fs, "--config", "/nope.yaml", "compile", "/doc.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "[E002]")
}

func TestConfigFileSetsDialect(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/.mapql.yaml": "driver: postgres\n",
		"/doc.yaml":    "kind: select\ntable: users\nwhere:\n  id: 3\n",
	})

	stdout, _, err := runCLI(t, fs, "compile", "/doc.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, `SELECT * FROM "users" WHERE "id"=$1`)
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	newLogger(buf, false).Debug("hidden")
	newLogger(buf, false).Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	newLogger(buf, true).Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
