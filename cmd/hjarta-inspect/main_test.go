package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := writeFile(t, dir, "config.yaml", "server:\n  host: localhost\n  port: 80\ndb:\n  password: hunter2hunter2\n")
	local := writeFile(t, dir, "local.json", `{"server": {"port": 8080}}`)

	tests := []struct {
		name       string
		args       []string
		exitCode   int
		stdout     []string
		stderr     []string
		notInAnyOf []string
	}{
		{
			name:       "merged data",
			args:       []string{base, local},
			exitCode:   exitOK,
			stdout:     []string{`"port": 8080`, `"host": "localhost"`, `"password": "hu*****r2"`},
			notInAnyOf: []string{"hunter2hunter2", "Field origins"},
		},
		{
			name:     "first wins",
			args:     []string{"--strategy", "first_wins", base, local},
			exitCode: exitOK,
			stdout:   []string{"\"port\": 80\n"},
		},
		{
			name:     "origins",
			args:     []string{"--origins", base, local},
			exitCode: exitOK,
			stdout: []string{
				"Field origins:",
				"server.port",
				"#1 json '" + local + "'",
				"#0 yaml '" + base + "'",
			},
			notInAnyOf: []string{"hunter2hunter2"},
		},
		{
			name:     "conflict",
			args:     []string{"-s", "raise_on_conflict", base, local},
			exitCode: exitError,
			stderr:   []string{"config merge conflicts (1)", "[server.port]  Conflicting values in multiple sources"},
		},
		{
			name:     "extra secret name",
			args:     []string{"--secret-name", "host", base},
			exitCode: exitOK,
			stdout:   []string{`"host": "lo*****st"`},
		},
		{
			name:     "missing file",
			args:     []string{filepath.Join(dir, "none.yaml")},
			exitCode: exitError,
			stderr:   []string{"reading source yaml"},
		},
		{
			name:     "unknown strategy",
			args:     []string{"--strategy", "newest", base},
			exitCode: exitUsage,
			stderr:   []string{"unknown merge strategy"},
		},
		{
			name:     "unknown expansion mode",
			args:     []string{"--expand", "lenient", base},
			exitCode: exitUsage,
			stderr:   []string{"unknown expansion mode"},
		},
		{
			name:     "no files",
			args:     nil,
			exitCode: exitUsage,
			stderr:   []string{"Usage: hjarta-inspect"},
		},
		{
			name:     "unknown flag",
			args:     []string{"--bogus"},
			exitCode: exitUsage,
			stderr:   []string{"unknown flag: --bogus"},
		},
		{
			name:     "help",
			args:     []string{"--help"},
			exitCode: exitOK,
			stderr:   []string{"Usage: hjarta-inspect", "--secret-name"},
		},
		{
			name:     "version",
			args:     []string{"--version"},
			exitCode: exitOK,
			stdout:   []string{"hjarta-inspect version dev"},
		},
	}

	for _, testInfo := range tests {
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer

			exitCode := run(testInfo.args, &stdout, &stderr)

			assert.Equal(t, testInfo.exitCode, exitCode, stderr.String())

			for _, expected := range testInfo.stdout {
				assert.Contains(t, stdout.String(), expected)
			}

			for _, expected := range testInfo.stderr {
				assert.Contains(t, stderr.String(), expected)
			}

			for _, unexpected := range testInfo.notInAnyOf {
				assert.NotContains(t, stdout.String(), unexpected)
				assert.NotContains(t, stderr.String(), unexpected)
			}
		})
	}
}
