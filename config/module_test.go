package config

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type appReport struct {
	fx.In

	Report *LoadReport `name:"app"`
}

func TestModule_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := Merge{Sources: []Source{
		{File: writeFile(t, dir, "a.json", `{"port": 1, "name": "a"}`)},
		{File: writeFile(t, dir, "b.toml", "port = 2\n")},
	}}

	var (
		cfg    *portConfig
		report *LoadReport
	)

	app := fxtest.New(t,
		Module[portConfig]("app", m, defaults(), WithDebug()),
		fx.Populate(&cfg),
		fx.Invoke(func(p appReport) { report = p.Report }),
	)

	app.RequireStart()

	require.NotNil(t, cfg)
	assert.Equal(t, portConfig{Port: 2, Name: "a"}, *cfg)
	require.NotNil(t, report)
	assert.Equal(t, "portConfig", report.TypeName)
	assert.Len(t, report.Sources, 2)

	app.RequireStop()
}

func TestModule_SingleSourceUsesGraphLogger(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	path := writeFile(t, t.TempDir(), "config.yaml", "port: 3\n")

	var (
		cfg    *portConfig
		report *LoadReport
	)

	app := fxtest.New(t,
		fx.Supply(logger),
		Module[portConfig]("app", Merge{Sources: []Source{{File: path}}}, defaults()),
		fx.Populate(&cfg),
		fx.Invoke(func(p appReport) { report = p.Report }),
	)

	app.RequireStart()

	assert.Equal(t, 3, cfg.Port)
	assert.Nil(t, report)
	assert.Contains(t, buffer.String(), "configuration loaded")

	app.RequireStop()
}

func TestModule_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		module func(t *testing.T) fx.Option
	}{
		{
			name: "empty name",
			module: func(t *testing.T) fx.Option {
				t.Helper()

				return Module[portConfig]("", Merge{Sources: []Source{{File: "config.json"}}})
			},
		},
		{
			name: "missing file",
			module: func(t *testing.T) fx.Option {
				t.Helper()

				return Module[portConfig]("app", Merge{Sources: []Source{{File: filepath.Join(t.TempDir(), "none.json")}}}, defaults())
			},
		},
		{
			name: "invalid value",
			module: func(t *testing.T) fx.Option {
				t.Helper()

				path := writeFile(t, t.TempDir(), "config.json", `{"port": "abc"}`)

				return Module[portConfig]("app", Merge{Sources: []Source{{File: path}}}, defaults())
			},
		},
	}

	for _, testInfo := range tests {
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			var cfg *portConfig

			app := fx.New(
				fx.NopLogger,
				testInfo.module(t),
				fx.Populate(&cfg),
			)

			require.Error(t, app.Err())
			assert.Nil(t, cfg)
		})
	}
}
