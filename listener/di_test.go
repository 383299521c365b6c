package listener

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/0xalexb/hjarta-config/config"
)

type appConfig struct {
	Port int
}

func TestNewModule_ServesConfigLoads(t *testing.T) {
	t.Parallel()

	addr := freePort(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 80\n"), 0o600))

	var cfg *appConfig

	app := fxtest.New(t,
		NewModule("metrics", WithAddress(addr)),
		config.Module[appConfig]("app",
			config.Merge{Sources: []config.Source{{File: path}}},
			config.WithSettings(config.DefaultSettings()),
		),
		fx.Populate(&cfg),
	)

	app.RequireStart()

	assert.Equal(t, 80, cfg.Port)

	status, body := get(t, "http://"+addr+DefaultPath)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `hjarta_config_loads_total{outcome="success",type="appConfig"} 1`)
	assert.Contains(t, body, `hjarta_config_load_duration_seconds_count{type="appConfig"} 1`)

	app.RequireStop()
}

//nolint:paralleltest // sets process environment variables.
func TestNewModule_ConfigFromEnvironment(t *testing.T) {
	addr := freePort(t)

	t.Setenv("HJARTA_METRICS_ADDRESS", addr)
	t.Setenv("HJARTA_METRICS_PATH", "/internal/metrics")

	app := fxtest.New(t, NewModule("metrics"))

	app.RequireStart()

	status, _ := get(t, "http://"+addr+"/internal/metrics")
	assert.Equal(t, http.StatusOK, status)

	app.RequireStop()
}

func TestNewModule_ShutdownStopsServer(t *testing.T) {
	t.Parallel()

	addr := freePort(t)

	app := fxtest.New(t, NewModule("metrics", WithAddress(addr)))

	app.RequireStart()
	app.RequireStop()

	dialer := net.Dialer{Timeout: 100 * time.Millisecond}

	conn, dialErr := dialer.DialContext(context.Background(), "tcp", addr)
	if dialErr == nil {
		_ = conn.Close()
	}

	assert.Error(t, dialErr, "should not be able to connect after shutdown")
}

func TestNewModule_ListenFailure(t *testing.T) {
	t.Parallel()

	listenCfg := net.ListenConfig{}

	ln, err := listenCfg.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer func() { _ = ln.Close() }()

	app := fx.New(
		NewModule("fail", WithAddress(ln.Addr().String())),
		fx.NopLogger,
	)

	err = app.Start(context.Background())
	assert.Error(t, err, "should fail when port is already in use")
}

func TestNewModule_EmptyName(t *testing.T) {
	t.Parallel()

	app := fx.New(
		NewModule(""),
		fx.NopLogger,
	)

	err := app.Err()
	require.Error(t, err, "should fail with empty name")
	assert.ErrorIs(t, err, ErrEmptyName)
}
