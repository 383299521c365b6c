package config

import (
	"log/slog"
	"os"
	"sync"

	"github.com/0xalexb/hjarta-config/config/diag"
	"github.com/0xalexb/hjarta-config/config/masking"
)

// Settings environment variables start with SettingsEnvPrefix and nest with
// SettingsEnvSeparator, e.g. HJARTA_MASKING__MASK_CHAR.
const (
	SettingsEnvPrefix    = "HJARTA_"
	SettingsEnvSeparator = "__"
)

// Settings are the process-wide defaults of the loader.
type Settings struct {
	Masking      masking.Options `conf:"masking"`
	ErrorDisplay diag.Display    `conf:"error_display"`
	Loading      LoadingSettings `conf:"loading"`
}

// LoadingSettings tune every load.
type LoadingSettings struct {
	// Debug turns on WithDebug for every load.
	Debug bool `conf:"debug" default:"false"`
}

//nolint:gochecknoglobals // process-wide settings, loaded once.
var (
	settingsMu      sync.Mutex
	currentSettings *Settings
)

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Masking:      masking.DefaultOptions(),
		ErrorDisplay: diag.DefaultDisplay(),
	}
}

// CurrentSettings returns the process settings, reading them from the
// environment on first use. Concurrent callers wait for that first read.
// Invalid variables are logged and replaced by defaults.
func CurrentSettings() Settings {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	if currentSettings != nil {
		return *currentSettings
	}

	loaded, err := LoadSettings(os.Environ)
	if err != nil {
		slog.Warn("invalid settings, using defaults", slog.String("error", err.Error()))

		defaults := DefaultSettings()
		loaded = &defaults
	}

	currentSettings = loaded

	return *loaded
}

// Configure replaces the process settings.
func Configure(settings Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	currentSettings = &settings
}

// LoadSettings reads settings from HJARTA_ variables through the regular
// load pipeline. That load, and anything it triggers, runs with
// DefaultSettings and never consults CurrentSettings.
func LoadSettings(environ func() []string) (*Settings, error) {
	return Load[Settings](
		Source{Loader: KindEnv, Prefix: SettingsEnvPrefix, Separator: SettingsEnvSeparator},
		loadingSettings(),
		WithEnviron(environ),
	)
}
