package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabgroups/tabgroups/internal/domain"
)

// isolate points HOME at a temporary directory
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestNewManager(t *testing.T) {
	manager := NewManager()

	assert.NotNil(t, manager)
	assert.NotNil(t, manager.config)
	assert.NotNil(t, manager.viper)
	assert.NotNil(t, manager.validator)
}

func TestManagerLoadDefaults(t *testing.T) {
	home := isolate(t)

	manager := NewManager()
	require.NoError(t, manager.Load())
	assert.Empty(t, manager.GetConfigFile())

	config := manager.GetConfig()
	assert.Equal(t, BackendFile, config.Store.Backend)
	assert.Empty(t, config.Store.Path)
	assert.Equal(t, 500*time.Millisecond, config.Store.PollInterval)
	assert.Equal(t, domain.StoredPreferences{Mode: "AUTO", Color: true, Title: true}, config.Store.Defaults)

	assert.Equal(t, "default", config.UI.Theme)
	assert.True(t, config.UI.ShowHelp)
	assert.Empty(t, config.UI.Platform)

	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.Equal(t, filepath.Join(home, ".config", "tabgroups", "tabgroups.log"), config.Logging.Output)

	assert.Equal(t, config.Store, manager.GetStoreConfig())
	assert.Equal(t, config.UI, manager.GetUIConfig())
	assert.Equal(t, config.Logging, manager.GetLoggingConfig())
}

func TestStorePath(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "tabgroups")

	assert.Equal(t, filepath.Join(dir, "preferences.yaml"), StorePath(domain.StoreConfig{Backend: BackendFile}))
	assert.Equal(t, filepath.Join(dir, "preferences.db"), StorePath(domain.StoreConfig{Backend: BackendSQLite}))
	assert.Equal(t, "/tmp/prefs.yaml", StorePath(domain.StoreConfig{Backend: BackendFile, Path: "/tmp/prefs.yaml"}))
}

func TestManagerEnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("TABGROUPS_STORE_BACKEND", "sqlite")
	t.Setenv("TABGROUPS_STORE_POLL_INTERVAL", "2s")
	t.Setenv("TABGROUPS_STORE_DEFAULTS_MODE", "MAN")
	t.Setenv("TABGROUPS_STORE_DEFAULTS_COLOR", "false")
	t.Setenv("TABGROUPS_UI_THEME", "dark")
	t.Setenv("TABGROUPS_UI_PLATFORM", "MacIntel")
	t.Setenv("TABGROUPS_LOGGING_OUTPUT", "stderr")

	manager := NewManager()
	require.NoError(t, manager.Load())

	config := manager.GetConfig()
	assert.Equal(t, BackendSQLite, config.Store.Backend)
	assert.Equal(t, 2*time.Second, config.Store.PollInterval)
	assert.Equal(t, domain.StoredPreferences{Mode: "MAN", Color: false, Title: true}, config.Store.Defaults)
	assert.Equal(t, "dark", config.UI.Theme)
	assert.Equal(t, "MacIntel", config.UI.Platform)
	assert.Equal(t, "stderr", config.Logging.Output)
}

func TestManagerLoadRejectsInvalidEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("TABGROUPS_STORE_BACKEND", "redis")

	err := NewManager().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.backend must be one of")
}

func TestManagerLoadFromFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "tabgroups.yaml")
	content := `store:
  backend: sqlite
  path: /var/lib/tabgroups/prefs.db
  defaults:
    mode: MAN
    title: false
ui:
  theme: minimal
  show_help: false
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	manager := NewManager()
	require.NoError(t, manager.LoadFromFile(path))
	assert.Equal(t, path, manager.GetConfigFile())

	config := manager.GetConfig()
	assert.Equal(t, BackendSQLite, config.Store.Backend)
	assert.Equal(t, "/var/lib/tabgroups/prefs.db", config.Store.Path)
	assert.Equal(t, domain.StoredPreferences{Mode: "MAN", Color: true, Title: false}, config.Store.Defaults)
	assert.Equal(t, "minimal", config.UI.Theme)
	assert.False(t, config.UI.ShowHelp)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

func TestManagerLoadFromFileErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	err := NewManager().LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("store:\n  defaults:\n    mode: SOMETIMES\n"), 0644))
	err = NewManager().LoadFromFile(invalid)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownMode)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	os.Unsetenv("TABGROUPS_UI_THEME")
	os.Unsetenv("TABGROUPS_UI_PLATFORM")
	t.Cleanup(func() {
		os.Unsetenv("TABGROUPS_UI_THEME")
		os.Unsetenv("TABGROUPS_UI_PLATFORM")
	})

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TABGROUPS_UI_THEME=light\nTABGROUPS_UI_PLATFORM=MacIntel\n"), 0644))
	require.NoError(t, LoadDotEnv(path))

	manager := NewManager()
	require.NoError(t, manager.Load())
	assert.Equal(t, "light", manager.GetConfig().UI.Theme)
	assert.Equal(t, "MacIntel", manager.GetConfig().UI.Platform)

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestManagerGetSet(t *testing.T) {
	isolate(t)
	manager := NewManager()
	require.NoError(t, manager.Load())

	assert.Equal(t, "default", manager.Get("ui.theme"))

	require.NoError(t, manager.Set("ui.theme", "light"))
	assert.Equal(t, "light", manager.Get("ui.theme"))
	assert.Equal(t, "light", manager.GetConfig().UI.Theme)

	require.NoError(t, manager.Set("store.poll_interval", "1s"))
	assert.Equal(t, time.Second, manager.GetConfig().Store.PollInterval)
}

func TestManagerSetRollsBackInvalidValues(t *testing.T) {
	isolate(t)
	manager := NewManager()
	require.NoError(t, manager.Load())

	err := manager.Set("ui.theme", "neon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed for key ui.theme")
	assert.Equal(t, "default", manager.Get("ui.theme"))
	assert.Equal(t, "default", manager.GetConfig().UI.Theme)

	err = manager.Set("store.poll_interval", "0s")
	require.Error(t, err)
	assert.Equal(t, 500*time.Millisecond, manager.GetConfig().Store.PollInterval)

	err = manager.Set("logging.format", "xml")
	require.Error(t, err)
	assert.Equal(t, "text", manager.GetConfig().Logging.Format)
}

func TestManagerSaveAndReload(t *testing.T) {
	home := isolate(t)

	manager := NewManager()
	require.NoError(t, manager.Load())
	require.NoError(t, manager.Set("store.backend", BackendSQLite))
	require.NoError(t, manager.Set("ui.theme", "dark"))
	require.NoError(t, manager.Save())

	configFile := filepath.Join(home, ".config", "tabgroups", "tabgroups.yaml")
	assert.FileExists(t, configFile)
	assert.Equal(t, configFile, manager.GetConfigFile())

	reloaded := NewManager()
	require.NoError(t, reloaded.LoadFromFile(configFile))
	assert.Equal(t, BackendSQLite, reloaded.GetConfig().Store.Backend)
	assert.Equal(t, "dark", reloaded.GetConfig().UI.Theme)
}

func TestManagerSaveAs(t *testing.T) {
	isolate(t)
	manager := NewManager()
	require.NoError(t, manager.Load())

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, manager.SaveAs(path))
	assert.FileExists(t, path)
	assert.Equal(t, path, manager.GetConfigFile())
}

func TestManagerReset(t *testing.T) {
	isolate(t)
	manager := NewManager()
	require.NoError(t, manager.Load())
	require.NoError(t, manager.Set("ui.theme", "dark"))
	require.NoError(t, manager.Set("ui.show_help", false))

	require.NoError(t, manager.Reset())
	assert.Equal(t, "default", manager.GetConfig().UI.Theme)
	assert.True(t, manager.GetConfig().UI.ShowHelp)
}

func TestManagerBindFlag(t *testing.T) {
	isolate(t)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("theme", "", "")
	require.NoError(t, flags.Parse([]string{"--theme", "light"}))

	manager := NewManager()
	require.NoError(t, manager.BindFlag("ui.theme", flags.Lookup("theme")))
	require.NoError(t, manager.Load())
	assert.Equal(t, "light", manager.GetConfig().UI.Theme)

	assert.Error(t, manager.BindFlag("ui.platform", flags.Lookup("platform")))
}

func TestManagerSettings(t *testing.T) {
	isolate(t)
	manager := NewManager()
	require.NoError(t, manager.Load())

	settings := manager.Settings()
	assert.Contains(t, settings, "store")
	assert.Contains(t, settings, "ui")
	assert.Contains(t, settings, "logging")
}

func TestValidatorFieldValidation(t *testing.T) {
	validator := NewValidator()

	assert.NoError(t, validator.ValidateField("store.backend", "memory"))
	assert.Error(t, validator.ValidateField("store.backend", "redis"))

	assert.NoError(t, validator.ValidateField("store.poll_interval", time.Second))
	assert.Error(t, validator.ValidateField("store.poll_interval", -time.Second))

	assert.NoError(t, validator.ValidateField("store.defaults.mode", "MAN"))
	assert.Error(t, validator.ValidateField("store.defaults.mode", "manual"))

	assert.NoError(t, validator.ValidateField("ui.theme", "minimal"))
	assert.Error(t, validator.ValidateField("ui.theme", "neon"))

	assert.NoError(t, validator.ValidateField("logging.level", "warn"))
	assert.Error(t, validator.ValidateField("logging.level", "verbose"))

	assert.NoError(t, validator.ValidateField("unknown.key", "anything"))
}

func TestValidatorValidateCompleteConfig(t *testing.T) {
	validator := NewValidator()

	valid := &domain.Config{
		Store: domain.StoreConfig{
			Backend:      BackendMemory,
			PollInterval: time.Second,
			Defaults:     domain.StoredPreferences{Mode: "AUTO", Color: true, Title: true},
		},
		UI:      domain.UIConfig{Theme: "default", ShowHelp: true},
		Logging: domain.LoggingConfig{Level: "INFO", Format: "logfmt", Output: "stderr"},
	}
	assert.NoError(t, validator.Validate(valid))

	invalid := *valid
	invalid.Logging.Output = " "
	err := validator.Validate(&invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging config validation failed")

	invalid = *valid
	invalid.UI.Theme = "neon"
	err = validator.Validate(&invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UI config validation failed")
}

func TestConfigurationManagerInterfaceCompliance(t *testing.T) {
	var _ domain.ConfigurationManager = NewManager()
}

func TestKeysAreBoundToEnvironment(t *testing.T) {
	isolate(t)
	assert.True(t, IsKey("ui.theme"))
	assert.True(t, IsKey("store.defaults.mode"))
	assert.False(t, IsKey("ui"))
	assert.False(t, IsKey("ui.colour"))

	t.Setenv("TABGROUPS_UI_PLATFORM", "MacIntel")
	t.Setenv("TABGROUPS_LOGGING_FORMAT", "json")
	t.Setenv("TABGROUPS_STORE_DEFAULTS_COLOR", "false")

	manager := NewManager()
	require.NoError(t, manager.Load())
	assert.Equal(t, "MacIntel", manager.GetUIConfig().Platform)
	assert.Equal(t, "json", manager.GetLoggingConfig().Format)
	assert.False(t, manager.GetStoreConfig().Defaults.Color)

	for _, key := range Keys {
		assert.NotNil(t, manager.Get(key), key)
	}
}
