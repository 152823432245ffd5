// Package config provides configuration management functionality
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tabgroups/tabgroups/internal/domain"
	"github.com/tabgroups/tabgroups/internal/logging"
	"github.com/tabgroups/tabgroups/internal/tui"
)

// Store backends accepted by store.backend
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists the accepted store.backend values
var Backends = []string{BackendFile, BackendSQLite, BackendMemory}

// Keys lists every setting; each is also read from TABGROUPS_<KEY>
var Keys = []string{
	"store.backend",
	"store.path",
	"store.poll_interval",
	"store.defaults.mode",
	"store.defaults.color",
	"store.defaults.title",
	"ui.theme",
	"ui.show_help",
	"ui.platform",
	"logging.level",
	"logging.format",
	"logging.output",
}

// IsKey reports whether key names a setting
func IsKey(key string) bool {
	return contains(Keys, key)
}

// Manager implements the ConfigurationManager interface
type Manager struct {
	config     *domain.Config
	viper      *viper.Viper
	configFile string
	validator  *Validator
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	v := newViper()

	return &Manager{
		config:    &domain.Config{},
		viper:     v,
		validator: NewValidator(),
	}
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("tabgroups")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/tabgroups")
	v.AddConfigPath("/etc/tabgroups")

	v.SetEnvPrefix("TABGROUPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindEnvironmentVariables(v)
	setDefaults(v)
	return v
}

// bindEnvironmentVariables binds all configuration keys to environment variables
func bindEnvironmentVariables(v *viper.Viper) {
	for _, key := range Keys {
		v.BindEnv(key, "TABGROUPS_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Store defaults; an empty path is resolved by StorePath
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", "")
	v.SetDefault("store.poll_interval", "500ms")
	v.SetDefault("store.defaults.mode", domain.ModeKeyAutomatic)
	v.SetDefault("store.defaults.color", true)
	v.SetDefault("store.defaults.title", true)

	// UI defaults
	v.SetDefault("ui.theme", "default")
	v.SetDefault("ui.show_help", true)
	v.SetDefault("ui.platform", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", filepath.Join(Dir(), "tabgroups.log"))
}

// Dir returns the per-user configuration directory
func Dir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "tabgroups")
}

// StorePath returns the configured preference location, falling back to a
// backend-specific file under Dir
func StorePath(cfg domain.StoreConfig) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	if cfg.Backend == BackendSQLite {
		return filepath.Join(Dir(), "preferences.db")
	}
	return filepath.Join(Dir(), "preferences.yaml")
}

// LoadDotEnv exports the variables of a dotenv file so TABGROUPS_* settings
// can live next to the project. Variables already in the environment win and
// a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from file and environment variables
func (m *Manager) Load() error {
	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		// Defaults and environment variables are enough to run
	} else {
		m.configFile = m.viper.ConfigFileUsed()
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := m.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a specific file path
func (m *Manager) LoadFromFile(filePath string) error {
	m.viper.SetConfigFile(filePath)

	if err := m.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	m.configFile = filePath

	if err := m.viper.Unmarshal(m.config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return m.Validate()
}

// BindFlag lets a command-line flag override key
func (m *Manager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	return m.viper.BindPFlag(key, flag)
}

// GetConfigFile returns the path of the currently loaded config file
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Save saves the current configuration to file
func (m *Manager) Save() error {
	configFile := m.configFile
	if configFile == "" {
		configFile = filepath.Join(Dir(), "tabgroups.yaml")
	}
	return m.SaveAs(configFile)
}

// SaveAs saves the current configuration to a specific file path
func (m *Manager) SaveAs(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.viper.WriteConfigAs(filePath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.configFile = filePath
	return nil
}

// Get retrieves a configuration value by key
func (m *Manager) Get(key string) interface{} {
	return m.viper.Get(key)
}

// Settings returns every setting as a nested map
func (m *Manager) Settings() map[string]interface{} {
	return m.viper.AllSettings()
}

// Set sets a configuration value by key, rolling back if the result is invalid
func (m *Manager) Set(key string, value interface{}) error {
	oldValue := m.viper.Get(key)

	m.viper.Set(key, value)

	if err := m.viper.Unmarshal(m.config); err != nil {
		m.viper.Set(key, oldValue)
		m.viper.Unmarshal(m.config)
		return fmt.Errorf("failed to update config: %w", err)
	}

	if err := m.Validate(); err != nil {
		m.viper.Set(key, oldValue)
		m.viper.Unmarshal(m.config)
		return fmt.Errorf("validation failed for key %s: %w", key, err)
	}

	return nil
}

// Validate validates the current configuration
func (m *Manager) Validate() error {
	return m.validator.Validate(m.config)
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetStoreConfig returns the store configuration
func (m *Manager) GetStoreConfig() domain.StoreConfig {
	return m.config.Store
}

// GetUIConfig returns the UI configuration
func (m *Manager) GetUIConfig() domain.UIConfig {
	return m.config.UI
}

// GetLoggingConfig returns the logging configuration
func (m *Manager) GetLoggingConfig() domain.LoggingConfig {
	return m.config.Logging
}

// Reset drops file and runtime overrides, keeping defaults and environment
func (m *Manager) Reset() error {
	m.viper = newViper()

	*m.config = domain.Config{}
	if err := m.viper.Unmarshal(m.config); err != nil {
		return fmt.Errorf("failed to reset config: %w", err)
	}

	return m.Validate()
}

// Validator implements configuration validation
type Validator struct {
	rules map[string][]ValidationRule
}

// ValidationRule represents a single validation rule
type ValidationRule struct {
	Name     string
	Validate func(interface{}) error
	Message  string
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := &Validator{
		rules: make(map[string][]ValidationRule),
	}
	v.setupValidationRules()
	return v
}

func oneOf(key string, valid []string) ValidationRule {
	return ValidationRule{
		Name: "one_of",
		Validate: func(value interface{}) error {
			if s, ok := value.(string); ok && !contains(valid, s) {
				return fmt.Errorf("%s must be one of: %v", key, valid)
			}
			return nil
		},
		Message: fmt.Sprintf("%s must be one of: %s", key, strings.Join(valid, ", ")),
	}
}

// setupValidationRules sets up all validation rules
func (v *Validator) setupValidationRules() {
	v.rules["store.backend"] = []ValidationRule{oneOf("store.backend", Backends)}

	v.rules["store.poll_interval"] = []ValidationRule{
		{
			Name: "positive_duration",
			Validate: func(value interface{}) error {
				if duration, ok := value.(time.Duration); ok && duration <= 0 {
					return fmt.Errorf("poll_interval must be positive")
				}
				return nil
			},
			Message: "Poll interval must be a positive duration",
		},
	}

	v.rules["store.defaults.mode"] = []ValidationRule{
		{
			Name: "valid_mode",
			Validate: func(value interface{}) error {
				if key, ok := value.(string); ok {
					if _, err := domain.ParseMode(key); err != nil {
						return err
					}
				}
				return nil
			},
			Message: fmt.Sprintf("Default mode must be %s or %s", domain.ModeKeyAutomatic, domain.ModeKeyManual),
		},
	}

	v.rules["ui.theme"] = []ValidationRule{oneOf("theme", tui.ThemeNames)}
	v.rules["logging.level"] = []ValidationRule{oneOf("level", logging.Levels)}
	v.rules["logging.format"] = []ValidationRule{oneOf("format", logging.Formats)}
}

// ValidateField validates a specific configuration field
func (v *Validator) ValidateField(key string, value interface{}) error {
	if rules, exists := v.rules[key]; exists {
		for _, rule := range rules {
			if err := rule.Validate(value); err != nil {
				return fmt.Errorf("%s: %w", rule.Message, err)
			}
		}
	}
	return nil
}

// Validate validates the configuration
func (v *Validator) Validate(config *domain.Config) error {
	if err := v.validateStoreConfig(&config.Store); err != nil {
		return fmt.Errorf("store config validation failed: %w", err)
	}

	if err := v.validateUIConfig(&config.UI); err != nil {
		return fmt.Errorf("UI config validation failed: %w", err)
	}

	if err := v.validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateStoreConfig(config *domain.StoreConfig) error {
	if err := v.ValidateField("store.backend", config.Backend); err != nil {
		return err
	}
	if err := v.ValidateField("store.poll_interval", config.PollInterval); err != nil {
		return err
	}
	return v.ValidateField("store.defaults.mode", config.Defaults.Mode)
}

func (v *Validator) validateUIConfig(config *domain.UIConfig) error {
	return v.ValidateField("ui.theme", config.Theme)
}

func (v *Validator) validateLoggingConfig(config *domain.LoggingConfig) error {
	if err := v.ValidateField("logging.level", strings.ToLower(config.Level)); err != nil {
		return err
	}
	if err := v.ValidateField("logging.format", strings.ToLower(config.Format)); err != nil {
		return err
	}
	if strings.TrimSpace(config.Output) == "" {
		return fmt.Errorf("output cannot be empty")
	}
	return nil
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
