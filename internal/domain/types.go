// Package domain contains core domain types and value objects
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode controls when tabs are put into groups
type Mode int

const (
	// ModeAutomatic groups recently opened tabs as they appear
	ModeAutomatic Mode = iota + 1
	// ModeManual groups tabs only when the user asks for it
	ModeManual
)

// Stored keys for Mode values
const (
	ModeKeyAutomatic = "AUTO"
	ModeKeyManual    = "MAN"
)

// Preference keys as they appear in the store and in update messages
const (
	KeyMode  = "mode"
	KeyColor = "color"
	KeyTitle = "title"
)

// ErrUnknownMode is returned when a stored mode key has no Mode value
var ErrUnknownMode = errors.New("unknown mode key")

// ParseMode converts a stored mode key into its Mode value
func ParseMode(key string) (Mode, error) {
	switch key {
	case ModeKeyAutomatic:
		return ModeAutomatic, nil
	case ModeKeyManual:
		return ModeManual, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, key)
	}
}

// ParseModeName accepts the stored keys and the human spellings used on the command line
func ParseModeName(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "auto", "automatic", "automatically":
		return ModeAutomatic, nil
	case "man", "manual", "manually":
		return ModeManual, nil
	default:
		return ParseMode(name)
	}
}

// Key returns the stored representation of the mode
func (m Mode) Key() string {
	switch m {
	case ModeAutomatic:
		return ModeKeyAutomatic
	case ModeManual:
		return ModeKeyManual
	default:
		return ""
	}
}

// Valid reports whether m is one of the known modes
func (m Mode) Valid() bool {
	return m == ModeAutomatic || m == ModeManual
}

// String returns the display label of the mode
func (m Mode) String() string {
	switch m {
	case ModeAutomatic:
		return "Automatically"
	case ModeManual:
		return "Manually"
	default:
		return "Unknown"
	}
}

// Preferences is the grouping configuration as the options page displays it
type Preferences struct {
	Mode  Mode `json:"mode" yaml:"mode"`
	Color bool `json:"color" yaml:"color"`
	Title bool `json:"title" yaml:"title"`
}

// StoredPreferences is the grouping configuration in its stored form
type StoredPreferences struct {
	Mode  string `json:"mode" yaml:"mode"`
	Color bool   `json:"color" yaml:"color"`
	Title bool   `json:"title" yaml:"title"`
}

// Preferences normalises the stored mode key into its Mode value
func (s StoredPreferences) Preferences() (Preferences, error) {
	prefs := Preferences{Color: s.Color, Title: s.Title}
	mode, err := ParseMode(s.Mode)
	if err != nil {
		return prefs, err
	}
	prefs.Mode = mode
	return prefs, nil
}

// Stored converts display preferences back into stored form
func (p Preferences) Stored() StoredPreferences {
	return StoredPreferences{Mode: p.Mode.Key(), Color: p.Color, Title: p.Title}
}

// Update is a partial preference change; nil fields are absent
type Update struct {
	Mode  *string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Color *bool   `json:"color,omitempty" yaml:"color,omitempty"`
	Title *bool   `json:"title,omitempty" yaml:"title,omitempty"`
}

// ModeUpdate builds an update carrying only a mode key
func ModeUpdate(key string) Update {
	return Update{Mode: &key}
}

// ColorUpdate builds an update carrying only the color flag
func ColorUpdate(v bool) Update {
	return Update{Color: &v}
}

// TitleUpdate builds an update carrying only the title flag
func TitleUpdate(v bool) Update {
	return Update{Title: &v}
}

// Empty reports whether the update carries no keys
func (u Update) Empty() bool {
	return u.Mode == nil && u.Color == nil && u.Title == nil
}

// Keys returns the keys present in the update in store order
func (u Update) Keys() []string {
	var keys []string
	if u.Mode != nil {
		keys = append(keys, KeyMode)
	}
	if u.Color != nil {
		keys = append(keys, KeyColor)
	}
	if u.Title != nil {
		keys = append(keys, KeyTitle)
	}
	return keys
}

// Apply merges the present keys of u over p. An unrecognised mode key leaves
// the mode untouched and is reported as ErrUnknownMode; the other keys are
// still applied.
func (p Preferences) Apply(u Update) (Preferences, error) {
	var err error
	if u.Mode != nil {
		mode, perr := ParseMode(*u.Mode)
		if perr != nil {
			err = perr
		} else {
			p.Mode = mode
		}
	}
	if u.Color != nil {
		p.Color = *u.Color
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	return p, err
}

// Diff returns the update that turns s into next, holding only changed keys
func (s StoredPreferences) Diff(next StoredPreferences) Update {
	var u Update
	if s.Mode != next.Mode {
		u.Mode = &next.Mode
	}
	if s.Color != next.Color {
		u.Color = &next.Color
	}
	if s.Title != next.Title {
		u.Title = &next.Title
	}
	return u
}

// StoreConfig contains preference storage settings
type StoreConfig struct {
	Backend      string            `json:"backend" mapstructure:"backend"`
	Path         string            `json:"path" mapstructure:"path"`
	PollInterval time.Duration     `json:"poll_interval" mapstructure:"poll_interval"`
	Defaults     StoredPreferences `json:"defaults" mapstructure:"defaults"`
}

// UIConfig contains UI preferences
type UIConfig struct {
	Theme    string `json:"theme" mapstructure:"theme"`
	ShowHelp bool   `json:"show_help" mapstructure:"show_help"`
	Platform string `json:"platform" mapstructure:"platform"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
	Output string `json:"output" mapstructure:"output"`
}

// Config represents the complete application configuration
type Config struct {
	Store   StoreConfig   `json:"store" mapstructure:"store"`
	UI      UIConfig      `json:"ui" mapstructure:"ui"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrorTypeStorage ErrorType = iota
	ErrorTypeValidation
	ErrorTypeConfiguration
	ErrorTypeUI
	ErrorTypeSystem
)

// String returns the name of the error category
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeStorage:
		return "storage"
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeConfiguration:
		return "configuration"
	case ErrorTypeUI:
		return "ui"
	default:
		return "system"
	}
}

// TabGroupsError represents application-specific errors
type TabGroupsError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Cause     error                  `json:"cause,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewError creates a TabGroupsError of the given type
func NewError(errType ErrorType, message string, cause error) *TabGroupsError {
	return &TabGroupsError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// WithContext attaches a key/value pair to the error
func (e *TabGroupsError) WithContext(key string, value interface{}) *TabGroupsError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface
func (e *TabGroupsError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *TabGroupsError) Unwrap() error {
	return e.Cause
}

// IsErrorType reports whether err is a TabGroupsError of the given type
func IsErrorType(err error, errType ErrorType) bool {
	var tgErr *TabGroupsError
	if errors.As(err, &tgErr) {
		return tgErr.Type == errType
	}
	return false
}
