// Package domain contains the core business logic interfaces and contracts
package domain

import (
	"context"
)

// Field is a single named preference in the store
type Field[T any] interface {
	Key() string
	Get(ctx context.Context) (T, error)
	Set(ctx context.Context, value T) error
}

// PreferenceStore exposes the three grouping preferences as typed fields.
// The mode field holds the stored key form ("AUTO", "MAN").
type PreferenceStore interface {
	Mode() Field[string]
	Color() Field[bool]
	Title() Field[bool]
}

// UpdatePublisher pushes partial preference updates to listeners
type UpdatePublisher interface {
	Publish(update Update)
}

// UpdateChannel is the subscription point for pushed preference updates
type UpdateChannel interface {
	Subscribe() (<-chan Update, func())
}

// ConfigurationManager handles application configuration
type ConfigurationManager interface {
	Load() error
	Save() error
	Get(key string) interface{}
	Validate() error
	GetConfig() *Config
}

// Logger defines logging operations. The method set matches
// github.com/charmbracelet/log so a *log.Logger can be injected directly.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// Theme defines UI theming interface
type Theme interface {
	GetColor(element string) string
	GetStyle(element string) map[string]interface{}
	SetColor(element, color string)
}
