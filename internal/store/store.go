// Package store persists grouping preferences behind a key-value backend
package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/tabgroups/tabgroups/internal/domain"
)

// Backend is a string key-value store
type Backend interface {
	// Get returns the value for key; ok is false when the key was never set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Watchable is implemented by backends that can observe writes made by
// other processes. Each receive on the returned channel means the stored
// values may have changed.
type Watchable interface {
	Changes(ctx context.Context) (<-chan struct{}, error)
}

// DefaultPreferences are used for keys that were never written
var DefaultPreferences = domain.StoredPreferences{
	Mode:  domain.ModeKeyAutomatic,
	Color: true,
	Title: true,
}

// Store implements domain.PreferenceStore over a Backend
type Store struct {
	backend   Backend
	publisher domain.UpdatePublisher
	defaults  domain.StoredPreferences

	mode  *storedField[string]
	color *storedField[bool]
	title *storedField[bool]

	mu   sync.Mutex
	last *domain.StoredPreferences
}

// Option configures a Store
type Option func(*Store)

// WithDefaults overrides the values returned for unset keys
func WithDefaults(defaults domain.StoredPreferences) Option {
	return func(s *Store) {
		s.defaults = defaults
	}
}

// WithPublisher publishes every successful write as a single-key update
func WithPublisher(p domain.UpdatePublisher) Option {
	return func(s *Store) {
		s.publisher = p
	}
}

// New creates a store over backend
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		defaults: DefaultPreferences,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mode = &storedField[string]{
		store:  s,
		key:    domain.KeyMode,
		def:    func() string { return s.defaults.Mode },
		decode: decodeMode,
		encode: func(v string) string { return v },
		update: domain.ModeUpdate,
		remember: func(p *domain.StoredPreferences, v string) {
			p.Mode = v
		},
	}
	s.color = &storedField[bool]{
		store:  s,
		key:    domain.KeyColor,
		def:    func() bool { return s.defaults.Color },
		decode: strconv.ParseBool,
		encode: strconv.FormatBool,
		update: domain.ColorUpdate,
		remember: func(p *domain.StoredPreferences, v bool) {
			p.Color = v
		},
	}
	s.title = &storedField[bool]{
		store:  s,
		key:    domain.KeyTitle,
		def:    func() bool { return s.defaults.Title },
		decode: strconv.ParseBool,
		encode: strconv.FormatBool,
		update: domain.TitleUpdate,
		remember: func(p *domain.StoredPreferences, v bool) {
			p.Title = v
		},
	}
	return s
}

// Mode returns the mode field, holding stored mode keys
func (s *Store) Mode() domain.Field[string] { return s.mode }

// Color returns the color field
func (s *Store) Color() domain.Field[bool] { return s.color }

// Title returns the title field
func (s *Store) Title() domain.Field[bool] { return s.title }

// Defaults returns the values used for unset keys
func (s *Store) Defaults() domain.StoredPreferences { return s.defaults }

// Snapshot reads mode, color and title, in that order
func (s *Store) Snapshot(ctx context.Context) (domain.StoredPreferences, error) {
	var prefs domain.StoredPreferences
	var err error

	if prefs.Mode, err = s.mode.Get(ctx); err != nil {
		return prefs, err
	}
	if prefs.Color, err = s.color.Get(ctx); err != nil {
		return prefs, err
	}
	if prefs.Title, err = s.title.Get(ctx); err != nil {
		return prefs, err
	}
	return prefs, nil
}

// Reset writes the default values for all three fields
func (s *Store) Reset(ctx context.Context) error {
	if err := s.mode.Set(ctx, s.defaults.Mode); err != nil {
		return err
	}
	if err := s.color.Set(ctx, s.defaults.Color); err != nil {
		return err
	}
	return s.title.Set(ctx, s.defaults.Title)
}

// Close closes the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// observe reads a fresh snapshot and hands the keys that changed since the
// previous observation to publish. The first observation only records.
// Writes through the store hold the same lock, so a snapshot never races
// them and publish sees changes in the order they were made.
func (s *Store) observe(ctx context.Context, publish func(domain.Update)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if s.last == nil {
		s.last = &next
		return nil
	}
	diff := s.last.Diff(next)
	*s.last = next
	if !diff.Empty() && publish != nil {
		publish(diff)
	}
	return nil
}

func decodeMode(raw string) (string, error) {
	if _, err := domain.ParseMode(raw); err != nil {
		return "", err
	}
	return raw, nil
}

// storedField binds one preference key of a Store
type storedField[T any] struct {
	store    *Store
	key      string
	def      func() T
	decode   func(string) (T, error)
	encode   func(T) string
	update   func(T) domain.Update
	remember func(*domain.StoredPreferences, T)
}

// Key returns the preference key
func (f *storedField[T]) Key() string { return f.key }

// Get reads the value, falling back to the default for unset keys
func (f *storedField[T]) Get(ctx context.Context) (T, error) {
	raw, ok, err := f.store.backend.Get(ctx, f.key)
	if err != nil {
		var zero T
		return zero, domain.NewError(domain.ErrorTypeStorage, fmt.Sprintf("failed to read %s", f.key), err).
			WithContext("key", f.key)
	}
	if !ok {
		return f.def(), nil
	}
	value, err := f.decode(raw)
	if err != nil {
		var zero T
		return zero, domain.NewError(domain.ErrorTypeValidation, fmt.Sprintf("invalid stored %s", f.key), err).
			WithContext("key", f.key).
			WithContext("value", raw)
	}
	return value, nil
}

// Set writes the value and publishes it as an update. The publish happens
// under the store lock so updates reach subscribers in write order.
func (f *storedField[T]) Set(ctx context.Context, value T) error {
	raw := f.encode(value)
	if _, err := f.decode(raw); err != nil {
		return domain.NewError(domain.ErrorTypeValidation, fmt.Sprintf("invalid %s", f.key), err).
			WithContext("key", f.key).
			WithContext("value", raw)
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if err := f.store.backend.Set(ctx, f.key, raw); err != nil {
		return domain.NewError(domain.ErrorTypeStorage, fmt.Sprintf("failed to write %s", f.key), err).
			WithContext("key", f.key)
	}
	if f.store.last != nil {
		f.remember(f.store.last, value)
	}
	if f.store.publisher != nil {
		f.store.publisher.Publish(f.update(value))
	}
	return nil
}

var _ domain.PreferenceStore = (*Store)(nil)
