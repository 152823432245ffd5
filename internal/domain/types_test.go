package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("AUTO")
	require.NoError(t, err)
	assert.Equal(t, ModeAutomatic, mode)

	mode, err = ParseMode("MAN")
	require.NoError(t, err)
	assert.Equal(t, ModeManual, mode)

	_, err = ParseMode("auto")
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = ParseMode("")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestParseModeName(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
	}{
		{"auto", ModeAutomatic},
		{"Automatic", ModeAutomatic},
		{" AUTO ", ModeAutomatic},
		{"manual", ModeManual},
		{"MAN", ModeManual},
		{"Manually", ModeManual},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseModeName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}

	_, err := ParseModeName("sometimes")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestModeKeyRoundTrip(t *testing.T) {
	for _, mode := range []Mode{ModeAutomatic, ModeManual} {
		parsed, err := ParseMode(mode.Key())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
		assert.True(t, mode.Valid())
	}

	var zero Mode
	assert.False(t, zero.Valid())
	assert.Empty(t, zero.Key())
	assert.Equal(t, "Unknown", zero.String())
	assert.Equal(t, "Automatically", ModeAutomatic.String())
	assert.Equal(t, "Manually", ModeManual.String())
}

func TestStoredPreferencesNormalisesMode(t *testing.T) {
	stored := StoredPreferences{Mode: "AUTO", Color: true, Title: false}

	prefs, err := stored.Preferences()
	require.NoError(t, err)
	assert.Equal(t, Preferences{Mode: ModeAutomatic, Color: true, Title: false}, prefs)
	assert.Equal(t, stored, prefs.Stored())

	prefs, err = StoredPreferences{Mode: "BOGUS", Color: true, Title: true}.Preferences()
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.True(t, prefs.Color)
	assert.True(t, prefs.Title)
	assert.False(t, prefs.Mode.Valid())
}

func TestPreferencesApply(t *testing.T) {
	base := Preferences{Mode: ModeAutomatic, Color: true, Title: false}

	t.Run("color only", func(t *testing.T) {
		next, err := base.Apply(ColorUpdate(false))
		require.NoError(t, err)
		assert.Equal(t, Preferences{Mode: ModeAutomatic, Color: false, Title: false}, next)
	})

	t.Run("mode only", func(t *testing.T) {
		next, err := base.Apply(ModeUpdate("MAN"))
		require.NoError(t, err)
		assert.Equal(t, Preferences{Mode: ModeManual, Color: true, Title: false}, next)
	})

	t.Run("all keys", func(t *testing.T) {
		mode, color, title := "MAN", false, true
		next, err := base.Apply(Update{Mode: &mode, Color: &color, Title: &title})
		require.NoError(t, err)
		assert.Equal(t, Preferences{Mode: ModeManual, Color: false, Title: true}, next)
	})

	t.Run("empty update", func(t *testing.T) {
		next, err := base.Apply(Update{})
		require.NoError(t, err)
		assert.Equal(t, base, next)
	})

	t.Run("unknown mode keeps other keys", func(t *testing.T) {
		mode, title := "SOMETIMES", true
		next, err := base.Apply(Update{Mode: &mode, Title: &title})
		assert.ErrorIs(t, err, ErrUnknownMode)
		assert.Equal(t, ModeAutomatic, next.Mode)
		assert.True(t, next.Title)
	})

	t.Run("apply is idempotent", func(t *testing.T) {
		once, err := base.Apply(ModeUpdate("MAN"))
		require.NoError(t, err)
		twice, err := once.Apply(ModeUpdate("MAN"))
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	})
}

func TestUpdateKeys(t *testing.T) {
	assert.True(t, Update{}.Empty())
	assert.Nil(t, Update{}.Keys())

	u := TitleUpdate(true)
	assert.False(t, u.Empty())
	assert.Equal(t, []string{KeyTitle}, u.Keys())

	mode, color := "AUTO", true
	u = Update{Mode: &mode, Color: &color}
	assert.Equal(t, []string{KeyMode, KeyColor}, u.Keys())
}

func TestStoredPreferencesDiff(t *testing.T) {
	prev := StoredPreferences{Mode: "AUTO", Color: true, Title: true}

	assert.True(t, prev.Diff(prev).Empty())

	u := prev.Diff(StoredPreferences{Mode: "MAN", Color: true, Title: false})
	require.NotNil(t, u.Mode)
	assert.Equal(t, "MAN", *u.Mode)
	assert.Nil(t, u.Color)
	require.NotNil(t, u.Title)
	assert.False(t, *u.Title)
}

func TestTabGroupsError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewError(ErrorTypeStorage, "failed to write preference", cause).
		WithContext("key", KeyColor)

	assert.Equal(t, "failed to write preference: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KeyColor, err.Context["key"])
	assert.False(t, err.Timestamp.IsZero())

	wrapped := fmt.Errorf("saving: %w", err)
	assert.True(t, IsErrorType(wrapped, ErrorTypeStorage))
	assert.False(t, IsErrorType(wrapped, ErrorTypeUI))
	assert.False(t, IsErrorType(cause, ErrorTypeStorage))

	noCause := NewError(ErrorTypeValidation, "bad value", nil)
	assert.Equal(t, "bad value", noCause.Error())
	assert.Equal(t, "validation", ErrorTypeValidation.String())
}
