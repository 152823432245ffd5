// Package tui contains tests for theme system
package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultTheme(t *testing.T) {
	theme := NewDefaultTheme()

	assert.NotNil(t, theme)
	assert.NotEmpty(t, theme.colors)
	assert.NotEmpty(t, theme.styles)

	essentialColors := []string{
		"primary", "secondary", "success", "warning", "error",
		"info", "foreground", "muted", "border", "highlight",
	}
	for _, color := range essentialColors {
		assert.NotEmpty(t, theme.GetColor(color), "Color %s should be defined", color)
	}
}

func TestDefaultTheme_GetColor(t *testing.T) {
	theme := NewDefaultTheme()

	assert.Equal(t, "62", theme.GetColor("primary"))
	assert.Equal(t, theme.GetColor("foreground"), theme.GetColor("nonexistent"))
}

func TestDefaultTheme_SetColor(t *testing.T) {
	theme := NewDefaultTheme()

	theme.SetColor("custom", "123")
	assert.Equal(t, "123", theme.GetColor("custom"))

	theme.SetColor("primary", "456")
	assert.Equal(t, "456", theme.GetColor("primary"))
}

func TestDefaultTheme_GetStyle(t *testing.T) {
	theme := NewDefaultTheme()

	active := theme.GetStyle("label_active")
	assert.Equal(t, "62", active["background"])
	assert.Equal(t, "230", active["foreground"])
	assert.Equal(t, true, active["bold"])

	assert.Empty(t, theme.GetStyle("nonexistent"))
}

func TestDefaultTheme_GetLipglossStyle(t *testing.T) {
	theme := NewDefaultTheme()

	for _, element := range []string{"title", "heading", "label", "label_active", "kbd", "aside", "error"} {
		rendered := theme.GetLipglossStyle(element).Render("Test")
		assert.Contains(t, rendered, "Test", element)
	}
}

func TestThemeVariants(t *testing.T) {
	assert.Equal(t, "15", NewDarkTheme().GetColor("foreground"))
	assert.Equal(t, "0", NewLightTheme().GetColor("foreground"))
	assert.Equal(t, "4", NewLightTheme().GetColor("primary"))

	minimal := NewMinimalTheme()
	assert.NotContains(t, minimal.GetStyle("label_active"), "background")
	assert.Equal(t, true, minimal.GetStyle("label_active")["bold"])
}

func TestNewTheme(t *testing.T) {
	assert.Equal(t, NewDarkTheme().colors, NewTheme("dark").colors)
	assert.Equal(t, NewLightTheme().colors, NewTheme(" Light ").colors)
	assert.Equal(t, NewDefaultTheme().colors, NewTheme("unknown").colors)
}
