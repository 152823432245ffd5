// Package tui contains theme system for the TUI
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tabgroups/tabgroups/internal/domain"
)

// ThemeNames lists the themes accepted by the ui.theme setting
var ThemeNames = []string{"default", "dark", "light", "minimal"}

// DefaultTheme implements the domain.Theme interface
type DefaultTheme struct {
	colors map[string]string
	styles map[string]map[string]interface{}
}

// NewDefaultTheme creates a new default theme
func NewDefaultTheme() *DefaultTheme {
	colors := map[string]string{
		"primary":    "62",  // Blue
		"secondary":  "205", // Pink
		"success":    "46",  // Green
		"warning":    "226", // Yellow
		"error":      "196", // Red
		"info":       "39",  // Light Blue
		"foreground": "252", // Light Gray
		"muted":      "243", // Medium Gray
		"border":     "240", // Border Gray
		"highlight":  "230", // White
	}
	return newTheme(colors)
}

// NewDarkTheme creates a dark theme variant
func NewDarkTheme() *DefaultTheme {
	t := NewDefaultTheme()
	t.colors["foreground"] = "15"
	t.colors["muted"] = "8"
	t.colors["border"] = "8"
	return newTheme(t.colors)
}

// NewLightTheme creates a light theme variant
func NewLightTheme() *DefaultTheme {
	t := NewDefaultTheme()
	t.colors["foreground"] = "0"
	t.colors["muted"] = "8"
	t.colors["border"] = "7"
	t.colors["primary"] = "4"
	t.colors["highlight"] = "0"
	return newTheme(t.colors)
}

// NewMinimalTheme creates a theme without colours
func NewMinimalTheme() *DefaultTheme {
	colors := map[string]string{}
	t := newTheme(colors)
	for name, style := range t.styles {
		delete(style, "foreground")
		delete(style, "background")
		delete(style, "border_foreground")
		t.styles[name] = style
	}
	return t
}

// NewTheme returns the theme called name, falling back to the default
func NewTheme(name string) *DefaultTheme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dark":
		return NewDarkTheme()
	case "light":
		return NewLightTheme()
	case "minimal":
		return NewMinimalTheme()
	default:
		return NewDefaultTheme()
	}
}

func newTheme(colors map[string]string) *DefaultTheme {
	styles := map[string]map[string]interface{}{
		"title": {
			"foreground": colors["secondary"],
			"bold":       true,
		},
		"heading": {
			"foreground": colors["info"],
			"bold":       true,
		},
		"label": {
			"foreground": colors["foreground"],
		},
		"label_active": {
			"foreground": colors["highlight"],
			"background": colors["primary"],
			"bold":       true,
		},
		"description": {
			"foreground": colors["muted"],
		},
		"kbd": {
			"foreground": colors["warning"],
			"bold":       true,
		},
		"aside": {
			"border":            "rounded",
			"border_foreground": colors["border"],
			"padding":           "0 1",
		},
		"error": {
			"foreground": colors["error"],
			"italic":     true,
		},
		"success": {
			"foreground": colors["success"],
		},
		"muted": {
			"foreground": colors["muted"],
			"italic":     true,
		},
	}

	return &DefaultTheme{
		colors: colors,
		styles: styles,
	}
}

// GetColor implements domain.Theme
func (t *DefaultTheme) GetColor(element string) string {
	if color, exists := t.colors[element]; exists {
		return color
	}
	return t.colors["foreground"]
}

// GetStyle implements domain.Theme
func (t *DefaultTheme) GetStyle(element string) map[string]interface{} {
	if style, exists := t.styles[element]; exists {
		return style
	}
	return make(map[string]interface{})
}

// SetColor implements domain.Theme
func (t *DefaultTheme) SetColor(element, color string) {
	t.colors[element] = color
}

// GetLipglossStyle returns a lipgloss.Style for the given element
func (t *DefaultTheme) GetLipglossStyle(element string) lipgloss.Style {
	return LipglossStyle(t, element)
}

// LipglossStyle converts a theme style map into a lipgloss.Style
func LipglossStyle(theme domain.Theme, element string) lipgloss.Style {
	style := lipgloss.NewStyle()
	styleMap := theme.GetStyle(element)

	if bg, ok := styleMap["background"].(string); ok && bg != "" {
		style = style.Background(lipgloss.Color(bg))
	}
	if fg, ok := styleMap["foreground"].(string); ok && fg != "" {
		style = style.Foreground(lipgloss.Color(fg))
	}
	if bold, ok := styleMap["bold"].(bool); ok && bold {
		style = style.Bold(true)
	}
	if italic, ok := styleMap["italic"].(bool); ok && italic {
		style = style.Italic(true)
	}
	if _, ok := styleMap["padding"].(string); ok {
		style = style.Padding(0, 1)
	}
	if border, ok := styleMap["border"].(string); ok {
		switch border {
		case "rounded":
			style = style.Border(lipgloss.RoundedBorder())
		case "normal":
			style = style.Border(lipgloss.NormalBorder())
		case "thick":
			style = style.Border(lipgloss.ThickBorder())
		}
	}
	if borderFg, ok := styleMap["border_foreground"].(string); ok && borderFg != "" {
		style = style.BorderForeground(lipgloss.Color(borderFg))
	}

	return style
}
