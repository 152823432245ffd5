// Package platform maps the host system onto browser-style platform names
package platform

import (
	"runtime"
	"strings"
)

// Mac is the platform name browsers report on macOS, Apple Silicon included
const Mac = "MacIntel"

// commandKey is U+2318 PLACE OF INTEREST SIGN
const commandKey = "⌘"

// Name returns the browser-style identifier for the running system
func Name() string {
	return nameFor(runtime.GOOS, runtime.GOARCH)
}

func nameFor(goos, goarch string) string {
	switch goos {
	case "darwin":
		return Mac
	case "windows":
		return "Win32"
	case "linux", "freebsd", "openbsd", "netbsd":
		title := strings.ToUpper(goos[:1]) + goos[1:]
		switch goarch {
		case "amd64":
			return title + " x86_64"
		case "arm64":
			return title + " aarch64"
		case "386":
			return title + " i686"
		default:
			return title + " " + goarch
		}
	default:
		return goos
	}
}

// Resolve returns override when set, otherwise the detected platform name
func Resolve(override string) string {
	if name := strings.TrimSpace(override); name != "" {
		return name
	}
	return Name()
}

// SuperKey returns the label of the dominant modifier key on platform
func SuperKey(platform string) string {
	if IsMac(platform) {
		return commandKey
	}
	return "Ctrl"
}

// IsMac reports whether platform is the macOS identifier
func IsMac(platform string) bool {
	return platform == Mac
}
