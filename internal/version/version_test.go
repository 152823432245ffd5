package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GitCommit)
	assert.NotEmpty(t, info.BuildTime)
	assert.NotEmpty(t, info.Platform)
	assert.Equal(t, []string{"file", "sqlite", "memory"}, info.Backends)
	assert.NotEmpty(t, info.SQLiteDriver)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:      "v1.2.0",
		GitCommit:    "abc1234",
		BuildTime:    "2026-01-02",
		GoVersion:    "go1.24",
		Platform:     "MacIntel",
		Backends:     []string{"file", "sqlite"},
		SQLiteDriver: "v1.39.1",
	}

	assert.Equal(t, "Tab Groups v1.2.0", info.String())

	detailed := info.Detailed()
	assert.Contains(t, detailed, "Tab Groups v1.2.0\n")
	assert.Contains(t, detailed, "Git Commit: abc1234")
	assert.Contains(t, detailed, "Build Time: 2026-01-02")
	assert.Contains(t, detailed, "Go Version: go1.24")
	assert.Contains(t, detailed, "Platform:   MacIntel")
	assert.Contains(t, detailed, "Backends:   file, sqlite (sqlite via modernc.org/sqlite v1.39.1)")
}

func TestDetailedWithoutDriverVersion(t *testing.T) {
	info := Info{Version: "dev", Backends: []string{"file", "memory"}, SQLiteDriver: unknown}

	assert.Contains(t, info.Detailed(), "Backends:   file, memory")
	assert.NotContains(t, info.Detailed(), "modernc.org/sqlite")
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "0123456", shortCommit("0123456789abcdef"))
	assert.Equal(t, "abc", shortCommit("abc"))
}
