package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobal(t *testing.T) {
	t.Helper()
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
}

func lines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestInit_JSONCarriesServiceAndComponent(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	Init(Options{Service: "giveaway-bot", Format: "json", Out: &buf})

	Component("registry").Info().Str("giveaway_id", "m1").Msg("Giveaway created")

	entries := lines(&buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "Logger initialized", entries[0]["message"])
	assert.Equal(t, "json", entries[0]["format"])

	e := entries[1]
	assert.Equal(t, "giveaway-bot", e["service"])
	assert.Equal(t, "registry", e["component"])
	assert.Equal(t, "m1", e["giveaway_id"])
	assert.Equal(t, "info", e["level"])
	assert.Contains(t, e, "timestamp")
}

func TestInit_DebugLevelSwitch(t *testing.T) {
	restoreGlobal(t)

	var quiet bytes.Buffer
	Init(Options{Service: "svc", Format: "json", Out: &quiet})
	Debug().Msg("hidden")
	assert.NotContains(t, quiet.String(), "hidden")

	var verbose bytes.Buffer
	Init(Options{Service: "svc", Debug: true, Format: "json", Out: &verbose})
	Component("setup").Debug().Msg("shown")
	assert.Contains(t, verbose.String(), "shown")
}

func TestInit_ConsoleIsDefault(t *testing.T) {
	restoreGlobal(t)
	var buf bytes.Buffer
	Init(Options{Service: "svc", Out: &buf})

	Component("bot").Warn().Msg("gateway disconnected")

	out := buf.String()
	assert.Contains(t, out, "| gateway disconnected")
	assert.Contains(t, out, "component:")
	assert.Empty(t, lines(&buf), "console output is not JSON")
}
