package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFallsBackToDefault(t *testing.T) {
	options := New(map[string]string{AllowAlerts: "false"})

	assert.Equal(t, "false", options.Get(AllowAlerts, DefaultAllowAlerts))
	assert.Equal(t, DefaultAllowAudioHooks, options.Get(AllowAudioHooks, DefaultAllowAudioHooks))
	assert.Equal(t, "x", options.Get("unknown", "x"))
}

func TestNewCapturesValues(t *testing.T) {
	values := map[string]string{AllowAlerts: "true"}
	options := New(values)

	values[AllowAlerts] = "false"
	values[AllowAudioHooks] = "true"

	assert.True(t, options.AlertsAllowed())
	assert.False(t, options.AudioHooksAllowed())
	assert.Equal(t, 1, options.Len())
}

func TestParseQuery(t *testing.T) {
	options := ParseQuery("?allow-audio-hooks=true&gif-default-volume=0.5&=orphan&empty=&flag&url=a=b")

	require.Equal(t, 3, options.Len())
	assert.True(t, options.AudioHooksAllowed())
	assert.InDelta(t, 0.5, options.GifDefaultVolume(), 1e-9)
	assert.Equal(t, "a=b", options.Get("url", ""))
	assert.Equal(t, "def", options.Get("empty", "def"))
	assert.Equal(t, "def", options.Get("flag", "def"))
}

func TestParseQueryEmpty(t *testing.T) {
	options := ParseQuery("")

	assert.Equal(t, 0, options.Len())
	assert.True(t, options.AlertsAllowed())
	assert.False(t, options.AudioHooksAllowed())
	assert.InDelta(t, 1.0, options.AudioHookVolume(), 1e-9)
	assert.InDelta(t, 0.8, options.GifDefaultVolume(), 1e-9)
}

func TestBoolRequiresExactTrue(t *testing.T) {
	options := New(map[string]string{"a": "TRUE", "b": "1", "c": "true"})

	assert.False(t, options.Bool("a", true))
	assert.False(t, options.Bool("b", true))
	assert.True(t, options.Bool("c", false))
	assert.True(t, options.Bool("missing", true))
}

func TestFloatFallsBackOnGarbage(t *testing.T) {
	options := New(map[string]string{AudioHookVolume: "loud"})

	assert.InDelta(t, 1.0, options.AudioHookVolume(), 1e-9)
}

func TestMergePrefersOther(t *testing.T) {
	base := ParseQuery("allow-alerts=false&audio-hook-volume=0.3")
	override := New(map[string]string{AllowAlerts: "true"})

	merged := base.Merge(override)

	assert.True(t, merged.AlertsAllowed())
	assert.InDelta(t, 0.3, merged.AudioHookVolume(), 1e-9)
	assert.False(t, base.AlertsAllowed())
}
