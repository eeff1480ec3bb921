// Package config resolves the launch options of an alert relay.
//
// Options are captured once at start-up and never change afterwards. A
// missing option is not an error; every lookup carries the default that is
// used in its place.
package config

import (
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
)

const (
	AllowAudioHooks  = "allow-audio-hooks"
	AudioHookVolume  = "audio-hook-volume"
	AllowAlerts      = "allow-alerts"
	GifDefaultVolume = "gif-default-volume"
)

const (
	DefaultAllowAudioHooks  = "false"
	DefaultAudioHookVolume  = "1"
	DefaultAllowAlerts      = "true"
	DefaultGifDefaultVolume = "0.8"
)

type Options struct {
	values map[string]string
}

// New captures values. Later changes to the passed map are not visible
// through the returned Options.
func New(values map[string]string) Options {
	captured := make(map[string]string, len(values))
	if err := copier.CopyWithOption(&captured, values, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, fall back to a plain copy
		for key, value := range values {
			captured[key] = value
		}
	}

	return Options{values: captured}
}

// ParseQuery reads options from a launch query string such as
// "?allow-alerts=false&gif-default-volume=0.5".
//
// Each part is split at its first "=". Parts with an empty key or an empty
// value are skipped. Values are taken verbatim.
func ParseQuery(query string) Options {
	values := map[string]string{}
	for _, part := range strings.Split(strings.TrimPrefix(query, "?"), "&") {
		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" || value == "" {
			continue
		}
		values[key] = value
	}

	return Options{values: values}
}

// Merge returns a new Options where values from other take precedence.
func (o Options) Merge(other Options) Options {
	merged := make(map[string]string, len(o.values)+len(other.values))
	for key, value := range o.values {
		merged[key] = value
	}
	for key, value := range other.values {
		merged[key] = value
	}

	return Options{values: merged}
}

// Get returns the configured value of option, or def when it is absent.
func (o Options) Get(option, def string) string {
	if value, ok := o.values[option]; ok {
		return value
	}

	return def
}

// Bool reports whether option is set to exactly "true". Any other configured
// value counts as false.
func (o Options) Bool(option string, def bool) bool {
	return o.Get(option, strconv.FormatBool(def)) == "true"
}

// Float parses option as a number. Unparsable values resolve to def.
func (o Options) Float(option string, def float64) float64 {
	value, ok := o.values[option]
	if !ok {
		return def
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return def
	}

	return parsed
}

func (o Options) Len() int {
	return len(o.values)
}

// AudioHooksAllowed reports the allow-audio-hooks option.
func (o Options) AudioHooksAllowed() bool {
	return o.Get(AllowAudioHooks, DefaultAllowAudioHooks) == "true"
}

// AlertsAllowed reports the allow-alerts option.
func (o Options) AlertsAllowed() bool {
	return o.Get(AllowAlerts, DefaultAllowAlerts) == "true"
}

func (o Options) AudioHookVolume() float64 {
	return o.Float(AudioHookVolume, 1)
}

func (o Options) GifDefaultVolume() float64 {
	return o.Float(GifDefaultVolume, 0.8)
}
