// Package assets locates alert media under the relay's asset root.
package assets

import (
	"errors"
	"path"
)

const (
	AudioHooksDir = "audio-hooks"
	AlertsDir     = "gif-alerts"
)

// AudioHookExtensions lists the suffixes probed for audio hooks, in order.
var AudioHookExtensions = []string{".mp3", ".aac", ".ogg"}

var ErrNotFound = errors.New("asset not found")

// Resolve returns dir/name+ext for the first ext that exists. Probing stops
// at the first hit.
func Resolve(dir, name string, exts []string, exists func(string) bool) (string, error) {
	for _, ext := range exts {
		candidate := path.Join(dir, name+ext)
		if exists(candidate) {
			return candidate, nil
		}
	}

	return "", ErrNotFound
}
