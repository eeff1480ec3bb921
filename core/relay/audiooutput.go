package relay

import (
	"context"
	"reflect"

	"github.com/koscakluka/alert-relay/core/media"
)

// audioOutput wraps the configured media.AudioPlayer so dispatch code does
// not need to care whether one is configured.
//
// Without a player every clip counts as played: onEnded runs right away so
// the queue keeps draining.
type audioOutput struct {
	player media.AudioPlayer
}

func newAudioOutput(player media.AudioPlayer) *audioOutput {
	output := audioOutput{}
	output.Set(player)
	return &output
}

// Set replaces the player. Nil and typed-nil players are treated as
// unconfigured.
func (a *audioOutput) Set(player media.AudioPlayer) {
	if a == nil {
		return
	}

	a.player = nil
	if isNilAudioPlayer(player) {
		return
	}
	a.player = player
}

func (a *audioOutput) isConfigured() bool {
	return a != nil && a.player != nil
}

// Ready reports whether the player can take a clip now. An unconfigured
// output is always ready.
func (a *audioOutput) Ready() bool {
	if !a.isConfigured() {
		return true
	}
	if readiness, ok := a.player.(media.Readiness); ok {
		return readiness.Ready()
	}
	return true
}

// Play starts clip. With no player configured onEnded is invoked before
// returning and the returned playback is a no-op.
func (a *audioOutput) Play(ctx context.Context, clip media.Clip, onEnded func()) (media.Playback, error) {
	if !a.isConfigured() {
		onEnded()
		return noopPlayback{}, nil
	}

	playback, err := a.player.Play(ctx, clip, onEnded)
	if err != nil {
		return nil, err
	}
	if playback == nil {
		return noopPlayback{}, nil
	}

	return playback, nil
}

type noopPlayback struct{}

func (noopPlayback) Pause()  {}
func (noopPlayback) Rewind() {}

func isNilAudioPlayer(player media.AudioPlayer) bool {
	if player == nil {
		return true
	}

	v := reflect.ValueOf(player)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
