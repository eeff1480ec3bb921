// Package media describes the playback capabilities the relay renders alerts
// with: an audio player and a display surface holding one element at a time.
package media

import (
	"context"
	"time"
)

// Clip is a sound to play. Path is relative to the asset root.
type Clip struct {
	ID     string
	Path   string
	Volume float64
}

// Playback controls a clip started by an AudioPlayer.
type Playback interface {
	// Pause halts the clip without firing its ended callback.
	Pause()
	// Rewind moves the play position back to the start.
	Rewind()
}

type AudioPlayer interface {
	// Play starts clip and calls onEnded once it reaches its natural end.
	// onEnded may run on any goroutine.
	Play(ctx context.Context, clip Clip, onEnded func()) (Playback, error)
}

type ElementKind string

const (
	ElementImage ElementKind = "image"
	ElementVideo ElementKind = "video"
)

// Element is a visual placed on a Surface. Volume only applies to videos.
type Element struct {
	ID     string
	Kind   ElementKind
	Source string
	Style  string
	Volume float64
}

// Surface is the single render target of the relay. Transitions are
// requested with their duration; callers time their completion themselves.
type Surface interface {
	Show(ctx context.Context, element Element, fadeIn time.Duration) error
	FadeOut(ctx context.Context, id string, fadeOut time.Duration) error
	Remove(ctx context.Context, id string) error
}

// Readiness is implemented by players and surfaces that can be temporarily
// unable to render, such as a browser overlay nobody has opened yet. Alerts
// wait in the queue until their target is ready.
type Readiness interface {
	Ready() bool
}
