package relay

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/koscakluka/alert-relay/core/assets"
	"github.com/koscakluka/alert-relay/core/config"
	"github.com/koscakluka/alert-relay/core/media"
)

type CoordinatorOption func(*Coordinator)

func WithOptions(options config.Options) CoordinatorOption {
	return func(c *Coordinator) { c.options = options }
}

func WithAudioPlayer(player media.AudioPlayer) CoordinatorOption {
	return func(c *Coordinator) { c.dispatcher.audio.Set(player) }
}

func WithSurface(surface media.Surface) CoordinatorOption {
	return func(c *Coordinator) {
		if surface != nil {
			c.dispatcher.surface = surface
		}
	}
}

// WithAssetSource sets where audio hooks are probed for.
func WithAssetSource(source assets.Source) CoordinatorOption {
	return func(c *Coordinator) { c.dispatcher.source = source }
}

func WithClock(clock clockwork.Clock) CoordinatorOption {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func WithRecorder(recorder Recorder) CoordinatorOption {
	return func(c *Coordinator) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

func WithDrainInterval(interval time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if interval > 0 {
			c.drainInterval = interval
		}
	}
}

// WithFadeDuration sets the entrance and exit transition of visual alerts.
func WithFadeDuration(fade time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if fade >= 0 {
			c.dispatcher.fade = fade
		}
	}
}

// WithPlaybackWatchdog releases an alert that has not finished within
// timeout. Zero, the default, waits forever.
func WithPlaybackWatchdog(timeout time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if timeout >= 0 {
			c.watchdog = timeout
		}
	}
}

// Recorder observes queue and playback activity.
type Recorder interface {
	QueueDepth(depth int)
	AlertStarted(kind string)
	AlertCompleted(kind, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) QueueDepth(int)                {}
func (noopRecorder) AlertStarted(string)           {}
func (noopRecorder) AlertCompleted(string, string) {}
