package relay

import (
	"context"
	"path"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/koscakluka/alert-relay/core/alerts"
	"github.com/koscakluka/alert-relay/core/assets"
	"github.com/koscakluka/alert-relay/core/config"
	"github.com/koscakluka/alert-relay/core/media"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Outcome describes how an alert left the playback slot.
type Outcome string

const (
	OutcomePlayed       Outcome = "played"
	OutcomeDisabled     Outcome = "disabled"
	OutcomeMissingAsset Outcome = "missing_asset"
	OutcomeFailed       Outcome = "failed"
	OutcomeExpired      Outcome = "expired"
	OutcomeAborted      Outcome = "aborted"
)

// dispatcher renders one alert at a time. All methods and callbacks run on
// the coordinator loop; media and timer callbacks are posted back to it.
type dispatcher struct {
	options config.Options
	audio   *audioOutput
	surface media.Surface
	source  assets.Source
	clock   clockwork.Clock
	post    func(func())
	fade    time.Duration

	current *presentation
	// visible is the element currently on the surface, if any.
	visible string
}

type presentation struct {
	event     alerts.Event
	elementID string
	playback  media.Playback
	timer     clockwork.Timer
}

// Dispatch renders event and calls done exactly once when it is over.
func (d *dispatcher) Dispatch(ctx context.Context, event alerts.Event, done func(Outcome)) {
	switch event := event.(type) {
	case alerts.VisualAlert:
		d.playVisualAlert(ctx, event, done)
	case alerts.AudioHook:
		d.playAudioHook(ctx, event, done)
	default:
		logger.ErrorContext(ctx, "Unknown alert type", "alert.kind", string(event.Kind()))
		done(OutcomeFailed)
	}
}

func (d *dispatcher) playAudioHook(ctx context.Context, hook alerts.AudioHook, done func(Outcome)) {
	if !d.options.AudioHooksAllowed() {
		done(OutcomeDisabled)
		return
	}

	clipPath, err := assets.Resolve(assets.AudioHooksDir, hook.Name, assets.AudioHookExtensions, d.exists(ctx))
	if err != nil {
		logger.WarnContext(ctx, "Audio hook not found", "hook", hook.Name, "error", err)
		done(OutcomeMissingAsset)
		return
	}

	p := &presentation{event: hook}
	d.current = p

	clip := media.Clip{ID: hook.ID(), Path: clipPath, Volume: clampVolume(d.options.AudioHookVolume())}
	playback, err := d.audio.Play(ctx, clip, d.onLoop(func() {
		if d.current != p {
			return
		}
		p.playback.Rewind()
		d.current = nil
		done(OutcomePlayed)
	}))
	if err != nil {
		recordError(ctx, err)
		logger.ErrorContext(ctx, "Failed to play audio hook", "hook", hook.Name, "path", clipPath, "error", err)
		d.current = nil
		done(OutcomeFailed)
		return
	}
	p.playback = playback
}

func (d *dispatcher) playVisualAlert(ctx context.Context, alert alerts.VisualAlert, done func(Outcome)) {
	if !d.options.AlertsAllowed() {
		done(OutcomeDisabled)
		return
	}

	spec := alerts.ParseAssetSpec(alert.Spec, d.options.GifDefaultVolume())
	if spec.File == "" {
		logger.WarnContext(ctx, "Visual alert without a file", "spec", alert.Spec)
		done(OutcomeMissingAsset)
		return
	}

	element := media.Element{
		ID:     alert.ID(),
		Kind:   media.ElementImage,
		Source: path.Join(assets.AlertsDir, spec.File),
		Style:  spec.Style,
	}
	if spec.IsVideo() {
		element.Kind = media.ElementVideo
		element.Volume = spec.Volume
	}

	d.clearSurface(ctx)
	if err := d.surface.Show(ctx, element, d.fade); err != nil {
		recordError(ctx, err)
		logger.ErrorContext(ctx, "Failed to show visual alert", "file", spec.File, "error", err)
		done(OutcomeFailed)
		return
	}

	p := &presentation{event: alert, elementID: element.ID}
	d.current = p
	d.visible = element.ID

	p.timer = d.after(d.fade, func() {
		if d.current != p {
			return
		}
		trace.SpanFromContext(ctx).AddEvent("entrance finished")

		companion := media.Clip{
			ID:     alert.ID() + "-audio",
			Path:   path.Join(assets.AlertsDir, spec.CompanionAudio()),
			Volume: spec.Volume,
		}
		playback, err := d.audio.Play(ctx, companion, func() {})
		if err != nil {
			logger.WarnContext(ctx, "Failed to play visual alert audio", "path", companion.Path, "error", err)
		} else {
			p.playback = playback
		}

		p.timer = d.after(spec.Duration, func() {
			if d.current != p {
				return
			}
			trace.SpanFromContext(ctx).AddEvent("exit started")

			if err := d.surface.FadeOut(ctx, element.ID, d.fade); err != nil {
				logger.WarnContext(ctx, "Failed to fade out visual alert", "file", spec.File, "error", err)
			}

			p.timer = d.after(d.fade, func() {
				if d.current != p {
					return
				}
				d.release(ctx, p)
				done(OutcomePlayed)
			})
		})
	})
}

// Ready reports whether the output event renders on can take it now.
func (d *dispatcher) Ready(event alerts.Event) bool {
	switch event.(type) {
	case alerts.VisualAlert:
		if readiness, ok := d.surface.(media.Readiness); ok {
			return readiness.Ready()
		}
		return true
	case alerts.AudioHook:
		return d.audio.Ready()
	default:
		return true
	}
}

// Abort ends the current presentation early, leaving the surface empty.
func (d *dispatcher) Abort(ctx context.Context) {
	p := d.current
	if p == nil {
		return
	}

	if p.timer != nil {
		p.timer.Stop()
	}
	d.release(ctx, p)
}

// release takes p off the surface and stops its audio.
func (d *dispatcher) release(ctx context.Context, p *presentation) {
	if p.elementID != "" {
		d.removeElement(ctx, p.elementID)
	}
	if p.playback != nil {
		p.playback.Pause()
		p.playback.Rewind()
	}
	if d.current == p {
		d.current = nil
	}
}

// clearSurface removes a leftover element before a new one is shown.
func (d *dispatcher) clearSurface(ctx context.Context) {
	if d.visible != "" {
		d.removeElement(ctx, d.visible)
	}
}

func (d *dispatcher) removeElement(ctx context.Context, id string) {
	if err := d.surface.Remove(ctx, id); err != nil {
		logger.WarnContext(ctx, "Failed to remove visual alert", "element", id, "error", err)
	}
	if d.visible == id {
		d.visible = ""
	}
}

func (d *dispatcher) exists(ctx context.Context) func(string) bool {
	return func(name string) bool {
		return d.source != nil && d.source.Exists(ctx, name)
	}
}

// onLoop wraps callback so it runs on the coordinator loop.
func (d *dispatcher) onLoop(callback func()) func() {
	return func() { d.post(callback) }
}

// after runs callback on the loop once duration has passed.
func (d *dispatcher) after(duration time.Duration, callback func()) clockwork.Timer {
	if duration <= 0 {
		d.post(callback)
		return nil
	}

	return d.clock.AfterFunc(duration, func() { d.post(callback) })
}

func recordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func clampVolume(volume float64) float64 {
	return max(0, min(1, volume))
}

type noopSurface struct{}

func (noopSurface) Show(context.Context, media.Element, time.Duration) error { return nil }
func (noopSurface) FadeOut(context.Context, string, time.Duration) error     { return nil }
func (noopSurface) Remove(context.Context, string) error                     { return nil }
