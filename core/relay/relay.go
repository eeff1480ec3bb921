// Package relay plays alerts one at a time.
//
// A Coordinator owns the alert queue and the playback state. Everything that
// touches them runs on the coordinator loop: alerts delivered from the
// socket, the periodic drain tick and media completion callbacks are all
// posted onto the loop and handled to completion one after another.
package relay

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/koscakluka/alert-relay/core/alerts"
	"github.com/koscakluka/alert-relay/core/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultDrainInterval = 500 * time.Millisecond
	DefaultFadeDuration  = 100 * time.Millisecond
)

// PlaybackState is true from the moment an alert is taken off the queue
// until its presentation has fully ended.
type PlaybackState struct {
	Active bool
}

type Coordinator struct {
	options config.Options
	clock   clockwork.Clock
	loop    *taskLoop

	queue      eventQueue
	playback   PlaybackState
	dispatcher *dispatcher
	current    *activeAlert
	generation uint64
	// holding is set while the head waits for its output to become ready.
	holding bool

	drainInterval time.Duration
	watchdog      time.Duration
	recorder      Recorder

	baseContext context.Context
}

type activeAlert struct {
	generation uint64
	event      alerts.Event
	span       trace.Span
	watchdog   clockwork.Timer
}

func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		options:       config.New(nil),
		clock:         clockwork.NewRealClock(),
		loop:          newTaskLoop(),
		drainInterval: DefaultDrainInterval,
		recorder:      noopRecorder{},
		baseContext:   context.Background(),
		dispatcher: &dispatcher{
			audio:   newAudioOutput(nil),
			surface: noopSurface{},
			fade:    DefaultFadeDuration,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.dispatcher.options = c.options
	c.dispatcher.clock = c.clock
	c.dispatcher.post = c.loop.Post

	return c
}

// Deliver queues event from any goroutine. It is the sink handed to the
// channel manager.
func (c *Coordinator) Deliver(event alerts.Event) {
	if event == nil {
		return
	}

	c.loop.Post(func() { c.Enqueue(event) })
}

// Enqueue appends event to the queue. Loop only.
func (c *Coordinator) Enqueue(event alerts.Event) {
	c.queue.Enqueue(event, c.clock.Now())
	c.recorder.QueueDepth(c.queue.Len())
	logger.DebugContext(c.baseContext, "Queued alert",
		"alert.id", event.ID(), "alert.kind", string(event.Kind()), "queue.depth", c.queue.Len())
}

// PeekHead returns the next alert without removing it. Loop only.
func (c *Coordinator) PeekHead() (alerts.Event, bool) {
	item, ok := c.queue.PeekHead()
	return item.event, ok
}

// Dequeue drops the head of the queue. Loop only, and only while no alert
// is playing.
func (c *Coordinator) Dequeue() {
	if c.playback.Active {
		return
	}

	c.queue.Dequeue()
	c.recorder.QueueDepth(c.queue.Len())
}

func (c *Coordinator) QueueLen() int {
	return c.queue.Len()
}

func (c *Coordinator) Playback() PlaybackState {
	return c.playback
}

// Tick hands the head of the queue to the dispatcher when nothing is playing
// and the head's output is ready. Loop only.
func (c *Coordinator) Tick(ctx context.Context) {
	if c.playback.Active {
		return
	}

	item, ok := c.queue.PeekHead()
	if !ok {
		return
	}

	if !c.dispatcher.Ready(item.event) {
		if !c.holding {
			logger.InfoContext(ctx, "Holding alerts until the output is ready",
				"alert.id", item.event.ID(), "queue.depth", c.queue.Len())
		}
		c.holding = true
		return
	}
	c.holding = false

	c.queue.Dequeue()
	c.recorder.QueueDepth(c.queue.Len())
	c.start(ctx, item)
}

func (c *Coordinator) start(ctx context.Context, item eventQueueItem) {
	c.generation++
	generation := c.generation
	event := item.event

	queuedTime := c.clock.Since(item.queuedAt).Seconds()
	ctx, span := tracer.Start(ctx, "play alert", trace.WithAttributes(
		attribute.String("alert.id", event.ID()),
		attribute.String("alert.kind", string(event.Kind())),
		attribute.Float64("alert.queued_time", queuedTime),
	))

	logger.InfoContext(ctx, "Processing alert", "alert.id", event.ID(), "alert.kind", string(event.Kind()))

	c.playback.Active = true
	c.current = &activeAlert{generation: generation, event: event, span: span}
	if c.watchdog > 0 {
		c.current.watchdog = c.clock.AfterFunc(c.watchdog, func() {
			c.loop.Post(func() { c.expire(ctx, generation) })
		})
	}
	c.recorder.AlertStarted(string(event.Kind()))

	c.dispatcher.Dispatch(ctx, event, func(outcome Outcome) {
		c.complete(generation, outcome)
	})
}

// complete releases the playback state. Completions of an alert that was
// already released are ignored.
func (c *Coordinator) complete(generation uint64, outcome Outcome) {
	current := c.current
	if current == nil || current.generation != generation {
		return
	}

	if current.watchdog != nil {
		current.watchdog.Stop()
	}
	current.span.SetAttributes(attribute.String("alert.outcome", string(outcome)))
	current.span.End()

	c.current = nil
	c.playback.Active = false
	c.recorder.AlertCompleted(string(current.event.Kind()), string(outcome))
}

func (c *Coordinator) expire(ctx context.Context, generation uint64) {
	if c.current == nil || c.current.generation != generation {
		return
	}

	logger.WarnContext(ctx, "Alert playback did not finish in time, releasing it",
		"alert.id", c.current.event.ID(), "watchdog", c.watchdog)
	c.dispatcher.Abort(ctx)
	c.complete(generation, OutcomeExpired)
}

// Run is the coordinator loop. It drains the queue every drain interval and
// runs posted work until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	c.baseContext = ctx
	ticker := c.clock.NewTicker(c.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.loop.RunPending()
			c.dispatcher.Abort(context.WithoutCancel(ctx))
			if c.current != nil {
				c.complete(c.current.generation, OutcomeAborted)
			}
			return ctx.Err()
		case <-c.loop.wake:
			c.loop.RunPending()
		case <-ticker.Chan():
			c.Tick(ctx)
		}
	}
}
