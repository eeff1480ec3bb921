package relay

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/koscakluka/alert-relay/core/alerts"
	"github.com/koscakluka/alert-relay/core/media"
)

type fakePlayback struct {
	pauses  int
	rewinds int
}

func (p *fakePlayback) Pause()  { p.pauses++ }
func (p *fakePlayback) Rewind() { p.rewinds++ }

type playedClip struct {
	clip     media.Clip
	onEnded  func()
	playback *fakePlayback
}

type fakePlayer struct {
	mu       sync.Mutex
	played   []*playedClip
	err      error
	notReady bool
}

func (p *fakePlayer) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.notReady
}

func (p *fakePlayer) setReady(ready bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notReady = !ready
}

func (p *fakePlayer) Play(_ context.Context, clip media.Clip, onEnded func()) (media.Playback, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}

	played := &playedClip{clip: clip, onEnded: onEnded, playback: &fakePlayback{}}
	p.played = append(p.played, played)
	return played.playback, nil
}

func (p *fakePlayer) clips() []*playedClip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*playedClip(nil), p.played...)
}

type surfaceCall struct {
	op      string
	element media.Element
	id      string
	fade    time.Duration
}

type fakeSurface struct {
	calls    []surfaceCall
	shown    map[string]bool
	showErr  error
	notReady bool
}

func (s *fakeSurface) Ready() bool { return !s.notReady }

func (s *fakeSurface) Show(_ context.Context, element media.Element, fade time.Duration) error {
	if s.showErr != nil {
		return s.showErr
	}
	if s.shown == nil {
		s.shown = map[string]bool{}
	}
	s.shown[element.ID] = true
	s.calls = append(s.calls, surfaceCall{op: "show", element: element, id: element.ID, fade: fade})
	return nil
}

func (s *fakeSurface) FadeOut(_ context.Context, id string, fade time.Duration) error {
	s.calls = append(s.calls, surfaceCall{op: "fade_out", id: id, fade: fade})
	return nil
}

func (s *fakeSurface) Remove(_ context.Context, id string) error {
	delete(s.shown, id)
	s.calls = append(s.calls, surfaceCall{op: "remove", id: id})
	return nil
}

func (s *fakeSurface) ops() []string {
	ops := make([]string, 0, len(s.calls))
	for _, call := range s.calls {
		ops = append(ops, call.op)
	}
	return ops
}

type fakeSource struct {
	existing map[string]bool
	probed   []string
}

func (s *fakeSource) Exists(_ context.Context, name string) bool {
	s.probed = append(s.probed, name)
	return s.existing[name]
}

func (s *fakeSource) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

type recordedOutcome struct {
	kind    string
	outcome string
}

type fakeRecorder struct {
	depths    []int
	started   []string
	completed []recordedOutcome
}

func (r *fakeRecorder) QueueDepth(depth int)     { r.depths = append(r.depths, depth) }
func (r *fakeRecorder) AlertStarted(kind string) { r.started = append(r.started, kind) }
func (r *fakeRecorder) AlertCompleted(kind, outcome string) {
	r.completed = append(r.completed, recordedOutcome{kind: kind, outcome: outcome})
}

type harness struct {
	coordinator *Coordinator
	clock       *clockwork.FakeClock
	player      *fakePlayer
	surface     *fakeSurface
	source      *fakeSource
	recorder    *fakeRecorder
}

func newHarness(t *testing.T, opts ...CoordinatorOption) *harness {
	t.Helper()

	h := &harness{
		clock:    clockwork.NewFakeClock(),
		player:   &fakePlayer{},
		surface:  &fakeSurface{},
		source:   &fakeSource{existing: map[string]bool{}},
		recorder: &fakeRecorder{},
	}

	base := []CoordinatorOption{
		WithClock(h.clock),
		WithAudioPlayer(h.player),
		WithSurface(h.surface),
		WithAssetSource(h.source),
		WithRecorder(h.recorder),
	}
	h.coordinator = NewCoordinator(append(base, opts...)...)

	return h
}

// deliver queues events the way the socket does and runs the posted work.
func (h *harness) deliver(events ...alerts.Event) {
	for _, event := range events {
		h.coordinator.Deliver(event)
	}
	h.coordinator.loop.RunPending()
}

// settle waits until timer callbacks have posted work to the loop and runs
// it.
func (h *harness) settle(t *testing.T) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-h.coordinator.loop.wake:
			if h.coordinator.loop.RunPending() > 0 {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for posted work")
		}
	}
}

// advance moves the fake clock and runs the work it triggered.
func (h *harness) advance(t *testing.T, d time.Duration) {
	t.Helper()

	h.clock.Advance(d)
	h.settle(t)
}

func (h *harness) tick() {
	h.coordinator.Tick(context.Background())
}
