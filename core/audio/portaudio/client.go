package portaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/alert-relay/core/assets"
	"github.com/koscakluka/alert-relay/core/audio"
	"github.com/koscakluka/alert-relay/core/audio/decode"
	"github.com/koscakluka/alert-relay/core/media"
)

// Player writes alert clips to a blocking PortAudio output stream. Only one
// clip plays at a time, a new Play takes over the stream.
type Player struct {
	bufferSize int
	stream     *portaudio.Stream
	source     assets.Source
	encoding   audio.EncodingInfo

	out []int16

	mu      sync.Mutex
	writeMu sync.Mutex
	current *playback
}

func NewPlayer(source assets.Source, bufferSize int) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	encoding := audio.GetDefaultEncodingInfo()
	out := make([]int16, bufferSize*encoding.Channels)
	stream, err := portaudio.OpenDefaultStream(0, encoding.Channels, float64(encoding.SampleRate), bufferSize, out)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open PortAudio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	return &Player{
		bufferSize: bufferSize,
		stream:     stream,
		source:     source,
		encoding:   encoding,
		out:        out,
	}, nil
}

func (p *Player) Close() {
	p.mu.Lock()
	if p.current != nil {
		p.current.Pause()
	}
	p.mu.Unlock()

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.stream.Stop()
	_ = p.stream.Close()
	_ = portaudio.Terminate()
}

func (p *Player) Play(ctx context.Context, clip media.Clip, onEnded func()) (media.Playback, error) {
	ctx, span := tracer.Start(ctx, "play clip")
	defer span.End()

	pcm, err := decode.Load(ctx, p.source, clip.Path, clip.Volume, p.encoding)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	pb := &playback{samples: pcm.Samples, onEnded: onEnded}

	p.mu.Lock()
	if p.current != nil {
		p.current.Pause()
	}
	p.current = pb
	p.mu.Unlock()

	go p.write(pb)
	return pb, nil
}

func (p *Player) write(pb *playback) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	for {
		n, stopped := pb.next(p.out)
		if stopped {
			return
		}
		if n == 0 {
			pb.onEnded()
			return
		}

		clear(p.out[n:])
		if err := p.stream.Write(); err != nil {
			logger.Warn("Failed to write to PortAudio stream", "error", err)
		}
	}
}

type playback struct {
	mu      sync.Mutex
	samples []int16
	pos     int
	paused  bool
	onEnded func()
}

// next copies the following samples into out. stopped is set once the
// playback was paused.
func (pb *playback) next(out []int16) (n int, stopped bool) {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	if pb.paused {
		return 0, true
	}

	n = copy(out, pb.samples[pb.pos:])
	pb.pos += n
	return n, false
}

func (pb *playback) Pause() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.paused = true
}

func (pb *playback) Rewind() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.pos = 0
}
