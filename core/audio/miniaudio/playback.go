package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/alert-relay/core/audio"
	"github.com/koscakluka/alert-relay/core/media"
)

type playbackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig
	encoding     audio.EncodingInfo

	current *stream

	mu       sync.Mutex
	streamMu sync.Mutex
}

// stream is one clip loaded into the device buffer.
type stream struct {
	client  *playbackClient
	id      string
	pcm     []byte
	pos     int
	paused  bool
	onEnded func()
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext, encoding audio.EncodingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.encoding = encoding
	sampleRate := uint32(encoding.SampleRate)
	format := malgo.FormatS16
	bytesPerFrame := encoding.BytesPerFrame()

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = sampleRate
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(encoding.Channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	c.config.Periods = 4

	c.audioContext = audioContext

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	); err != nil {
		return err
	}

	return nil
}

func (c *playbackClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) Play(id string, pcm []byte, onEnded func()) (media.Playback, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return nil, fmt.Errorf("device not initialized")
	} else if !c.device.IsStarted() {
		return nil, fmt.Errorf("device not started")
	}

	s := &stream{client: c, id: id, pcm: pcm, onEnded: onEnded}

	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	c.current = s
	return s, nil
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	c.device.Uninit()
	c.device = nil

	return nil
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := min(int(frameCount)*bytesPerFrame, len(pOutput))
		ended := c.fill(pOutput[:need])
		if ended != nil {
			go ended()
		}
	}
}

// fill copies the next chunk of the current stream into out and returns the
// stream's ended callback when the chunk was its last.
func (c *playbackClient) fill(out []byte) func() {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()

	s := c.current
	if s == nil || s.paused {
		clear(out)
		return nil
	}

	n := copy(out, s.pcm[s.pos:])
	clear(out[n:])
	s.pos += n

	if s.pos < len(s.pcm) {
		return nil
	}

	c.current = nil
	return s.onEnded
}

func (s *stream) Pause() {
	s.client.streamMu.Lock()
	defer s.client.streamMu.Unlock()
	s.paused = true
}

func (s *stream) Rewind() {
	s.client.streamMu.Lock()
	defer s.client.streamMu.Unlock()
	s.pos = 0
}
