// Package decode turns alert sound files into 16-bit PCM ready for an output
// device.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/koscakluka/alert-relay/core/audio"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// PCM holds interleaved signed 16-bit samples.
type PCM struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Decode reads a whole clip, picking the decoder by the extension of name.
func Decode(name string, r io.Reader) (*PCM, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return decodeMP3(r)
	case ".ogg":
		return decodeVorbis(r)
	default:
		return nil, fmt.Errorf("%s: %w", path.Ext(name), ErrUnsupportedFormat)
	}
}

func decodeMP3(r io.Reader) (*PCM, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open mp3 stream: %w", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3 stream: %w", err)
	}

	// go-mp3 always produces little endian 16-bit stereo
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}

	return &PCM{SampleRate: decoder.SampleRate(), Channels: 2, Samples: samples}, nil
}

func decodeVorbis(r io.Reader) (*PCM, error) {
	floats, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ogg stream: %w", err)
	}

	samples := make([]int16, len(floats))
	for i, sample := range floats {
		samples[i] = floatToInt16(float64(sample))
	}

	return &PCM{SampleRate: format.SampleRate, Channels: format.Channels, Samples: samples}, nil
}

// Frames is the number of samples per channel.
func (p *PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Scale multiplies every sample by volume, clamped to [0, 1].
func (p *PCM) Scale(volume float64) {
	volume = math.Max(0, math.Min(1, volume))
	if volume == 1 {
		return
	}

	for i, sample := range p.Samples {
		p.Samples[i] = int16(float64(sample) * volume)
	}
}

// Convert returns the clip resampled (nearest neighbour) and remixed to match
// info.
func (p *PCM) Convert(info audio.EncodingInfo) *PCM {
	if info.IsZero() || (p.SampleRate == info.SampleRate && p.Channels == info.Channels) {
		return p
	}

	inFrames := p.Frames()
	if inFrames == 0 || p.SampleRate == 0 {
		return &PCM{SampleRate: info.SampleRate, Channels: info.Channels}
	}

	outFrames := int(int64(inFrames) * int64(info.SampleRate) / int64(p.SampleRate))
	out := make([]int16, outFrames*info.Channels)
	for frame := range outFrames {
		source := int(int64(frame) * int64(p.SampleRate) / int64(info.SampleRate))
		if source >= inFrames {
			source = inFrames - 1
		}
		for channel := range info.Channels {
			out[frame*info.Channels+channel] = p.sample(source, channel)
		}
	}

	return &PCM{SampleRate: info.SampleRate, Channels: info.Channels, Samples: out}
}

// sample reads channel of frame, folding extra output channels onto the
// available input channels.
func (p *PCM) sample(frame, channel int) int16 {
	if p.Channels == 1 {
		return p.Samples[frame]
	}
	if channel >= p.Channels {
		channel = p.Channels - 1
	}
	return p.Samples[frame*p.Channels+channel]
}

// Bytes encodes the samples as little endian linear16.
func (p *PCM) Bytes() []byte {
	raw := make([]byte, len(p.Samples)*2)
	for i, sample := range p.Samples {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(sample))
	}
	return raw
}

func floatToInt16(sample float64) int16 {
	sample = math.Max(-1, math.Min(1, sample))
	return int16(sample * math.MaxInt16)
}
