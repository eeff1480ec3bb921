package decode

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/koscakluka/alert-relay/core/assets"

	"github.com/koscakluka/alert-relay/core/audio"
)

func TestDecodeRejectsUnsupportedExtension(t *testing.T) {
	_, err := Decode("audio-hooks/horn.aac", bytes.NewReader(nil))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestDecodeReportsBrokenMP3(t *testing.T) {
	_, err := Decode("horn.mp3", bytes.NewReader([]byte("definitely not an mp3")))
	if err == nil {
		t.Fatalf("expected error decoding garbage mp3")
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected decode error, not unsupported format")
	}
}

func TestScaleClampsVolume(t *testing.T) {
	pcm := &PCM{SampleRate: 8000, Channels: 1, Samples: []int16{1000, -1000}}

	pcm.Scale(0.5)
	if pcm.Samples[0] != 500 || pcm.Samples[1] != -500 {
		t.Fatalf("expected half volume samples, got %v", pcm.Samples)
	}

	pcm.Scale(3)
	if pcm.Samples[0] != 500 {
		t.Fatalf("expected volume above 1 to leave samples untouched, got %v", pcm.Samples)
	}

	pcm.Scale(-1)
	if pcm.Samples[0] != 0 || pcm.Samples[1] != 0 {
		t.Fatalf("expected negative volume to mute, got %v", pcm.Samples)
	}
}

func TestConvertMonoToStereoUpsample(t *testing.T) {
	pcm := &PCM{SampleRate: 1, Channels: 1, Samples: []int16{10, 20}}

	converted := pcm.Convert(audio.EncodingInfo{SampleRate: 2, Channels: 2, Format: audio.EncodingLinear16})

	want := []int16{10, 10, 10, 10, 20, 20, 20, 20}
	if len(converted.Samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(converted.Samples))
	}
	for i := range want {
		if converted.Samples[i] != want[i] {
			t.Fatalf("expected samples %v, got %v", want, converted.Samples)
		}
	}
}

func TestConvertKeepsMatchingClip(t *testing.T) {
	pcm := &PCM{SampleRate: 48000, Channels: 2, Samples: []int16{1, 2}}

	if converted := pcm.Convert(audio.GetDefaultEncodingInfo()); converted != pcm {
		t.Fatalf("expected matching clip to be returned as is")
	}
}

func TestBytesLittleEndian(t *testing.T) {
	pcm := &PCM{Samples: []int16{0x0102, -1}}

	if got := pcm.Bytes(); !bytes.Equal(got, []byte{0x02, 0x01, 0xFF, 0xFF}) {
		t.Fatalf("expected little endian bytes, got %v", got)
	}
}

func TestLoadPropagatesMissingAsset(t *testing.T) {
	source := assets.NewDir(t.TempDir())

	if _, err := Load(context.Background(), source, "gif-alerts/none.mp3", 1, audio.GetDefaultEncodingInfo()); err == nil {
		t.Fatalf("expected error for missing asset")
	}
}

func TestLoadRejectsUnsupportedAsset(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "horn.aac"), []byte("aac"), 0o644); err != nil {
		t.Fatalf("failed to write asset: %v", err)
	}

	_, err := Load(context.Background(), assets.NewDir(root), "horn.aac", 1, audio.GetDefaultEncodingInfo())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}
