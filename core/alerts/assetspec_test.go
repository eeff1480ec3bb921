package alerts

import (
	"testing"
	"time"
)

func TestParseAssetSpecWithAllFields(t *testing.T) {
	spec := ParseAssetSpec("clip.mp4,5,0.5,color:red", 0.8)

	if spec.File != "clip.mp4" {
		t.Fatalf("expected file %q, got %q", "clip.mp4", spec.File)
	}
	if spec.Duration != 5*time.Second {
		t.Fatalf("expected duration 5s, got %s", spec.Duration)
	}
	if spec.Volume != 0.5 {
		t.Fatalf("expected volume 0.5, got %v", spec.Volume)
	}
	if spec.Style != "color:red" {
		t.Fatalf("expected style %q, got %q", "color:red", spec.Style)
	}
	if !spec.IsVideo() {
		t.Fatalf("expected mp4 to render as video")
	}
	if got := spec.CompanionAudio(); got != "clip.mp3" {
		t.Fatalf("expected companion audio %q, got %q", "clip.mp3", got)
	}
}

func TestParseAssetSpecWithoutCommaUsesDefaults(t *testing.T) {
	spec := ParseAssetSpec("pic", 0.8)

	if spec.File != "pic" {
		t.Fatalf("expected file %q, got %q", "pic", spec.File)
	}
	if spec.Duration != 3*time.Second {
		t.Fatalf("expected default duration 3s, got %s", spec.Duration)
	}
	if spec.Volume != 0.8 {
		t.Fatalf("expected default volume 0.8, got %v", spec.Volume)
	}
	if spec.Style != "" {
		t.Fatalf("expected no style override, got %q", spec.Style)
	}
	if spec.IsVideo() {
		t.Fatalf("expected file without video extension to render as image")
	}
	if got := spec.CompanionAudio(); got != "pic.mp3" {
		t.Fatalf("expected companion audio %q, got %q", "pic.mp3", got)
	}
}

func TestParseAssetSpecPartialFields(t *testing.T) {
	spec := ParseAssetSpec("wave.gif,7", 0.4)

	if spec.Duration != 7*time.Second {
		t.Fatalf("expected duration 7s, got %s", spec.Duration)
	}
	if spec.Volume != 0.4 {
		t.Fatalf("expected default volume to remain 0.4, got %v", spec.Volume)
	}
	if spec.Style != "" {
		t.Fatalf("expected no style, got %q", spec.Style)
	}
}

func TestParseAssetSpecLenientNumbers(t *testing.T) {
	cases := []struct {
		raw      string
		duration time.Duration
		volume   float64
	}{
		{raw: "a.gif, 4s,0.2", duration: 4 * time.Second, volume: 0.2},
		{raw: "a.gif,abc,loud", duration: 0, volume: 0.8},
		{raw: "a.gif,-2,3", duration: 0, volume: 1},
		{raw: "a.gif,,-1", duration: 0, volume: 0},
	}

	for _, tc := range cases {
		spec := ParseAssetSpec(tc.raw, 0.8)
		if spec.Duration != tc.duration {
			t.Fatalf("%q: expected duration %s, got %s", tc.raw, tc.duration, spec.Duration)
		}
		if spec.Volume != tc.volume {
			t.Fatalf("%q: expected volume %v, got %v", tc.raw, tc.volume, spec.Volume)
		}
	}
}

func TestParseAssetSpecHugeDurationSaturates(t *testing.T) {
	longest := time.Duration(maxSeconds) * time.Second

	for _, raw := range []string{
		"a.gif,9300000000",
		"a.gif,99999999999999999999999",
	} {
		spec := ParseAssetSpec(raw, 0.8)
		if spec.Duration != longest {
			t.Fatalf("%q: expected duration to saturate at %s, got %s", raw, longest, spec.Duration)
		}
	}

	if spec := ParseAssetSpec("a.gif,-99999999999999999999999", 0.8); spec.Duration != 0 {
		t.Fatalf("expected huge negative duration to resolve to zero, got %s", spec.Duration)
	}
}

func TestAssetSpecVideoExtensions(t *testing.T) {
	for file, video := range map[string]bool{
		"a.webm":     true,
		"a.mp4":      true,
		"a.ogg":      true,
		"a.gif":      false,
		"a.png":      false,
		"a.MP4":      false,
		"a.mp4.gif":  false,
		"mp4":        false,
		"dir/a.webm": true,
	} {
		if got := (AssetSpec{File: file}).IsVideo(); got != video {
			t.Fatalf("%q: expected video=%v, got %v", file, video, got)
		}
	}
}

func TestCompanionAudioUsesFirstDot(t *testing.T) {
	if got := (AssetSpec{File: "party.final.gif"}).CompanionAudio(); got != "party.mp3" {
		t.Fatalf("expected companion audio %q, got %q", "party.mp3", got)
	}
}
