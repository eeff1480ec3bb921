package alerts

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDisplayDuration = 3 * time.Second
	CompanionAudioSuffix   = ".mp3"
)

// maxSeconds is the longest display duration that fits a time.Duration.
const maxSeconds = math.MaxInt64 / int64(time.Second)

var videoFile = regexp.MustCompile(`\.(webm|mp4|ogg)$`)

// AssetSpec is the parsed form of a visual alert descriptor.
type AssetSpec struct {
	File     string
	Duration time.Duration
	Volume   float64
	Style    string
}

// ParseAssetSpec parses "file[,seconds[,volume[,style]]]".
//
// Optional fields are only read when the descriptor contains a comma. A
// duration without leading digits resolves to zero, a volume that is not a
// number resolves to defaultVolume. Volumes are clamped to [0, 1]. Fields past
// the style are ignored.
func ParseAssetSpec(raw string, defaultVolume float64) AssetSpec {
	spec := AssetSpec{
		File:     raw,
		Duration: DefaultDisplayDuration,
		Volume:   clampVolume(defaultVolume),
	}

	if !strings.Contains(raw, ",") {
		return spec
	}

	for i, field := range strings.Split(raw, ",") {
		switch i {
		case 0:
			spec.File = field
		case 1:
			spec.Duration = time.Duration(min(leadingInt(field), maxSeconds)) * time.Second
		case 2:
			if volume, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err == nil {
				spec.Volume = clampVolume(volume)
			}
		case 3:
			spec.Style = field
		}
	}

	return spec
}

// IsVideo reports whether the file is rendered as a video element.
func (s AssetSpec) IsVideo() bool {
	return videoFile.MatchString(s.File)
}

// CompanionAudio names the sound played along the visual: everything before
// the first "." of the file, with an .mp3 suffix.
func (s AssetSpec) CompanionAudio() string {
	base, _, _ := strings.Cut(s.File, ".")
	return base + CompanionAudioSuffix
}

// leadingInt parses an optionally signed run of digits at the start of s,
// ignoring surrounding whitespace. Anything else yields 0, values too large
// for an int64 saturate.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	value, err := strconv.ParseInt(s[:end], 10, 64)
	if errors.Is(err, strconv.ErrRange) && value > 0 {
		return math.MaxInt64
	}
	if err != nil || value < 0 {
		return 0
	}

	return value
}

func clampVolume(volume float64) float64 {
	switch {
	case volume < 0:
		return 0
	case volume > 1:
		return 1
	default:
		return volume
	}
}
