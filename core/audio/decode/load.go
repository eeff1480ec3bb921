package decode

import (
	"context"
	"fmt"

	"github.com/koscakluka/alert-relay/core/assets"
	"github.com/koscakluka/alert-relay/core/audio"
)

// Load opens name from source and returns it decoded, converted to encoding
// and scaled to volume.
func Load(ctx context.Context, source assets.Source, name string, volume float64, encoding audio.EncodingInfo) (*PCM, error) {
	reader, err := source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	pcm, err := Decode(name, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", name, err)
	}

	pcm = pcm.Convert(encoding)
	pcm.Scale(volume)
	return pcm, nil
}
