package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/google/uuid"
	"github.com/koscakluka/alert-relay/core/assets"
	"github.com/koscakluka/alert-relay/core/audio"
	"github.com/koscakluka/alert-relay/core/audio/decode"
	"github.com/koscakluka/alert-relay/core/media"
)

// Player plays alert clips on the default output device.
type Player struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	source       assets.Source
	playbackClient
}

func NewPlayer(source assets.Source) (*Player, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) { logger.Debug("malgo", "message", message) },
	)
	if err != nil {
		return nil, fmt.Errorf("malgo InitContext failed: %w", err)
	}

	player := Player{
		audioContext: audioCtx,
		source:       source,
	}

	if err := player.playbackClient.Init(audioCtx, audio.GetDefaultEncodingInfo()); err != nil {
		player.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	if err := player.playbackClient.Start(); err != nil {
		player.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return &player, nil
}

func (p *Player) Close() {
	_ = p.playbackClient.Uninit()
	_ = p.audioContext.Uninit()
	p.audioContext.Free()
}

// Play decodes clip from the asset source and replaces whatever is playing.
func (p *Player) Play(ctx context.Context, clip media.Clip, onEnded func()) (media.Playback, error) {
	ctx, span := tracer.Start(ctx, "play clip")
	defer span.End()

	pcm, err := decode.Load(ctx, p.source, clip.Path, clip.Volume, p.playbackClient.encoding)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if clip.ID == "" {
		clip.ID = uuid.NewString()
	}

	return p.playbackClient.Play(clip.ID, pcm.Bytes(), onEnded)
}
