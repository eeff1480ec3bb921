package alerts

import (
	"github.com/google/uuid"
)

type Kind string

const (
	// KindAudioHook identifies sound-only alerts resolved by name.
	KindAudioHook Kind = "audio_hook"
	// KindVisualAlert identifies image or video alerts with a companion sound.
	KindVisualAlert Kind = "visual_alert"
)

type Event interface {
	Kind() Kind
	ID() string

	alertEvent()
}

type Base struct {
	kind Kind
	id   string
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, id: uuid.NewString()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) ID() string {
	return b.id
}

func (Base) alertEvent() {}

// AudioHook is a sound-only alert.
type AudioHook struct {
	Base
	Name string
}

// NewAudioHook creates an audio hook event for the named sound.
func NewAudioHook(name string) AudioHook {
	return AudioHook{Base: NewBase(KindAudioHook), Name: name}
}

// VisualAlert is an image or video alert described by a raw asset spec.
type VisualAlert struct {
	Base
	Spec string
}

// NewVisualAlert creates a visual alert event for the raw asset spec.
func NewVisualAlert(spec string) VisualAlert {
	return VisualAlert{Base: NewBase(KindVisualAlert), Spec: spec}
}
