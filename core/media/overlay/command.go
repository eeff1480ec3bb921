package overlay

import "github.com/koscakluka/alert-relay/core/media"

type commandType string

const (
	commandShow    commandType = "show"
	commandFadeOut commandType = "fade_out"
	commandRemove  commandType = "remove"
	commandPlay    commandType = "play"
	commandPause   commandType = "pause"
	commandRewind  commandType = "rewind"
)

// command is sent to every connected viewer.
type command struct {
	Type   commandType       `json:"type"`
	ID     string            `json:"id"`
	Kind   media.ElementKind `json:"kind,omitempty"`
	Src    string            `json:"src,omitempty"`
	Style  string            `json:"style,omitempty"`
	Volume *float64          `json:"volume,omitempty"`
	FadeMS int64             `json:"fade_ms,omitempty"`
}

// report is what viewers send back.
type report struct {
	Ended string `json:"ended"`
}
