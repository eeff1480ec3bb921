package alerts

import (
	"encoding/json"
	"fmt"
)

type MessageKind int

const (
	MessageUnrecognized MessageKind = iota
	MessageQueryReply
	MessageAuthResult
	MessageAlert
)

func (k MessageKind) String() string {
	switch k {
	case MessageQueryReply:
		return "query_reply"
	case MessageAuthResult:
		return "auth_result"
	case MessageAlert:
		return "alert"
	default:
		return "unrecognized"
	}
}

// Message is an inbound message from the alert socket. Fields are pointers
// so presence can be told apart from empty values.
type Message struct {
	QueryID        json.RawMessage `json:"query_id,omitempty" jsonschema:"description=Present on replies to panel queries; such messages are ignored"`
	AuthResult     *string         `json:"authresult,omitempty" jsonschema:"description=Outcome of the authenticate handshake,enum=true,enum=false"`
	AlertImage     *string         `json:"alert_image,omitempty" jsonschema:"description=Visual alert descriptor of the form file[ seconds[ volume[ style]]] joined by commas"`
	AudioPanelHook *string         `json:"audio_panel_hook,omitempty" jsonschema:"description=Name of the audio hook to play"`
}

// Authenticate is the handshake sent once per opened connection.
type Authenticate struct {
	Token string `json:"authenticate"`
}

// ParseMessage decodes a raw socket payload.
func ParseMessage(raw []byte) (Message, error) {
	var message Message
	if err := json.Unmarshal(raw, &message); err != nil {
		return Message{}, fmt.Errorf("failed to decode socket message: %w", err)
	}

	return message, nil
}

func (m Message) Kind() MessageKind {
	switch {
	case m.QueryID != nil:
		return MessageQueryReply
	case m.AuthResult != nil:
		return MessageAuthResult
	case m.AlertImage != nil || m.AudioPanelHook != nil:
		return MessageAlert
	default:
		return MessageUnrecognized
	}
}

// Authenticated reports whether an auth result message signals success.
func (m Message) Authenticated() bool {
	return m.AuthResult != nil && *m.AuthResult == "true"
}

// Event converts an alert message to its event. A message carrying both
// alert fields is treated as a visual alert.
func (m Message) Event() (Event, bool) {
	switch {
	case m.Kind() != MessageAlert:
		return nil, false
	case m.AlertImage != nil:
		return NewVisualAlert(*m.AlertImage), true
	default:
		return NewAudioHook(*m.AudioPanelHook), true
	}
}
