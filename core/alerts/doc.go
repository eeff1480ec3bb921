// Package alerts defines the alert events handled by the relay and the wire
// messages they arrive in.
//
// An alert is exactly one of:
//
//   - AudioHook (audio_hook): a short sound identified by name, sent as
//     {"audio_panel_hook": "<name>"}.
//   - VisualAlert (visual_alert): an image or video with a companion sound,
//     sent as {"alert_image": "<file>[,<seconds>[,<volume>[,<style>]]]"}.
//
// Other inbound messages are authentication results ({"authresult": "true"})
// and replies to panel queries (anything carrying "query_id"); neither of
// them is an alert.
package alerts
