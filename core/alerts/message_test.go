package alerts

import "testing"

func TestParseMessageClassification(t *testing.T) {
	cases := map[string]MessageKind{
		`{"authresult":"true"}`:                   MessageAuthResult,
		`{"authresult":"false"}`:                  MessageAuthResult,
		`{"alert_image":"pic.gif"}`:               MessageAlert,
		`{"audio_panel_hook":"horn"}`:             MessageAlert,
		`{"query_id":"42","alert_image":"x.gif"}`: MessageQueryReply,
		`{"something":"else"}`:                    MessageUnrecognized,
		`{}`:                                      MessageUnrecognized,
	}

	for raw, want := range cases {
		message, err := ParseMessage([]byte(raw))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", raw, err)
		}
		if got := message.Kind(); got != want {
			t.Fatalf("%s: expected %s, got %s", raw, want, got)
		}
	}
}

func TestParseMessageRejectsMalformedPayload(t *testing.T) {
	for _, raw := range []string{``, `{`, `not json`, `{"alert_image": 5}`} {
		if _, err := ParseMessage([]byte(raw)); err == nil {
			t.Fatalf("%q: expected decode error", raw)
		}
	}
}

func TestMessageAuthenticated(t *testing.T) {
	ok, _ := ParseMessage([]byte(`{"authresult":"true"}`))
	failed, _ := ParseMessage([]byte(`{"authresult":"false"}`))

	if !ok.Authenticated() {
		t.Fatalf("expected authresult true to authenticate")
	}
	if failed.Authenticated() {
		t.Fatalf("expected authresult false to not authenticate")
	}
}

func TestMessageEventVariants(t *testing.T) {
	hookMessage, _ := ParseMessage([]byte(`{"audio_panel_hook":"horn"}`))
	event, ok := hookMessage.Event()
	if !ok {
		t.Fatalf("expected audio hook event")
	}
	hook, isHook := event.(AudioHook)
	if !isHook || hook.Name != "horn" || hook.Kind() != KindAudioHook {
		t.Fatalf("expected audio hook %q, got %#v", "horn", event)
	}
	if hook.ID() == "" {
		t.Fatalf("expected event id to be assigned")
	}

	visualMessage, _ := ParseMessage([]byte(`{"alert_image":"clip.mp4,5"}`))
	event, ok = visualMessage.Event()
	if !ok {
		t.Fatalf("expected visual alert event")
	}
	visual, isVisual := event.(VisualAlert)
	if !isVisual || visual.Spec != "clip.mp4,5" || visual.Kind() != KindVisualAlert {
		t.Fatalf("expected visual alert %q, got %#v", "clip.mp4,5", event)
	}
}

func TestMessageWithBothAlertFieldsIsVisual(t *testing.T) {
	message, _ := ParseMessage([]byte(`{"alert_image":"a.gif","audio_panel_hook":"horn"}`))

	event, ok := message.Event()
	if !ok {
		t.Fatalf("expected event")
	}
	if event.Kind() != KindVisualAlert {
		t.Fatalf("expected visual alert to win, got %s", event.Kind())
	}
}

func TestNonAlertMessagesHaveNoEvent(t *testing.T) {
	for _, raw := range []string{`{"authresult":"true"}`, `{"query_id":1,"audio_panel_hook":"x"}`, `{"other":1}`} {
		message, _ := ParseMessage([]byte(raw))
		if _, ok := message.Event(); ok {
			t.Fatalf("%s: expected no event", raw)
		}
	}
}
