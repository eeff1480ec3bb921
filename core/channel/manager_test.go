package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/koscakluka/alert-relay/core/alerts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	onOpen    func()
	onClose   func(error)
	onMessage func([]byte)

	sent    []any
	sendErr error
	state   State
}

func (f *fakeTransport) Open(ctx context.Context) error {
	f.state = StateOpen
	f.onOpen()
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeTransport) Send(v any) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, v)
	return nil
}

func (f *fakeTransport) OnOpen(callback func())          { f.onOpen = callback }
func (f *fakeTransport) OnClose(callback func(error))    { f.onClose = callback }
func (f *fakeTransport) OnMessage(callback func([]byte)) { f.onMessage = callback }
func (f *fakeTransport) State() State                    { return f.state }

type countingRecorder struct {
	messages     map[string]int
	connected    int
	disconnected int
}

func (r *countingRecorder) MessageReceived(kind string) {
	if r.messages == nil {
		r.messages = map[string]int{}
	}
	r.messages[kind]++
}
func (r *countingRecorder) Connected()    { r.connected++ }
func (r *countingRecorder) Disconnected() { r.disconnected++ }

func newTestManager(t *testing.T) (*Manager, *fakeTransport, *[]alerts.Event) {
	t.Helper()

	transport := &fakeTransport{}
	received := []alerts.Event{}
	manager := NewManager(transport, "secret", func(event alerts.Event) {
		received = append(received, event)
	})

	return manager, transport, &received
}

func TestManagerAuthenticatesOnEveryOpen(t *testing.T) {
	_, transport, _ := newTestManager(t)

	transport.onOpen()
	transport.onClose(errors.New("dropped"))
	transport.onOpen()

	require.Len(t, transport.sent, 2)
	for _, sent := range transport.sent {
		assert.Equal(t, alerts.Authenticate{Token: "secret"}, sent)
	}
}

func TestManagerRunOpensTransport(t *testing.T) {
	manager, transport, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := manager.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateOpen, manager.State())
	assert.Len(t, transport.sent, 1)
}

func TestManagerSendFailureIsDropped(t *testing.T) {
	manager, transport, _ := newTestManager(t)
	transport.sendErr = ErrNotConnected

	assert.NotPanics(t, func() { manager.Send(map[string]string{"x": "y"}) })
	assert.Empty(t, transport.sent)
}

func TestManagerRoutesAlertsInOrder(t *testing.T) {
	_, transport, received := newTestManager(t)

	transport.onMessage([]byte(`{"alert_image":"a.gif"}`))
	transport.onMessage([]byte(`{"audio_panel_hook":"horn"}`))
	transport.onMessage([]byte(`{"alert_image":"b.mp4,5"}`))

	require.Len(t, *received, 3)
	assert.Equal(t, "a.gif", (*received)[0].(alerts.VisualAlert).Spec)
	assert.Equal(t, "horn", (*received)[1].(alerts.AudioHook).Name)
	assert.Equal(t, "b.mp4,5", (*received)[2].(alerts.VisualAlert).Spec)
}

func TestManagerDropsNonAlertMessages(t *testing.T) {
	_, transport, received := newTestManager(t)

	assert.NotPanics(t, func() {
		transport.onMessage([]byte(`{"authresult":"true"}`))
		transport.onMessage([]byte(`{"authresult":"false"}`))
		transport.onMessage([]byte(`{"query_id":"7","alert_image":"a.gif"}`))
		transport.onMessage([]byte(`{"unexpected":true}`))
		transport.onMessage([]byte(`{not json`))
		transport.onMessage(nil)
	})

	assert.Empty(t, *received)
}

func TestManagerRecordsActivity(t *testing.T) {
	transport := &fakeTransport{}
	recorder := &countingRecorder{}
	NewManager(transport, "secret", nil, WithRecorder(recorder))

	transport.onOpen()
	transport.onMessage([]byte(`{"alert_image":"a.gif"}`))
	transport.onMessage([]byte(`{"authresult":"true"}`))
	transport.onMessage([]byte(`garbage`))
	transport.onClose(nil)

	assert.Equal(t, 1, recorder.connected)
	assert.Equal(t, 1, recorder.disconnected)
	assert.Equal(t, map[string]int{"alert": 1, "auth_result": 1, "malformed": 1}, recorder.messages)
}
