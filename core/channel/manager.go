package channel

import (
	"context"

	"github.com/koscakluka/alert-relay/core/alerts"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Recorder observes channel activity. A nil Recorder is ignored.
type Recorder interface {
	MessageReceived(kind string)
	Connected()
	Disconnected()
}

// Manager authenticates on a Transport and hands alert events to a sink.
type Manager struct {
	transport Transport
	token     string
	sink      func(alerts.Event)
	recorder  Recorder

	baseContext context.Context
}

type ManagerOption func(*Manager)

func WithRecorder(recorder Recorder) ManagerOption {
	return func(m *Manager) { m.recorder = recorder }
}

// NewManager wires itself into transport's callbacks. sink receives every
// alert in arrival order, on the transport's read goroutine.
func NewManager(transport Transport, token string, sink func(alerts.Event), opts ...ManagerOption) *Manager {
	m := &Manager{
		transport:   transport,
		token:       token,
		sink:        sink,
		baseContext: context.Background(),
	}
	if m.sink == nil {
		m.sink = func(alerts.Event) {}
	}

	for _, opt := range opts {
		opt(m)
	}

	transport.OnOpen(m.handleOpen)
	transport.OnClose(m.handleClose)
	transport.OnMessage(m.HandleMessage)

	return m
}

// Run opens the transport and blocks until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	m.baseContext = ctx
	return m.transport.Open(ctx)
}

func (m *Manager) State() State {
	return m.transport.State()
}

// Send writes v to the socket. Failures are logged and v is dropped.
func (m *Manager) Send(v any) {
	if err := m.transport.Send(v); err != nil {
		logger.ErrorContext(m.baseContext, "Failed to send a message to the socket", "error", err)
	}
}

func (m *Manager) handleOpen() {
	logger.InfoContext(m.baseContext, "Successfully connected to the socket")
	if m.recorder != nil {
		m.recorder.Connected()
	}

	m.Send(alerts.Authenticate{Token: m.token})
}

func (m *Manager) handleClose(err error) {
	logger.ErrorContext(m.baseContext, "Disconnected from the socket", "error", err)
	if m.recorder != nil {
		m.recorder.Disconnected()
	}
}

// HandleMessage classifies a raw inbound payload. It never fails: broken and
// unknown payloads are logged and dropped.
func (m *Manager) HandleMessage(raw []byte) {
	ctx, span := tracer.Start(m.baseContext, "handle socket message")
	defer span.End()

	message, err := alerts.ParseMessage(raw)
	if err != nil {
		span.RecordError(err)
		logger.ErrorContext(ctx, "Failed to parse socket message", "message", string(raw), "error", err)
		m.record("malformed")
		return
	}

	kind := message.Kind()
	span.SetAttributes(attribute.String("message.kind", kind.String()))
	m.record(kind.String())

	switch kind {
	case alerts.MessageQueryReply:
		// replies to panel queries are not meant for the alert relay
	case alerts.MessageAuthResult:
		if message.Authenticated() {
			logger.InfoContext(ctx, "Successfully authenticated with the socket")
		} else {
			logger.ErrorContext(ctx, "Failed to authenticate with the socket")
		}
	case alerts.MessageAlert:
		event, _ := message.Event()
		span.AddEvent("alert received", trace.WithAttributes(
			attribute.String("alert.id", event.ID()),
			attribute.String("alert.kind", string(event.Kind())),
		))
		m.sink(event)
	default:
		logger.ErrorContext(ctx, "Failed to process message from socket", "message", string(raw))
	}
}

func (m *Manager) record(kind string) {
	if m.recorder != nil {
		m.recorder.MessageReceived(kind)
	}
}
