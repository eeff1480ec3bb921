package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const DefaultReconnectInterval = 5 * time.Second

// Socket is a gorilla/websocket Transport that redials at a fixed interval
// whenever the connection cannot be established or drops.
type Socket struct {
	endpoint string
	header   http.Header
	dialer   *websocket.Dialer
	clock    clockwork.Clock

	reconnectInterval time.Duration

	onOpen      func()
	onClose     func(error)
	onMessage   func([]byte)
	onReconnect func()

	state atomic.Int32

	connMu sync.Mutex
	conn   *websocket.Conn
}

type SocketOption func(*Socket)

func WithReconnectInterval(interval time.Duration) SocketOption {
	return func(s *Socket) {
		if interval > 0 {
			s.reconnectInterval = interval
		}
	}
}

func WithClock(clock clockwork.Clock) SocketOption {
	return func(s *Socket) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithDialer(dialer *websocket.Dialer) SocketOption {
	return func(s *Socket) {
		if dialer != nil {
			s.dialer = dialer
		}
	}
}

func WithHeader(header http.Header) SocketOption {
	return func(s *Socket) { s.header = header }
}

// WithReconnectCallback is called before every redial.
func WithReconnectCallback(callback func()) SocketOption {
	return func(s *Socket) {
		if callback != nil {
			s.onReconnect = callback
		}
	}
}

func NewSocket(endpoint string, opts ...SocketOption) *Socket {
	s := &Socket{
		endpoint:          endpoint,
		dialer:            websocket.DefaultDialer,
		clock:             clockwork.NewRealClock(),
		reconnectInterval: DefaultReconnectInterval,

		onOpen:      func() {},
		onClose:     func(error) {},
		onMessage:   func([]byte) {},
		onReconnect: func() {},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Socket) OnOpen(callback func()) {
	if callback != nil {
		s.onOpen = callback
	}
}

func (s *Socket) OnClose(callback func(error)) {
	if callback != nil {
		s.onClose = callback
	}
}

func (s *Socket) OnMessage(callback func([]byte)) {
	if callback != nil {
		s.onMessage = callback
	}
}

func (s *Socket) State() State {
	return State(s.state.Load())
}

func (s *Socket) setState(state State) {
	s.state.Store(int32(state))
}

// Open blocks, keeping the socket connected until ctx is done. Callbacks are
// registered before Open is called.
func (s *Socket) Open(ctx context.Context) error {
	defer s.setState(StateClosed)

	for {
		s.setState(StateConnecting)
		conn, _, err := s.dialer.DialContext(ctx, s.endpoint, s.header)
		if err != nil {
			s.setState(StateClosed)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WarnContext(ctx, "Failed to connect to the socket", "endpoint", s.endpoint, "error", err)
		} else {
			s.serve(ctx, conn)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(s.reconnectInterval):
			s.onReconnect()
		}
	}
}

// serve reads from conn until it fails or ctx is done.
func (s *Socket) serve(ctx context.Context, conn *websocket.Conn) {
	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	s.setState(StateOpen)
	s.onOpen()

	var readErr error
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			s.onMessage(msg)
		}
	}

	close(stop)
	s.connMu.Lock()
	s.conn = nil
	s.connMu.Unlock()
	_ = conn.Close()

	s.setState(StateClosed)
	if ctx.Err() != nil {
		return
	}
	s.onClose(readErr)
}

func (s *Socket) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode socket message: %w", err)
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write socket message: %w", err)
	}

	return nil
}
