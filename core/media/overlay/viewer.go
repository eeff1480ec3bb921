package overlay

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	viewerBufferSize  = 32
	viewerWriteWindow = 5 * time.Second
)

// viewer owns the writes to one browser connection.
type viewer struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newViewer(conn *websocket.Conn) *viewer {
	v := &viewer{
		conn:   conn,
		sendCh: make(chan []byte, viewerBufferSize),
		done:   make(chan struct{}),
	}
	go v.run()
	return v
}

func (v *viewer) run() {
	for {
		select {
		case msg := <-v.sendCh:
			v.conn.SetWriteDeadline(time.Now().Add(viewerWriteWindow))
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				v.conn.Close()
				return
			}
		case <-v.done:
			return
		}
	}
}

// send queues msg and reports false when the viewer is not keeping up.
func (v *viewer) send(msg []byte) bool {
	select {
	case v.sendCh <- msg:
		return true
	default:
		return false
	}
}

func (v *viewer) stop() {
	close(v.done)
	v.conn.Close()
}
