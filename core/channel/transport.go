// Package channel owns the relay's single push connection: a reconnecting
// transport and the manager that authenticates on it and turns inbound
// messages into alert events.
package channel

import (
	"context"
	"errors"
)

type State int32

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

var ErrNotConnected = errors.New("socket not connected")

// Transport is a duplex message connection that keeps itself connected.
type Transport interface {
	// Open connects and keeps reconnecting until ctx is done.
	Open(ctx context.Context) error
	// Send serializes v and writes it to the current connection.
	Send(v any) error

	OnOpen(func())
	OnClose(func(error))
	OnMessage(func([]byte))

	State() State
}
