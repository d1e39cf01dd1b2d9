// Package companion mirrors the signed in identity from the primary device
// to a companion device over a best effort message channel.
package companion

import (
	"context"
	"errors"
)

// Unknown is the companion identity before any payload arrives.
const Unknown = "unknown"

type MessageType string

const (
	MessageIdentity        MessageType = "identity"
	MessageRequestIdentity MessageType = "request_identity"
)

type Payload struct {
	Email string `json:"email"`
}

type Message struct {
	Type    MessageType `json:"type"`
	Payload Payload     `json:"payload"`
}

var ErrTransportClosed = errors.New("transport closed")

// Transport is the platform channel between the two devices. Delivery is
// in order per sender and at least once. Send does not wait for the peer.
type Transport interface {
	Activate(ctx context.Context) error
	CompanionInstalled(ctx context.Context) (bool, error)
	Send(ctx context.Context, msg Message) error
	Receive(ctx context.Context) (<-chan Message, error)
	ApplicationContext(ctx context.Context) (Payload, bool, error)
	UpdateApplicationContext(ctx context.Context, p Payload) error
	Close() error
}
