package companion

import (
	"context"
	"errors"
	"sync"
)

const memoryInboxSize = 64

var ErrInboxFull = errors.New("peer inbox full")

type memoryHub struct {
	mu              sync.Mutex
	appContext      *Payload
	installed       bool
	installedChecks int
}

// MemoryTransport is an in process channel end. Both ends of a pair share
// the application context and the installed flag.
type MemoryTransport struct {
	hub       *memoryHub
	peer      *MemoryTransport
	companion bool

	// ActivateGate, when set, holds Activate until it is closed.
	ActivateGate chan struct{}
	// ActivateErr makes Activate fail.
	ActivateErr error
	// InstalledGate, when set, holds CompanionInstalled until it is closed.
	InstalledGate chan struct{}

	mu      sync.Mutex
	inbox   chan Message
	closed  bool
	sendErr error
	sent    []Message
}

// NewMemoryPair returns the primary and the companion ends of one channel.
func NewMemoryPair() (*MemoryTransport, *MemoryTransport) {
	hub := &memoryHub{}
	primary := &MemoryTransport{hub: hub, inbox: make(chan Message, memoryInboxSize)}
	companion := &MemoryTransport{hub: hub, inbox: make(chan Message, memoryInboxSize), companion: true}
	primary.peer = companion
	companion.peer = primary
	return primary, companion
}

func (t *MemoryTransport) Activate(ctx context.Context) error {
	if t.ActivateGate != nil {
		select {
		case <-t.ActivateGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if t.ActivateErr != nil {
		return t.ActivateErr
	}
	if t.companion {
		t.SetInstalled(true)
	}
	return nil
}

// SetInstalled flips whether the companion app counts as installed.
func (t *MemoryTransport) SetInstalled(installed bool) {
	t.hub.mu.Lock()
	t.hub.installed = installed
	t.hub.mu.Unlock()
}

func (t *MemoryTransport) CompanionInstalled(ctx context.Context) (bool, error) {
	t.hub.mu.Lock()
	t.hub.installedChecks++
	t.hub.mu.Unlock()

	if t.InstalledGate != nil {
		select {
		case <-t.InstalledGate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	t.hub.mu.Lock()
	defer t.hub.mu.Unlock()
	return t.hub.installed, nil
}

// InstalledChecks counts CompanionInstalled calls on either end.
func (t *MemoryTransport) InstalledChecks() int {
	t.hub.mu.Lock()
	defer t.hub.mu.Unlock()
	return t.hub.installedChecks
}

// FailSends makes every following Send return err. Nil restores sending.
func (t *MemoryTransport) FailSends(err error) {
	t.mu.Lock()
	t.sendErr = err
	t.mu.Unlock()
}

// Sent returns a copy of everything this end delivered.
func (t *MemoryTransport) Sent() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.sent...)
}

func (t *MemoryTransport) Send(_ context.Context, msg Message) error {
	t.mu.Lock()
	sendErr := t.sendErr
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrTransportClosed
	}
	if sendErr != nil {
		return sendErr
	}

	if err := t.peer.push(msg); err != nil {
		return err
	}

	t.mu.Lock()
	t.sent = append(t.sent, msg)
	t.mu.Unlock()
	return nil
}

func (t *MemoryTransport) push(msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTransportClosed
	}
	select {
	case t.inbox <- msg:
		return nil
	default:
		return ErrInboxFull
	}
}

func (t *MemoryTransport) Receive(_ context.Context) (<-chan Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrTransportClosed
	}
	return t.inbox, nil
}

func (t *MemoryTransport) ApplicationContext(_ context.Context) (Payload, bool, error) {
	t.hub.mu.Lock()
	defer t.hub.mu.Unlock()
	if t.hub.appContext == nil {
		return Payload{}, false, nil
	}
	return *t.hub.appContext, true, nil
}

func (t *MemoryTransport) UpdateApplicationContext(_ context.Context, p Payload) error {
	t.hub.mu.Lock()
	t.hub.appContext = &p
	t.hub.mu.Unlock()
	return nil
}

func (t *MemoryTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.inbox)
	}
	return nil
}
