package companion

import (
	"context"
	"sync"

	"github.com/2beens/volumetracker/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// Link is the primary device end of the channel.
type Link struct {
	transport Transport
	metrics   *metrics.Manager

	// sendMu keeps deliveries in order so the newest identity lands last.
	sendMu sync.Mutex

	mu           sync.Mutex
	state        State
	identity     string
	pending      bool // the current identity waits for activation
	activateDone chan struct{}
}

func NewLink(transport Transport, metricsManager *metrics.Manager) *Link {
	return &Link{
		transport: transport,
		metrics:   metricsManager,
		state:     StateInactive,
	}
}

func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Identity is the last identity handed to SendIdentity.
func (l *Link) Identity() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.identity
}

// Activate starts the handshake in the background. The returned channel is
// closed once the attempt finishes. A failed handshake leaves the link
// inactive and is not retried.
func (l *Link) Activate(ctx context.Context) <-chan struct{} {
	l.mu.Lock()
	if l.state != StateInactive {
		done := l.activateDone
		l.mu.Unlock()
		if done == nil {
			done = make(chan struct{})
			close(done)
		}
		return done
	}
	l.state = StateActivating
	done := make(chan struct{})
	l.activateDone = done
	l.mu.Unlock()

	go func() {
		defer close(done)

		err := l.transport.Activate(ctx)

		l.mu.Lock()
		if err != nil {
			log.Errorf("companion link activation: %s", err)
			l.state = StateInactive
			if l.pending {
				l.count(metrics.SyncDropped)
			}
			l.pending = false
			l.mu.Unlock()
			return
		}
		l.state = StateActivated
		hadPending := l.pending
		l.pending = false
		l.mu.Unlock()

		log.Debugln("companion link activated")
		if hadPending {
			l.deliver(ctx)
		}
	}()

	return done
}

// SendIdentity never fails. Depending on the link state the identity is
// delivered, parked until activation completes, or dropped.
func (l *Link) SendIdentity(ctx context.Context, email string) {
	l.mu.Lock()
	l.identity = email
	state := l.state
	switch {
	case state == StateActivating:
		if l.pending {
			l.count(metrics.SyncDropped)
		}
		l.pending = true
		l.count(metrics.SyncBuffered)
		l.mu.Unlock()
		return
	case !state.active():
		l.count(metrics.SyncDropped)
		l.mu.Unlock()
		log.Tracef("companion link %s, identity dropped", state)
		return
	}
	l.mu.Unlock()

	l.deliver(ctx)
}

// deliver sends the identity current at the time it gets the send lock,
// never a value captured earlier.
func (l *Link) deliver(ctx context.Context) {
	l.sendMu.Lock()
	defer l.sendMu.Unlock()

	email := l.Identity()
	if email == "" {
		return
	}

	installed, err := l.transport.CompanionInstalled(ctx)
	if err != nil {
		log.Errorf("companion link, check installed: %s", err)
		l.setState(StateUnreachable)
		l.count(metrics.SyncDropped)
		return
	}
	if !installed {
		log.Tracef("companion not installed, identity dropped")
		l.count(metrics.SyncDropped)
		return
	}

	payload := Payload{Email: email}
	if err := l.transport.Send(ctx, Message{Type: MessageIdentity, Payload: payload}); err != nil {
		log.Errorf("companion link, send identity: %s", err)
		l.setState(StateUnreachable)
		l.count(metrics.SyncDropped)
		return
	}
	if err := l.transport.UpdateApplicationContext(ctx, payload); err != nil {
		log.Warnf("companion link, update application context: %s", err)
	}

	l.setState(StateReachable)
	l.count(metrics.SyncSent)
}

// Serve answers identity requests coming from the companion until ctx ends.
func (l *Link) Serve(ctx context.Context) error {
	messages, err := l.transport.Receive(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			l.count(metrics.SyncReceived)
			if msg.Type != MessageRequestIdentity {
				log.Debugf("companion link, ignoring message [%s]", msg.Type)
				continue
			}
			identity := l.Identity()
			if identity == "" {
				log.Debugln("companion asked for identity, none yet")
				continue
			}
			if l.State().active() {
				l.deliver(ctx)
			}
		}
	}
}

func (l *Link) Close() error {
	l.setState(StateInactive)
	return l.transport.Close()
}

// setState only moves an active link around, Close is the one way back to inactive.
func (l *Link) setState(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.active() || s == StateInactive {
		l.state = s
	}
}

func (l *Link) count(event string) {
	if l.metrics == nil {
		return
	}
	l.metrics.CounterSyncPayloads.WithLabelValues(event).Inc()
}
