package companion

import (
	"context"
	"sync"

	"github.com/2beens/volumetracker/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// Companion is the receiving end. Its identity cell starts as Unknown and
// every identity payload overwrites it.
type Companion struct {
	transport Transport
	metrics   *metrics.Manager

	mu       sync.RWMutex
	identity string
	onChange func(identity string)
}

func NewCompanion(transport Transport, metricsManager *metrics.Manager) *Companion {
	return &Companion{
		transport: transport,
		metrics:   metricsManager,
		identity:  Unknown,
	}
}

// OnIdentityChange registers a callback run after every applied payload.
func (c *Companion) OnIdentityChange(f func(identity string)) {
	c.mu.Lock()
	c.onChange = f
	c.mu.Unlock()
}

func (c *Companion) Identity() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// LoginRequired is true while no identity has been received.
func (c *Companion) LoginRequired() bool {
	return c.Identity() == Unknown
}

func (c *Companion) apply(p Payload) {
	if p.Email == "" {
		return
	}
	c.mu.Lock()
	c.identity = p.Email
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(p.Email)
	}
}

// RequestIdentity is the pull path. The application context is checked
// first, then the primary is asked to resend. Errors are logged only.
func (c *Companion) RequestIdentity(ctx context.Context) {
	p, ok, err := c.transport.ApplicationContext(ctx)
	if err != nil {
		log.Warnf("companion, read application context: %s", err)
	} else if ok {
		c.apply(p)
	}

	if !c.LoginRequired() {
		return
	}

	if err := c.transport.Send(ctx, Message{Type: MessageRequestIdentity}); err != nil {
		log.Errorf("companion, request identity: %s", err)
		return
	}
	c.count(metrics.SyncSent)
}

// Run applies incoming identity payloads until ctx ends or the transport
// closes the message stream.
func (c *Companion) Run(ctx context.Context) error {
	messages, err := c.transport.Receive(ctx)
	if err != nil {
		return err
	}

	if c.LoginRequired() {
		c.RequestIdentity(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if msg.Type != MessageIdentity {
				log.Debugf("companion, ignoring message [%s]", msg.Type)
				continue
			}
			c.count(metrics.SyncReceived)
			c.apply(msg.Payload)
			log.Debugf("companion identity updated: %s", msg.Payload.Email)
		}
	}
}

func (c *Companion) count(event string) {
	if c.metrics == nil {
		return
	}
	c.metrics.CounterSyncPayloads.WithLabelValues(event).Inc()
}
