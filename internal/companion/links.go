package companion

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/2beens/volumetracker/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var (
	ErrInvalidDevice = errors.New("invalid companion device id")

	deviceIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ValidateDevice checks a pairing id shared by a primary device and its companion.
func ValidateDevice(device string) error {
	if !deviceIDRegex.MatchString(device) {
		return fmt.Errorf("%w: [%s]", ErrInvalidDevice, device)
	}
	return nil
}

// DevicePrefix scopes transport keys and channels to one paired device.
func DevicePrefix(prefix, device string) string {
	return prefix + ":" + device
}

// Links keeps one Link per paired device, so a companion only ever hears
// about the user signed in on its own primary device.
type Links struct {
	ctx          context.Context
	newTransport func(device string) Transport
	metrics      *metrics.Manager

	mu     sync.Mutex
	links  map[string]*Link
	closed bool
}

// NewLinks creates links lazily. Activation and serving run on ctx, not on
// the request that first touched a device.
func NewLinks(ctx context.Context, newTransport func(device string) Transport, metricsManager *metrics.Manager) *Links {
	return &Links{
		ctx:          ctx,
		newTransport: newTransport,
		metrics:      metricsManager,
		links:        make(map[string]*Link),
	}
}

func (ls *Links) link(device string) (*Link, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed {
		return nil, false
	}
	if l, ok := ls.links[device]; ok {
		return l, true
	}

	l := NewLink(ls.newTransport(device), ls.metrics)
	ls.links[device] = l

	activated := l.Activate(ls.ctx)
	go func() {
		<-activated
		if l.State() == StateInactive {
			log.Warnf("companion link [%s] inactive, identity sync disabled", device)
			return
		}
		if err := l.Serve(ls.ctx); err != nil {
			log.Errorf("companion link [%s] serve: %s", device, err)
		}
	}()

	return l, true
}

// SendIdentity pushes email to the companion paired with device.
func (ls *Links) SendIdentity(ctx context.Context, device, email string) {
	if err := ValidateDevice(device); err != nil {
		log.Warnf("companion links, %s", err)
		return
	}
	l, ok := ls.link(device)
	if !ok {
		log.Tracef("companion links closed, identity for [%s] dropped", device)
		return
	}
	l.SendIdentity(ctx, email)
}

// Identity reports what was last sent to device and the link state. An
// unknown device is not started.
func (ls *Links) Identity(device string) (string, State) {
	ls.mu.Lock()
	l, ok := ls.links[device]
	ls.mu.Unlock()
	if !ok {
		return "", StateInactive
	}
	return l.Identity(), l.State()
}

func (ls *Links) Close() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.closed = true

	var err error
	for device, l := range ls.links {
		if closeErr := l.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close link [%s]: %w", device, closeErr))
		}
	}
	return err
}
