package companion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const DefaultInstalledTTL = 10 * time.Minute

type Side string

const (
	SidePrimary   Side = "primary"
	SideCompanion Side = "companion"
)

func (s Side) peer() Side {
	if s == SidePrimary {
		return SideCompanion
	}
	return SidePrimary
}

// RedisTransport carries messages over redis pub/sub. The application
// context lives in a plain key, and a companion announces itself with a
// key that expires unless refreshed.
type RedisTransport struct {
	rdb          *redis.Client
	prefix       string
	side         Side
	installedTTL time.Duration

	mu     sync.Mutex
	pubsub *redis.PubSub
}

func NewRedisTransport(rdb *redis.Client, prefix string, side Side) *RedisTransport {
	return &RedisTransport{
		rdb:          rdb,
		prefix:       prefix,
		side:         side,
		installedTTL: DefaultInstalledTTL,
	}
}

func (t *RedisTransport) channel(side Side) string {
	return fmt.Sprintf("%s:sync:%s", t.prefix, side)
}

func (t *RedisTransport) installedKey() string {
	return t.prefix + ":companion-installed"
}

func (t *RedisTransport) contextKey() string {
	return t.prefix + ":application-context"
}

func (t *RedisTransport) Activate(ctx context.Context) error {
	if err := t.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	if t.side == SideCompanion {
		return t.Announce(ctx)
	}
	return nil
}

// Announce marks the companion as installed for the next installedTTL.
func (t *RedisTransport) Announce(ctx context.Context) error {
	if err := t.rdb.Set(ctx, t.installedKey(), string(t.side), t.installedTTL).Err(); err != nil {
		return fmt.Errorf("announce companion: %w", err)
	}
	return nil
}

func (t *RedisTransport) CompanionInstalled(ctx context.Context) (bool, error) {
	n, err := t.rdb.Exists(ctx, t.installedKey()).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *RedisTransport) Send(ctx context.Context, msg Message) error {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := t.rdb.Publish(ctx, t.channel(t.side.peer()), string(msgBytes)).Err(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Receive subscribes to this side's channel. The returned channel closes
// when ctx ends or the transport is closed.
func (t *RedisTransport) Receive(ctx context.Context) (<-chan Message, error) {
	t.mu.Lock()
	if t.pubsub != nil {
		t.mu.Unlock()
		return nil, errors.New("already receiving")
	}
	pubsub := t.rdb.Subscribe(ctx, t.channel(t.side))
	t.pubsub = pubsub
	t.mu.Unlock()

	// wait for the subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		t.closePubSub()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		redisMessages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				t.closePubSub()
				return
			case redisMsg, ok := <-redisMessages:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
					log.Warnf("companion transport, bad message on %s: %s", redisMsg.Channel, err)
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					t.closePubSub()
					return
				}
			}
		}
	}()

	return out, nil
}

func (t *RedisTransport) ApplicationContext(ctx context.Context) (Payload, bool, error) {
	val, err := t.rdb.Get(ctx, t.contextKey()).Result()
	if errors.Is(err, redis.Nil) {
		return Payload{}, false, nil
	}
	if err != nil {
		return Payload{}, false, err
	}

	var p Payload
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return Payload{}, false, fmt.Errorf("unmarshal application context: %w", err)
	}
	return p, true, nil
}

func (t *RedisTransport) UpdateApplicationContext(ctx context.Context, p Payload) error {
	pBytes, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return t.rdb.Set(ctx, t.contextKey(), string(pBytes), 0).Err()
}

func (t *RedisTransport) Close() error {
	return t.closePubSub()
}

func (t *RedisTransport) closePubSub() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pubsub == nil {
		return nil
	}
	err := t.pubsub.Close()
	t.pubsub = nil
	return err
}
