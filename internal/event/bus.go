package event

import (
	"crash_backend/internal/logger"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Topic - event name
type Topic string

type Handler func(payload any)

// Handle identifies one subscription. Zero is never issued.
type Handle uint64

type subscription struct {
	id    Handle
	topic Topic
	owner any
	fn    Handler
}

// Bus - publish/subscribe registry shared by the engine components.
// Handlers run synchronously on the emitting goroutine. Owners must be
// comparable values (pointers or strings).
type Bus struct {
	mu   sync.RWMutex
	log  *zap.Logger
	next Handle
	subs map[Topic][]subscription
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		log:  logger.OrNop(log),
		subs: make(map[Topic][]subscription),
	}
}

// On subscribes fn to topic. owner may be nil.
func (b *Bus) On(topic Topic, fn Handler, owner any) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.subs[topic] = append(b.subs[topic], subscription{
		id:    b.next,
		topic: topic,
		owner: owner,
		fn:    fn,
	})
	return b.next
}

// Subscribe - typed On. Payloads of another type are dropped with a warning.
func Subscribe[T any](b *Bus, topic Topic, fn func(T), owner any) Handle {
	return b.On(topic, func(payload any) {
		v, ok := payload.(T)
		if !ok {
			b.log.Warn("event payload type mismatch",
				zap.String("topic", string(topic)),
				zap.String("payload", fmt.Sprintf("%T", payload)))
			return
		}
		fn(v)
	}, owner)
}

// Off removes a single subscription.
func (b *Bus) Off(h Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, subs := range b.subs {
		for i, s := range subs {
			if s.id == h {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				if len(b.subs[topic]) == 0 {
					delete(b.subs, topic)
				}
				return true
			}
		}
	}
	return false
}

// OffTopic removes the topic's subscriptions of owner, or all of them when owner is nil.
func (b *Bus) OffTopic(topic Topic, owner any) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.removeLocked(topic, func(s subscription) bool {
		return owner == nil || s.owner == owner
	})
}

// OffOwner removes every subscription of owner across topics.
func (b *Bus) OffOwner(owner any) int {
	if owner == nil {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for topic := range b.subs {
		removed += b.removeLocked(topic, func(s subscription) bool {
			return s.owner == owner
		})
	}
	return removed
}

func (b *Bus) removeLocked(topic Topic, match func(subscription) bool) int {
	subs := b.subs[topic]
	kept := subs[:0:0]
	for _, s := range subs {
		if !match(s) {
			kept = append(kept, s)
		}
	}
	removed := len(subs) - len(kept)
	if len(kept) == 0 {
		delete(b.subs, topic)
	} else {
		b.subs[topic] = kept
	}
	return removed
}

// Emit delivers payload to the topic's handlers in subscription order and
// returns how many ran without panicking.
func (b *Bus) Emit(topic Topic, payload any) int {
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[topic]...)
	b.mu.RUnlock()

	delivered := 0
	for _, s := range subs {
		if b.call(s, payload) {
			delivered++
		}
	}
	return delivered
}

func (b *Bus) call(s subscription, payload any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("topic", string(s.topic)),
				zap.Uint64("handle", uint64(s.id)),
				zap.Any("panic", r))
			ok = false
		}
	}()
	s.fn(payload)
	return true
}

func (b *Bus) Has(topic Topic) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic]) > 0
}

func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[Topic][]subscription)
}
