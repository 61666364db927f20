package engine

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-engine/internal/gameid"
	"github.com/lox/holdem-engine/internal/randutil"
)

const defaultHistoryLimit = 1000

// EventHandler consumes one published event.
type EventHandler func(Event)

// EventFilter decides whether a subscription receives an event.
type EventFilter func(Event) bool

type subscription struct {
	id       string
	typ      EventType
	handler  EventHandler
	priority int
	filter   EventFilter
	seq      int
}

// BusStats is a point-in-time view of bus counters.
type BusStats struct {
	Published      int
	Delivered      int
	HandlerPanics  int
	HistoryDropped int
}

// EventBus is a typed publish/subscribe bus with bounded history. Handlers
// run synchronously in priority-descending order; panics in one handler are
// recovered and counted without affecting the others.
type EventBus struct {
	mu      sync.Mutex
	subs    map[EventType][]*subscription
	anySubs []*subscription
	history []Event
	limit   int
	nextSeq int
	stats   BusStats
	clock   quartz.Clock
	ids     *gameid.Generator
	logger  *log.Logger
}

// BusOption configures an EventBus.
type BusOption func(*EventBus)

// WithBusClock injects the clock used to stamp event timestamps.
func WithBusClock(clock quartz.Clock) BusOption {
	return func(b *EventBus) { b.clock = clock }
}

// WithHistoryLimit bounds the retained event history.
func WithHistoryLimit(limit int) BusOption {
	return func(b *EventBus) {
		if limit > 0 {
			b.limit = limit
		}
	}
}

// WithBusIDGenerator injects the generator for subscription ids.
func WithBusIDGenerator(ids *gameid.Generator) BusOption {
	return func(b *EventBus) { b.ids = ids }
}

// NewEventBus creates a bus with a bounded history.
func NewEventBus(logger *log.Logger, opts ...BusOption) *EventBus {
	b := &EventBus{
		subs:   make(map[EventType][]*subscription),
		limit:  defaultHistoryLimit,
		clock:  quartz.NewReal(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.ids == nil {
		b.ids = gameid.NewGenerator(randutil.New(b.clock.Now().UnixNano()), b.clock)
	}
	return b
}

// SubscribeOption configures one subscription.
type SubscribeOption func(*subscription)

// WithPriority orders handler delivery; higher runs first. Default 0.
func WithPriority(priority int) SubscribeOption {
	return func(s *subscription) { s.priority = priority }
}

// WithFilter delivers only events the predicate accepts.
func WithFilter(filter EventFilter) SubscribeOption {
	return func(s *subscription) { s.filter = filter }
}

// Subscribe registers a handler for one event type, or EventAny for all.
// Returns the subscription id.
func (b *EventBus) Subscribe(t EventType, handler EventHandler, opts ...SubscribeOption) string {
	sub := &subscription{typ: t, handler: handler}
	for _, opt := range opts {
		opt(sub)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sub.id = b.ids.Generate(gameid.KindSubscription)
	sub.seq = b.nextSeq
	b.nextSeq++

	if t == EventAny {
		b.anySubs = insertByPriority(b.anySubs, sub)
	} else {
		b.subs[t] = insertByPriority(b.subs[t], sub)
	}
	return sub.id
}

// insertByPriority keeps descending priority, stable by subscription order.
func insertByPriority(subs []*subscription, sub *subscription) []*subscription {
	subs = append(subs, sub)
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].priority != subs[j].priority {
			return subs[i].priority > subs[j].priority
		}
		return subs[i].seq < subs[j].seq
	})
	return subs
}

// Unsubscribe removes a subscription by id.
func (b *EventBus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for t, subs := range b.subs {
		if filtered, found := removeSub(subs, id); found {
			b.subs[t] = filtered
			return true
		}
	}
	var found bool
	b.anySubs, found = removeSub(b.anySubs, id)
	return found
}

func removeSub(subs []*subscription, id string) ([]*subscription, bool) {
	for i, sub := range subs {
		if sub.id == id {
			return append(subs[:i], subs[i+1:]...), true
		}
	}
	return subs, false
}

// Publish delivers the event to matching subscribers and records it in
// history. It returns after every handler has run. A zero timestamp is
// stamped from the bus clock.
func (b *EventBus) Publish(event Event) {
	b.mu.Lock()
	if event.Timestamp.IsZero() {
		event.Timestamp = b.clock.Now()
	}
	b.history = append(b.history, event)
	if len(b.history) > b.limit {
		drop := len(b.history) - b.limit
		b.history = append([]Event(nil), b.history[drop:]...)
		b.stats.HistoryDropped += drop
	}
	b.stats.Published++

	// Merge typed and any-bucket subscribers preserving priority order,
	// then release the lock so handlers can subscribe or publish.
	matched := make([]*subscription, 0, len(b.subs[event.Type])+len(b.anySubs))
	matched = append(matched, b.subs[event.Type]...)
	matched = append(matched, b.anySubs...)
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].priority != matched[j].priority {
			return matched[i].priority > matched[j].priority
		}
		return matched[i].seq < matched[j].seq
	})
	b.mu.Unlock()

	for _, sub := range matched {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		b.dispatch(sub, event)
	}
}

func (b *EventBus) dispatch(sub *subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.mu.Lock()
			b.stats.HandlerPanics++
			b.mu.Unlock()
			if b.logger != nil {
				b.logger.Error("event handler panicked",
					"subscription", sub.id, "event", event.Type, "panic", r)
			}
		}
	}()
	sub.handler(event)
	b.mu.Lock()
	b.stats.Delivered++
	b.mu.Unlock()
}

// History returns up to limit most recent events of the given type, oldest
// first. EventAny matches all types; limit <= 0 means no limit.
func (b *EventBus) History(t EventType, limit int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Event
	for _, e := range b.history {
		if t == EventAny || e.Type == t {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	result := make([]Event, len(out))
	copy(result, out)
	return result
}

// Stats returns a copy of the bus counters.
func (b *EventBus) Stats() BusStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// ClearHistory drops the retained history without touching subscriptions.
func (b *EventBus) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = nil
}
