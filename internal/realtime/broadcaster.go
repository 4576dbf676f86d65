// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package realtime

import (
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// Catalog event types.
const (
	EventLoaded  = "loaded"
	EventInvalid = "invalid"
	EventFailed  = "failed"
	EventRemoved = "removed"
)

const subscriberBuffer = 64

// Event reports a change in the state of one catalogued log.
type Event struct {
	Type      string    `json:"type"`
	Log       string    `json:"log"`
	Records   int       `json:"records,omitempty"`
	ParseMs   int64     `json:"parse_ms,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster fans catalog events out to every subscriber. A subscriber
// that does not keep up loses events instead of blocking the publisher.
type Broadcaster struct {
	logger *pterm.Logger

	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	dropped     int64
	closed      bool
}

func NewBroadcaster(logger *pterm.Logger) *Broadcaster {
	return &Broadcaster{
		logger:      logger,
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a buffered channel of events and a function that
// unsubscribes and closes it.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		close(ch)
		b.mu.Unlock()
		return ch, func() {}
	}
	b.subscribers[ch] = struct{}{}
	count := len(b.subscribers)
	b.mu.Unlock()

	b.logger.Debug("Event subscriber added", b.logger.Args("subscribers", count))

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(ch) })
	}
}

func (b *Broadcaster) unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Publish stamps the event and delivers it to all current subscribers.
func (b *Broadcaster) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			b.dropped++
			b.logger.Warn("Dropped event for slow subscriber",
				b.logger.Args("type", ev.Type, "log", ev.Log, "total_dropped", b.dropped))
		}
	}

	b.logger.Trace("Event published", b.logger.Args("type", ev.Type, "log", ev.Log, "subscribers", len(b.subscribers)))
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped returns how many deliveries were skipped for slow subscribers.
func (b *Broadcaster) Dropped() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Close closes every subscriber channel. Later subscriptions receive a
// closed channel and later events are discarded.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = make(map[chan Event]struct{})
}
