// Package events carries state changes out to API subscribers and
// collaborator notifications in to the controller.
package events

import (
	"sync"

	"github.com/micro-nova/ambiance-go/internal/models"
)

const subBufferSize = 8

// Bus fans state snapshots out to subscribers without ever blocking the
// publisher. A subscriber whose buffer is full loses its oldest pending
// snapshot, so the newest state always gets through.
type Bus struct {
	mu      sync.Mutex
	subs    map[string]chan models.State
	dropped int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]chan models.State)}
}

// Subscribe registers id and returns the channel its snapshots arrive on.
// Subscribing an id twice closes the earlier channel.
func (b *Bus) Subscribe(id string) <-chan models.State {
	ch := make(chan models.State, subBufferSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	if prev, ok := b.subs[id]; ok {
		close(prev)
	}
	b.subs[id] = ch
	return ch
}

// Unsubscribe closes the channel for id. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
}

// Publish offers state to every subscriber.
func (b *Bus) Publish(state models.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		for {
			select {
			case ch <- state:
			default:
				// Full: discard the oldest pending snapshot and retry.
				select {
				case <-ch:
					b.dropped++
				default:
				}
				continue
			}
			break
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dropped returns how many stale snapshots were discarded for slow
// subscribers.
func (b *Bus) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
