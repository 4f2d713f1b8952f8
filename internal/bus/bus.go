package bus

import "sync"

// Bus provides fan-out pub/sub semantics for values of type T. Each
// Subscribe call gets its own channel that receives future publications.
// Past messages are not replayed. The implementation is safe for concurrent
// publishers and subscribers.
type Bus[T any] struct {
	mu          sync.RWMutex
	subscribers []chan T
}

// New creates a ready-to-use Bus.
func New[T any]() *Bus[T] { return &Bus[T]{} }

// Subscribe returns a read-only channel that will receive future values.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, 1) // small buffer avoids blocking
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// SubscribeWith is Subscribe with initial already queued on the channel, so
// the subscriber starts from a known value.
func (b *Bus[T]) SubscribeWith(initial T) <-chan T {
	ch := make(chan T, 1)
	ch <- initial
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers v to all subscribers without blocking. A subscriber that
// has not consumed the previous value gets it replaced by v, so a slow
// consumer always wakes up to the newest value.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- v:
			continue
		default:
		}
		// Drop the stale value and retry once. Another publisher may have
		// refilled the slot in between; its value is just as fresh.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Unsubscribe removes ch and closes it. Unknown channels are ignored.
func (b *Bus[T]) Unsubscribe(ch <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subscribers {
		if sub == ch {
			// remove without preserving order
			b.subscribers[i] = b.subscribers[len(b.subscribers)-1]
			b.subscribers = b.subscribers[:len(b.subscribers)-1]
			close(sub)
			return
		}
	}
}
