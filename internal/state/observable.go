// Package state provides a published-state container: the current value is
// always a complete immutable T, replaced wholesale on every update.
package state

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jkaberg/carinfo/internal/bus"
)

// Observable holds a value of type T and notifies subscribers whenever it is
// replaced. Reads are lock-free. Writes are serialised so subscribers observe
// values in the order they were stored.
type Observable[T any] struct {
	mu  sync.Mutex
	cur atomic.Pointer[T]
	bus *bus.Bus[T]
}

// NewObservable returns an Observable holding initial.
func NewObservable[T any](initial T) *Observable[T] {
	o := &Observable[T]{bus: bus.New[T]()}
	o.cur.Store(&initial)
	return o
}

// Get returns the current value.
func (o *Observable[T]) Get() T { return *o.cur.Load() }

// Set replaces the current value and publishes it.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cur.Store(&v)
	o.bus.Publish(v)
}

// Update derives a new value from the current one and publishes it. fn must
// not mutate its argument and must not call back into o.
func (o *Observable[T]) Update(fn func(T) T) T {
	o.mu.Lock()
	defer o.mu.Unlock()
	next := fn(*o.cur.Load())
	o.cur.Store(&next)
	o.bus.Publish(next)
	return next
}

// Subscribe returns a channel primed with the current value that then
// receives every replacement. Slow readers skip intermediate values. The
// channel is closed once ctx is done.
func (o *Observable[T]) Subscribe(ctx context.Context) <-chan T {
	o.mu.Lock()
	ch := o.bus.SubscribeWith(*o.cur.Load())
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.bus.Unsubscribe(ch)
	}()
	return ch
}

// Changes is Subscribe without the current value: the channel only receives
// replacements stored after the call returns.
func (o *Observable[T]) Changes(ctx context.Context) <-chan T {
	o.mu.Lock()
	ch := o.bus.Subscribe()
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.bus.Unsubscribe(ch)
	}()
	return ch
}
