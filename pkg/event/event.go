// Package event is an in-process event dispatcher.
//
//	event.Listen(event.OrderPlaced, func(ctx context.Context, p any) { ... })
//	event.Fire(ctx, event.OrderPlaced, order)
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Names of the domain events fired by the services.
const (
	OrderPlaced    = "order.placed"
	OrderCancelled = "order.cancelled"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(name string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], handler)
}

func listeners(name string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Handler(nil), handlers[name]...)
}

// Fire runs every listener synchronously. A panicking listener is logged and
// does not stop the others.
func Fire(ctx context.Context, name string, payload any) {
	for _, h := range listeners(name) {
		call(ctx, name, h, payload)
	}
}

// FireAsync runs every listener on its own goroutine and returns at once.
// Listeners get a context detached from the caller's cancellation.
func FireAsync(ctx context.Context, name string, payload any) {
	detached := context.WithoutCancel(ctx)
	for _, h := range listeners(name) {
		go call(detached, name, h, payload)
	}
}

func call(ctx context.Context, name string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", name, "panic", fmt.Sprint(r))
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
