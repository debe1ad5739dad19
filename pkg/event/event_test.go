package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/stretchr/testify/assert"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	var got []string
	event.Listen(event.OrderPlaced, func(_ context.Context, p any) { got = append(got, "a:"+p.(string)) })
	event.Listen(event.OrderPlaced, func(context.Context, any) { panic("listener bug") })
	event.Listen(event.OrderPlaced, func(_ context.Context, p any) { got = append(got, "b:"+p.(string)) })

	event.Fire(context.Background(), event.OrderPlaced, "42")

	assert.Equal(t, []string{"a:42", "b:42"}, got)
}

func TestFireAsyncSurvivesCancelledCaller(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	done := make(chan error, 1)
	event.Listen(event.OrderCancelled, func(ctx context.Context, _ any) { done <- ctx.Err() })

	ctx, cancel := context.WithCancel(context.Background())
	event.FireAsync(ctx, event.OrderCancelled, nil)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener never ran")
	}
}
