package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_SendReachesOnlyMatchingSubscribers(t *testing.T) {
	d := New()
	var gotUpdate, gotDelete, gotOther int

	d.Subscribe(SignalUpdate, "100", func(context.Context, string) { gotUpdate++ })
	d.Subscribe(SignalDelete, "100", func(context.Context, string) { gotDelete++ })
	d.Subscribe(SignalUpdate, "200", func(context.Context, string) { gotOther++ })

	d.Send(context.Background(), SignalUpdate, "100")

	assert.Equal(t, 1, gotUpdate)
	assert.Equal(t, 0, gotDelete, "delete handler must not see update signals")
	assert.Equal(t, 0, gotOther, "handlers for other identifiers must not fire")
}

func TestDispatcher_SendWithoutSubscribersIsNoop(t *testing.T) {
	d := New()
	assert.NotPanics(t, func() {
		d.Send(context.Background(), SignalDelete, "missing")
	})
}

func TestDispatcher_UnsubscribeIsIdempotent(t *testing.T) {
	d := New()
	var calls int
	unsubscribe := d.Subscribe(SignalUpdate, "100", func(context.Context, string) { calls++ })

	d.Send(context.Background(), SignalUpdate, "100")
	unsubscribe()
	unsubscribe()
	d.Send(context.Background(), SignalUpdate, "100")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, d.SubscriberCount(SignalUpdate, "100"))
}

func TestDispatcher_MultipleHandlersSameIdentifier(t *testing.T) {
	d := New()
	var first, second int

	d.Subscribe(SignalUpdate, "100", func(context.Context, string) { first++ })
	stop := d.Subscribe(SignalUpdate, "100", func(context.Context, string) { second++ })

	d.Send(context.Background(), SignalUpdate, "100")
	stop()
	d.Send(context.Background(), SignalUpdate, "100")

	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second)
}
