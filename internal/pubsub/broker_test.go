package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for event")
	}
	return Event[T]{}
}

func TestBroker_FanOut(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	ctx := context.Background()
	subs := []<-chan Event[string]{b.Subscribe(ctx), b.Subscribe(ctx)}
	require.Equal(t, 2, b.SubscriberCount())

	b.Publish(ChangeEvent, "specs/standards/a/UNIT.json")

	for _, ch := range subs {
		ev := receive(t, ch)
		require.Equal(t, ChangeEvent, ev.Type)
		require.Equal(t, "specs/standards/a/UNIT.json", ev.Payload)
		require.Equal(t, fixed, ev.Timestamp)
	}
}

func TestBroker_UnsubscribeOnCancel(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	require.False(t, ok)
}

func TestBroker_PublishDropsWhenFull(t *testing.T) {
	b := NewBrokerWithBuffer[int](1)
	defer b.Close()

	ch := b.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		b.Publish(ChangeEvent, 1)
		b.Publish(ChangeEvent, 2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Publish blocked")
	}
	require.Equal(t, 1, receive(t, ch).Payload)
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker[string]()
	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Zero(t, b.SubscriberCount())

	late := b.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok)

	b.Publish(LogEvent, "ignored")
}

func TestNewBrokerWithBuffer_MinimumSize(t *testing.T) {
	b := NewBrokerWithBuffer[int](0)
	require.Equal(t, 1, b.bufferSize)
}
