package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(func(n Notification) { got = append(got, "a:"+n.Message) })
	h := bus.Subscribe(func(n Notification) { got = append(got, "b:"+n.Message) })
	bus.Subscribe(func(n Notification) {
		assert.False(t, n.Timestamp.IsZero())
		got = append(got, "c:"+n.Message)
	})

	bus.Publish(Notification{Type: NotifyEffect, Message: "one"})
	bus.Unsubscribe(h)
	bus.Publish(Notification{Type: NotifyEffect, Message: "two"})

	assert.Equal(t, []string{"a:one", "b:one", "c:one", "a:two", "c:two"}, got)
}

func TestBusIgnoresNilListener(t *testing.T) {
	bus := NewBus()
	assert.Equal(t, -1, bus.Subscribe(nil))
	bus.Publish(Notification{Message: "noop"})
}
