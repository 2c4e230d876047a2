package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_DeliversToExactTopic(t *testing.T) {
	b := New()

	var got []Message
	b.Subscribe("state.changed.count", func(m Message) { got = append(got, m) })

	b.Publish("state.changed.count", 42)

	require.Len(t, got, 1)
	assert.Equal(t, "state.changed.count", got[0].Topic)
	assert.Equal(t, 42, got[0].Payload)
}

func TestPublish_NoPrefixMatching(t *testing.T) {
	b := New()

	called := false
	b.Subscribe("state.changed.todos", func(Message) { called = true })

	b.Publish("state.changed.todos.0.done", true)

	assert.False(t, called, "parent-path subscriber must not see child-path messages")
}

func TestPublish_RegistrationOrder(t *testing.T) {
	b := New()

	var order []string
	b.Subscribe("t", func(Message) { order = append(order, "first") })
	b.Subscribe("t", func(Message) { order = append(order, "second") })
	b.Subscribe("t", func(Message) { order = append(order, "third") })

	b.Publish("t", nil)

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestPublish_NoSubscribers(t *testing.T) {
	b := New()
	// Must not panic.
	b.Publish("nobody.home", "payload")
}

func TestUnsubscribe_RemovesHandler(t *testing.T) {
	b := New()

	calls := 0
	sub := b.Subscribe("t", func(Message) { calls++ })

	b.Publish("t", nil)
	require.NoError(t, b.Unsubscribe(sub))
	b.Publish("t", nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.SubscriberCount("t"))
}

func TestUnsubscribe_UnknownFailsLoudly(t *testing.T) {
	b := New()

	err := b.Unsubscribe(Subscription{Token: "never-issued", Topic: "t"})
	assert.Error(t, err)
}

func TestUnsubscribe_OnlyNamedHandler(t *testing.T) {
	b := New(WithTokenGenerator(NewFixedGenerator("tok-1", "tok-2")))

	var order []string
	sub1 := b.Subscribe("t", func(Message) { order = append(order, "one") })
	b.Subscribe("t", func(Message) { order = append(order, "two") })

	assert.Equal(t, "tok-1", sub1.Token)
	require.NoError(t, b.Unsubscribe(sub1))

	b.Publish("t", nil)
	assert.Equal(t, []string{"two"}, order)
}

func TestSubscribe_DuringDispatchDoesNotAffectCurrentRound(t *testing.T) {
	b := New()

	calls := 0
	b.Subscribe("t", func(Message) {
		calls++
		b.Subscribe("t", func(Message) { calls += 100 })
	})

	b.Publish("t", nil)
	assert.Equal(t, 1, calls, "handler added mid-dispatch must not run in the same round")

	b.Publish("t", nil)
	assert.Equal(t, 102, calls)
}
