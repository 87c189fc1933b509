package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()

	ch1, cancel1 := hub.Subscribe()
	defer cancel1()
	ch2, cancel2 := hub.Subscribe()
	defer cancel2()
	assert.Equal(t, 2, hub.SubscriberCount())

	hub.Publish(Event{Type: EventResultAppended, UserID: "user1"})

	e1 := <-ch1
	e2 := <-ch2
	assert.Equal(t, EventResultAppended, e1.Type)
	assert.Equal(t, "user1", e1.UserID)
	assert.Equal(t, e1, e2, "every subscriber sees the same event, publisher's context included")
}

func TestHub_CancelStopsDelivery(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe()
	cancel()
	assert.Equal(t, 0, hub.SubscriberCount())

	// The channel is closed on cancel, so a pending reader unblocks.
	_, open := <-ch
	assert.False(t, open)

	// Cancel is idempotent.
	assert.NotPanics(t, func() { cancel() })

	// Publishing with no subscribers is a no-op.
	assert.NotPanics(t, func() { hub.Publish(Event{Type: EventSessionSaved}) })
}

func TestHub_SlowSubscriberIsSkippedNotBlocked(t *testing.T) {
	hub := NewHub()

	slow, cancelSlow := hub.Subscribe()
	defer cancelSlow()
	fast, cancelFast := hub.Subscribe()
	defer cancelFast()

	// Overflow the slow subscriber's buffer without reading from it. The
	// publisher must never block.
	for i := 0; i < 40; i++ {
		hub.Publish(Event{Type: EventSessionSaved, UserID: "user1"})
		// Keep the fast subscriber drained so it stays under its buffer.
		<-fast
	}

	// The slow subscriber still holds a full buffer of events; the overflow
	// was dropped, not queued.
	drained := 0
	for {
		select {
		case <-slow:
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 16, drained)
}
