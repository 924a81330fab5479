package events

import (
	"testing"
)

func TestSubscribePublish(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: EventRefresh, Path: "/Game/Mats/Rock.Rock"})

	ev := <-ch
	if ev.Type != EventRefresh || ev.Path != "/Game/Mats/Rock.Rock" {
		t.Errorf("event = %+v", ev)
	}
	if ev.Timestamp == 0 {
		t.Error("publish did not stamp the event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()

	if b.Count() != 1 {
		t.Fatalf("Count = %d, want 1", b.Count())
	}
	b.Unsubscribe(ch)
	if b.Count() != 0 {
		t.Errorf("Count = %d after unsubscribe, want 0", b.Count())
	}

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}

	// Publishing with no subscribers is a no-op.
	b.Publish(Event{Type: EventRefresh})
}

func TestSlowConsumerDropsEvents(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Overflow the buffer; Publish must never block.
	for i := 0; i < 200; i++ {
		b.Publish(Event{Type: EventThumbnail, Size: i})
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered events = %d, want full buffer %d", got, cap(ch))
	}
}
