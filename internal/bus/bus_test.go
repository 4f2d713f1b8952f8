package bus

import "testing"

func TestPublishFanOut(t *testing.T) {
	b := New[int]()
	a, c := b.Subscribe(), b.Subscribe()

	b.Publish(7)

	for i, ch := range []<-chan int{a, c} {
		select {
		case v := <-ch:
			if v != 7 {
				t.Errorf("subscriber %d got %d", i, v)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestSlowSubscriberSeesNewest(t *testing.T) {
	b := New[string]()
	ch := b.Subscribe()

	b.Publish("old")
	b.Publish("new")

	if v := <-ch; v != "new" {
		t.Errorf("got %q, want newest value", v)
	}
	select {
	case v := <-ch:
		t.Errorf("unexpected extra value %q", v)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New[int]()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}
	b.mu.RLock()
	n := len(b.subscribers)
	b.mu.RUnlock()
	if n != 0 {
		t.Errorf("%d subscribers left after Unsubscribe", n)
	}
	// publishing with no subscribers must not panic
	b.Publish(1)
}
