// This file is part of Scrollstitch.
//
// Scrollstitch is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Scrollstitch is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Scrollstitch.  If not, see <https://www.gnu.org/licenses/>.

package stitch

import "testing"

func TestEventBusDeliversToSubscriber(t *testing.T) {
	b := newEventBus()
	sub := b.subscribe()
	b.publish(FrameSkipped{Seq: 1, Reason: SkipIdentical})

	select {
	case ev := <-sub.Events():
		fs, ok := ev.(FrameSkipped)
		if !ok || fs.Seq != 1 {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatalf("expected a buffered event")
	}
}

func TestEventBusDropsOldestOnOverflow(t *testing.T) {
	b := newEventBus()
	sub := b.subscribe()

	for i := 0; i < subscriptionBuffer+5; i++ {
		b.publish(FrameSkipped{Seq: uint64(i), Reason: SkipIdentical})
	}

	first := <-sub.Events()
	fs := first.(FrameSkipped)
	if fs.Seq == 0 {
		t.Fatalf("expected the oldest entries to have been dropped, got seq 0 still present")
	}
}

func TestEventBusUnsubscribeClosesChannel(t *testing.T) {
	b := newEventBus()
	sub := b.subscribe()
	sub.Unsubscribe()

	_, ok := <-sub.Events()
	if ok {
		t.Fatalf("expected channel to be closed after Unsubscribe")
	}

	// publishing after unsubscribe must not panic or deliver anything.
	b.publish(FrameSkipped{Seq: 1})
}

func TestEventBusCloseAllClosesEverySubscriber(t *testing.T) {
	b := newEventBus()
	s1 := b.subscribe()
	s2 := b.subscribe()
	b.closeAll()

	for _, s := range []*Subscription{s1, s2} {
		if _, ok := <-s.ch; ok {
			t.Fatalf("expected channel closed after closeAll")
		}
	}
}
