package relay

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func frame(i int) []byte {
	return []byte(strconv.Itoa(i))
}

func TestOutbox_PushPop(t *testing.T) {
	b := newOutbox(10, 100)

	for i := 0; i < 5; i++ {
		if err := b.push(frame(i)); err != nil {
			t.Fatalf("push(%d) failed: %v", i, err)
		}
	}

	if got := b.stats().Pending; got != 5 {
		t.Errorf("Pending = %d, want 5", got)
	}

	for i := 0; i < 5; i++ {
		got, ok := b.pop()
		if !ok {
			t.Fatalf("pop() returned false for item %d", i)
		}
		if string(got) != strconv.Itoa(i) {
			t.Errorf("popped %s, want %d", got, i)
		}
	}
}

func TestOutbox_GrowAt70Percent(t *testing.T) {
	b := newOutbox(10, 100)

	for i := 0; i < 7; i++ {
		b.push(frame(i))
	}

	stats := b.stats()
	if stats.Capacity <= 10 {
		t.Errorf("Capacity = %d, expected growth after 70%% fill", stats.Capacity)
	}
	if stats.Resizes != 1 {
		t.Errorf("Resizes = %d, want 1", stats.Resizes)
	}

	for i := 0; i < 7; i++ {
		got, _ := b.pop()
		if string(got) != strconv.Itoa(i) {
			t.Errorf("popped %s, want %d", got, i)
		}
	}
}

func TestOutbox_GrowPreservesWrappedOrder(t *testing.T) {
	b := newOutbox(4, 64)

	// Advance head so the ring wraps before growing.
	b.push(frame(-2))
	b.push(frame(-1))
	b.pop()
	b.pop()

	for i := 0; i < 40; i++ {
		if err := b.push(frame(i)); err != nil {
			t.Fatalf("push(%d) failed: %v", i, err)
		}
	}

	for i := 0; i < 40; i++ {
		got, ok := b.pop()
		if !ok {
			t.Fatalf("pop() returned false for item %d", i)
		}
		if string(got) != strconv.Itoa(i) {
			t.Fatalf("popped %s, want %d", got, i)
		}
	}
}

func TestOutbox_Limit(t *testing.T) {
	b := newOutbox(2, 5)

	for i := 0; i < 5; i++ {
		if err := b.push(frame(i)); err != nil {
			t.Fatalf("push(%d) failed: %v", i, err)
		}
	}

	if err := b.push(frame(5)); err != errOutboxFull {
		t.Errorf("expected errOutboxFull, got %v", err)
	}
	if got := b.stats().Capacity; got != 5 {
		t.Errorf("Capacity = %d, want 5", got)
	}

	b.pop()
	if err := b.push(frame(5)); err != nil {
		t.Errorf("push after pop failed: %v", err)
	}
}

func TestOutbox_BlockingPop(t *testing.T) {
	b := newOutbox(10, 10)

	received := make(chan []byte, 1)
	go func() {
		if got, ok := b.pop(); ok {
			received <- got
		}
	}()

	// Give the writer time to start waiting
	time.Sleep(10 * time.Millisecond)
	b.push([]byte("42"))

	select {
	case got := <-received:
		if string(got) != "42" {
			t.Errorf("popped %s, want 42", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for pop")
	}
}

func TestOutbox_CloseDrainsThenStops(t *testing.T) {
	b := newOutbox(10, 10)
	b.push([]byte("last"))
	b.close()

	if err := b.push([]byte("late")); err != errOutboxClosed {
		t.Errorf("expected errOutboxClosed, got %v", err)
	}

	got, ok := b.pop()
	if !ok || string(got) != "last" {
		t.Errorf("pop() = %s, %v; want last, true", got, ok)
	}

	if _, ok := b.pop(); ok {
		t.Error("expected pop to report closed")
	}
}

func TestOutbox_CloseWakesWaiters(t *testing.T) {
	b := newOutbox(10, 10)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.pop()
		}()
	}

	time.Sleep(10 * time.Millisecond)
	b.close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close did not wake waiting writers")
	}
}

func TestOutbox_ConcurrentPush(t *testing.T) {
	b := newOutbox(4, 1000)

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				b.push(frame(i))
			}
		}()
	}
	wg.Wait()

	stats := b.stats()
	if stats.Pending != 500 {
		t.Errorf("Pending = %d, want 500", stats.Pending)
	}
	if stats.Enqueued != 500 {
		t.Errorf("Enqueued = %d, want 500", stats.Enqueued)
	}
}
