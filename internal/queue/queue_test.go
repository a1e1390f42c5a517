package queue

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_PushPop(t *testing.T) {
	q := New[int]()
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if got := q.Pop(); got != 0 {
		t.Errorf("expected zero value from empty queue, got %d", got)
	}

	q.Push(1)
	q.Push(2, 3)
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
	for want := 1; want <= 3; want++ {
		if got := q.Pop(); got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[string]()
	q.Push("a", "b")

	items := q.Drain()
	if len(items) != 2 || items[0] != "a" || items[1] != "b" {
		t.Errorf("unexpected drain result %v", items)
	}
	if !q.Empty() {
		t.Error("expected empty queue after drain")
	}

	q.Push("c")
	if items[0] != "a" {
		t.Error("drained slice was overwritten by a later push")
	}
}

func TestQueue_BoundedDropsOldest(t *testing.T) {
	q := NewBounded[int](3)
	q.Push(1, 2, 3, 4)
	q.Push(5)

	items := q.Drain()
	if len(items) != 3 || items[0] != 3 || items[2] != 5 {
		t.Errorf("expected [3 4 5], got %v", items)
	}
	if q.Dropped() != 2 {
		t.Errorf("expected 2 dropped, got %d", q.Dropped())
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New[int]()
	q.Push(1, 2)
	q.Clear()
	if q.Len() != 0 {
		t.Errorf("expected empty queue after clear, got %d", q.Len())
	}
}

func TestQueue_ReadySignalsAfterPush(t *testing.T) {
	q := New[int]()

	select {
	case <-q.Ready():
		t.Fatal("ready fired before any push")
	default:
	}

	q.Push(1)
	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready did not fire after push")
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(n*100 + j)
			}
		}(i)
	}
	wg.Wait()

	if q.Len() != 1000 {
		t.Errorf("expected 1000 items, got %d", q.Len())
	}
}
