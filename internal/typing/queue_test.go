package typing

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func fastOptions() Options {
	return Options{
		ThinkingPause: 5 * time.Millisecond,
		CharDelay:     func() time.Duration { return time.Millisecond },
	}
}

func waitComplete(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("completed %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q to complete", want)
	}
}

func TestQueueCompletesInOrder(t *testing.T) {
	done := make(chan string, 3)
	texts := map[string]string{}
	var mu sync.Mutex

	opts := fastOptions()
	opts.OnComplete = func(id, fullText string) {
		mu.Lock()
		texts[id] = fullText
		mu.Unlock()
		done <- id
	}

	q := NewQueue(opts)
	defer q.Close()

	q.Enqueue(
		Item{ID: "a", FullText: "First."},
		Item{ID: "b", FullText: "Second."},
		Item{ID: "c", FullText: "Third."},
	)

	waitComplete(t, done, "a")
	waitComplete(t, done, "b")
	waitComplete(t, done, "c")

	mu.Lock()
	defer mu.Unlock()
	if texts["b"] != "Second." {
		t.Errorf("completion text = %q, want full source text", texts["b"])
	}
}

func TestQueueNoBubbleBeforePause(t *testing.T) {
	opts := fastOptions()
	opts.ThinkingPause = 100 * time.Millisecond

	q := NewQueue(opts)
	defer q.Close()

	q.Enqueue(Item{ID: "a", FullText: "Hello"})

	if got := q.Snapshot(); got != nil {
		t.Errorf("bubble visible before the thinking pause: %+v", got)
	}
}

func TestQueueOneActiveAtATime(t *testing.T) {
	var mu sync.Mutex
	var events []string
	done := make(chan string, 2)

	var q *Queue
	opts := fastOptions()
	opts.OnChange = func() {
		snap := q.Snapshot()
		if len(snap) == 0 {
			return
		}
		mu.Lock()
		events = append(events, "active:"+snap[0].ID)
		mu.Unlock()
	}
	opts.OnComplete = func(id, fullText string) {
		mu.Lock()
		events = append(events, "complete:"+id)
		mu.Unlock()
		done <- id
	}

	q = NewQueue(opts)
	defer q.Close()

	q.Enqueue(
		Item{ID: "a", FullText: "one"},
		Item{ID: "b", FullText: "two"},
	)

	waitComplete(t, done, "a")
	waitComplete(t, done, "b")

	mu.Lock()
	defer mu.Unlock()
	firstB := -1
	lastA := -1
	completeA := -1
	for i, ev := range events {
		switch ev {
		case "active:a":
			lastA = i
		case "complete:a":
			completeA = i
		case "active:b":
			if firstB == -1 {
				firstB = i
			}
		}
	}
	if firstB != -1 && firstB < completeA {
		t.Error("second message became active before the first completed")
	}
	if lastA == -1 || completeA == -1 {
		t.Fatal("expected activity and completion events for the first message")
	}
}

func TestQueueDisplayTextGrows(t *testing.T) {
	var mu sync.Mutex
	var frames []string
	done := make(chan string, 1)

	var q *Queue
	opts := fastOptions()
	opts.OnChange = func() {
		snap := q.Snapshot()
		if len(snap) == 0 {
			return
		}
		mu.Lock()
		frames = append(frames, snap[0].DisplayText)
		mu.Unlock()
	}
	opts.OnComplete = func(id, fullText string) { done <- id }

	q = NewQueue(opts)
	defer q.Close()

	q.Enqueue(Item{ID: "a", FullText: "héllo"})
	waitComplete(t, done, "a")

	mu.Lock()
	defer mu.Unlock()
	prev := ""
	for _, frame := range frames {
		if !strings.HasPrefix(frame, prev) {
			t.Fatalf("frame %q does not extend previous frame %q", frame, prev)
		}
		prev = frame
	}
	if prev != "héllo" {
		t.Errorf("final frame = %q, want the full text", prev)
	}
}

func TestQueueEmptyTextCompletes(t *testing.T) {
	done := make(chan string, 1)
	opts := fastOptions()
	opts.OnComplete = func(id, fullText string) { done <- id }

	q := NewQueue(opts)
	defer q.Close()

	q.Enqueue(Item{ID: "a", FullText: ""})
	waitComplete(t, done, "a")
}

func TestQueueCloseAbandonsWork(t *testing.T) {
	completed := make(chan string, 1)
	opts := fastOptions()
	opts.ThinkingPause = 50 * time.Millisecond
	opts.OnComplete = func(id, fullText string) { completed <- id }

	q := NewQueue(opts)
	q.Enqueue(Item{ID: "a", FullText: "never shown"})
	q.Close()

	select {
	case id := <-completed:
		t.Errorf("item %q completed after Close", id)
	case <-time.After(150 * time.Millisecond):
	}

	// Enqueue after Close is a no-op
	q.Enqueue(Item{ID: "b", FullText: "dropped"})
	if got := q.Snapshot(); got != nil {
		t.Errorf("closed queue has an active message: %+v", got)
	}
}
