// Package typing paces the reveal of already-computed messages to a
// display surface, one character at a time, one message at a time.
package typing

import (
	"math/rand"
	"sync"
	"time"
)

// Timing defaults. The pause runs before every message; the per-character
// delay is drawn independently for each character so the rhythm never
// turns mechanical.
const (
	DefaultThinkingPause = 500 * time.Millisecond
	minCharDelay         = 20 * time.Millisecond
	maxCharDelay         = 35 * time.Millisecond
)

// Item is the unit of work submitted to the queue. Immutable; consumed
// exactly once.
type Item struct {
	ID       string
	FullText string
}

// Message is a snapshot of one in-progress reveal. DisplayText grows
// monotonically from empty to the full source text.
type Message struct {
	ID          string
	DisplayText string
	IsTyping    bool
}

// Options configures a Queue. Zero values use the defaults above.
type Options struct {
	// ThinkingPause runs before each message starts revealing.
	ThinkingPause time.Duration
	// CharDelay returns the delay before the next character. Injectable
	// so tests can collapse the timing without changing the algorithm.
	CharDelay func() time.Duration
	// OnComplete fires exactly once per item, in FIFO order, after the
	// final character is revealed and the message leaves the active set.
	OnComplete func(id, fullText string)
	// OnChange, if set, fires after every visible state change.
	OnChange func()
}

func randomCharDelay() time.Duration {
	return minCharDelay + time.Duration(rand.Int63n(int64(maxCharDelay-minCharDelay)))
}

// Queue reveals queued messages sequentially. At most one message is
// active at any instant; pending items wait their turn in submission
// order. All state is owned by the queue instance.
type Queue struct {
	opts Options

	mu         sync.Mutex
	pending    []Item
	active     *Message
	processing bool
	closed     bool

	quit chan struct{}
}

// NewQueue creates a typing queue.
func NewQueue(opts Options) *Queue {
	if opts.ThinkingPause <= 0 {
		opts.ThinkingPause = DefaultThinkingPause
	}
	if opts.CharDelay == nil {
		opts.CharDelay = randomCharDelay
	}
	return &Queue{
		opts: opts,
		quit: make(chan struct{}),
	}
}

// Enqueue appends items to the pending list. Safe to call while a
// previous batch is still animating; if the queue is idle, processing
// starts immediately.
func (q *Queue) Enqueue(items ...Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.pending = append(q.pending, items...)
	if !q.processing && len(q.pending) > 0 {
		q.processing = true
		go q.run()
	}
}

// Snapshot returns the currently-active messages (zero or one entry).
func (q *Queue) Snapshot() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active == nil {
		return nil
	}
	m := *q.active
	return []Message{m}
}

// Close stops the queue permanently. In-flight and pending items are
// abandoned without completion callbacks.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.quit)
}

// run is the single processor goroutine. It exits when the pending list
// drains or the queue closes; Enqueue restarts it.
func (q *Queue) run() {
	for {
		q.mu.Lock()
		if q.closed || len(q.pending) == 0 {
			q.processing = false
			q.mu.Unlock()
			return
		}
		item := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if !q.sleep(q.opts.ThinkingPause) {
			return
		}

		q.mu.Lock()
		if q.closed {
			q.processing = false
			q.mu.Unlock()
			return
		}
		q.active = &Message{ID: item.ID, IsTyping: true}
		q.mu.Unlock()
		q.notify()

		runes := []rune(item.FullText)
		for i := 1; i <= len(runes); i++ {
			if !q.sleep(q.opts.CharDelay()) {
				return
			}

			q.mu.Lock()
			if q.closed {
				q.processing = false
				q.mu.Unlock()
				return
			}
			q.active.DisplayText = string(runes[:i])
			q.mu.Unlock()
			q.notify()
		}

		q.mu.Lock()
		q.active = nil
		q.mu.Unlock()
		q.notify()

		if q.opts.OnComplete != nil {
			q.opts.OnComplete(item.ID, item.FullText)
		}
	}
}

// sleep waits for d, returning false if the queue closed first. The
// processing flag is cleared on the way out so a reopened queue could
// restart cleanly.
func (q *Queue) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-q.quit:
		q.mu.Lock()
		q.processing = false
		q.mu.Unlock()
		return false
	case <-timer.C:
		return true
	}
}

func (q *Queue) notify() {
	if q.opts.OnChange != nil {
		q.opts.OnChange()
	}
}
