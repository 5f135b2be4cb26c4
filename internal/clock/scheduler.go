package clock

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"
)

// Task runs when its scheduled time has been reached. now is the time passed to Fire.
type Task func(now time.Time)

type scheduled struct {
	when time.Time
	seq  uint64
	name string
	task Task
}

type eventQueue []*scheduled

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].when.Equal(q[j].when) {
		return q[i].seq < q[j].seq
	}
	return q[i].when.Before(q[j].when)
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*scheduled)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// Scheduler is a queue of (time, action) pairs. Nothing runs on its own:
// the host calls Fire with the current clock reading and every due task runs
// exactly once, in time order, on the caller's goroutine.
type Scheduler struct {
	mu    sync.Mutex
	queue eventQueue
	seq   uint64
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) At(when time.Time, name string, task Task) {
	if task == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	heap.Push(&s.queue, &scheduled{when: when, seq: s.seq, name: name, task: task})
}

func (s *Scheduler) After(now time.Time, d time.Duration, name string, task Task) {
	s.At(now.Add(d), name, task)
}

// Fire runs every task due at or before now and returns how many ran.
// Tasks scheduled by a running task are run in the same call if already due.
func (s *Scheduler) Fire(now time.Time) int {
	fired := 0
	for {
		item, ok := s.popDue(now)
		if !ok {
			return fired
		}
		slog.Debug("Scheduled task fired", "task", item.name, "late", now.Sub(item.when))
		item.task(now)
		fired++
	}
}

func (s *Scheduler) popDue(now time.Time) (*scheduled, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 || s.queue[0].when.After(now) {
		return nil, false
	}
	return heap.Pop(&s.queue).(*scheduled), true
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Next reports when the earliest pending task is due.
func (s *Scheduler) Next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].when, true
}
