package asset

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Result is delivered exactly once per request. When Err is set, Renderable
// holds the fallback.
type Result struct {
	Ref        string
	Renderable *Renderable
	Err        error
}

type Callback func(Result)

type completion struct {
	result Result
	cb     Callback
}

// Loader acquires renderables on a worker pool. Completions are queued and
// handed back on the caller's goroutine by Drain, so simulation state is only
// touched from the tick.
type Loader struct {
	source Source
	pool   *ants.Pool

	mu       sync.Mutex
	done     []completion
	inflight sync.WaitGroup
}

func NewLoader(source Source, workers int) (*Loader, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		slog.Error("Asset worker panicked", "panic", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("create asset pool: %w", err)
	}
	return &Loader{source: source, pool: pool}, nil
}

// Request starts acquiring ref and returns at once, even when every worker
// is busy: the request waits for a worker off the caller's goroutine. It never
// fails; a source error, a panic or a released pool resolve to the fallback.
func (l *Loader) Request(ref string, cb Callback) {
	l.inflight.Add(1)
	if l.source == nil {
		l.finish(ref, nil, fmt.Errorf("no asset source"), cb)
		return
	}
	go l.submit(ref, cb)
}

func (l *Loader) submit(ref string, cb Callback) {
	err := l.pool.Submit(func() {
		r, err := l.acquire(ref)
		l.finish(ref, r, err, cb)
	})
	if err != nil {
		l.finish(ref, nil, fmt.Errorf("submit %s: %w", ref, err), cb)
	}
}

func (l *Loader) acquire(ref string) (r *Renderable, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("acquire %s panicked: %v", ref, p)
		}
	}()
	r, err = l.source.Acquire(ref)
	if err == nil && r == nil {
		err = fmt.Errorf("acquire %s: empty result", ref)
	}
	return r, err
}

func (l *Loader) finish(ref string, r *Renderable, err error, cb Callback) {
	if err != nil {
		slog.Warn("Asset acquisition failed, using fallback", "ref", ref, "error", err)
		r = Fallback(ref)
	}
	l.mu.Lock()
	l.done = append(l.done, completion{result: Result{Ref: ref, Renderable: r, Err: err}, cb: cb})
	l.mu.Unlock()
	l.inflight.Done()
}

// Drain runs the callbacks of every completed request and returns how many ran.
func (l *Loader) Drain() int {
	l.mu.Lock()
	done := l.done
	l.done = nil
	l.mu.Unlock()

	for _, c := range done {
		if c.cb != nil {
			c.cb(c.result)
		}
	}
	return len(done)
}

// Wait blocks until every request issued so far has completed (not drained).
func (l *Loader) Wait() {
	l.inflight.Wait()
}

func (l *Loader) Release() {
	l.pool.Release()
}
