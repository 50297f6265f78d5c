package throttle

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultSpacing    = 100 * time.Millisecond
	DefaultBatchLimit = 10
	DefaultCooldown   = 1000 * time.Millisecond
)

type Config struct {
	Spacing    time.Duration
	BatchLimit int
	Cooldown   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Spacing:    DefaultSpacing,
		BatchLimit: DefaultBatchLimit,
		Cooldown:   DefaultCooldown,
	}
}

type job struct {
	run func()
}

// Throttler runs queued tasks one at a time in FIFO order. Consecutive task
// starts are at least Spacing apart, whether or not the next task was already
// waiting, and after BatchLimit tasks the gap grows by Cooldown.
type Throttler struct {
	cfg   Config
	sleep func(time.Duration)
	now   func() time.Time

	mu        sync.Mutex
	queue     []job
	draining  bool
	processed int
	lastStart time.Time
}

func New(cfg Config) *Throttler {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = DefaultBatchLimit
	}
	if cfg.Spacing < 0 {
		cfg.Spacing = 0
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	return &Throttler{cfg: cfg, sleep: time.Sleep, now: time.Now}
}

// Schedule queues fn and blocks until it has run. If ctx ends first the
// caller gets ctx.Err(); the task keeps its place and still runs.
func Schedule[T any](ctx context.Context, t *Throttler, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)

	t.add(job{run: func() {
		v, err := fn(ctx)
		done <- result{val: v, err: err}
	}})

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (t *Throttler) add(j job) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.queue = append(t.queue, j)
	if !t.draining {
		t.draining = true
		go t.drain()
	}
}

// Size is the number of tasks waiting to start.
func (t *Throttler) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

func (t *Throttler) drain() {
	for {
		j, ok := t.next()
		if !ok {
			return
		}
		j.run()
	}
}

// next waits until the head of the queue may start and dequeues it. Only the
// draining worker removes tasks, so the head survives the wait.
func (t *Throttler) next() (job, bool) {
	t.mu.Lock()
	if len(t.queue) == 0 {
		t.draining = false
		t.mu.Unlock()
		return job{}, false
	}

	gap := t.cfg.Spacing
	if t.processed >= t.cfg.BatchLimit {
		slog.Debug("throttle: batch limit reached, cooling down",
			"batch_limit", t.cfg.BatchLimit, "cooldown", t.cfg.Cooldown)
		gap += t.cfg.Cooldown
		t.processed = 0
	}
	var wait time.Duration
	if !t.lastStart.IsZero() {
		wait = gap - t.now().Sub(t.lastStart)
	}
	t.mu.Unlock()

	if wait > 0 {
		slog.Debug("throttle: waiting before next request", "wait", wait)
		t.sleep(wait)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	j := t.queue[0]
	t.queue = t.queue[1:]
	t.lastStart = t.now()
	t.processed++
	return j, true
}
