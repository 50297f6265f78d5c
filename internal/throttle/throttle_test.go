package throttle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slack absorbs the delay between a task being released and it reading the
// clock.
const slack = time.Millisecond

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// gate occupies the worker until the returned func is called.
func gate(t *testing.T, th *Throttler) func() {
	t.Helper()
	running := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = Schedule(context.Background(), th, func(context.Context) (bool, error) {
			close(running)
			<-release
			return true, nil
		})
	}()
	<-running
	return func() { close(release) }
}

func TestScheduleReturnsTaskResult(t *testing.T) {
	th := New(Config{Spacing: time.Millisecond, BatchLimit: 10, Cooldown: time.Millisecond})

	got, err := Schedule(context.Background(), th, func(context.Context) (string, error) {
		return "A. Author, B. Author", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "A. Author, B. Author", got)
}

func TestScheduleFailureDoesNotAbortSiblings(t *testing.T) {
	th := New(Config{Spacing: time.Millisecond, BatchLimit: 10, Cooldown: time.Millisecond})
	boom := errors.New("boom")

	release := gate(t, th)
	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = Schedule(context.Background(), th, func(context.Context) (int, error) {
				if i == 1 {
					return 0, boom
				}
				return i, nil
			})
		}(i)
		waitFor(t, func() bool { return th.Size() == i+1 })
	}
	release()
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], boom)
	assert.NoError(t, errs[2])
}

func TestTasksRunInSubmissionOrderOneAtATime(t *testing.T) {
	th := New(Config{Spacing: 2 * time.Millisecond, BatchLimit: 4, Cooldown: 5 * time.Millisecond})

	var (
		mu      sync.Mutex
		order   []int
		running int
		overlap bool
	)
	release := gate(t, th)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = Schedule(context.Background(), th, func(context.Context) (struct{}, error) {
				mu.Lock()
				running++
				if running > 1 {
					overlap = true
				}
				order = append(order, i)
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return struct{}{}, nil
			})
		}(i)
		waitFor(t, func() bool { return th.Size() == i+1 })
	}
	release()
	wg.Wait()

	assert.False(t, overlap)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
}

func TestPacingAndBatchCooldown(t *testing.T) {
	const (
		spacing  = 15 * time.Millisecond
		cooldown = 60 * time.Millisecond
		limit    = 3
		n        = 7
	)
	th := New(Config{Spacing: spacing, BatchLimit: limit, Cooldown: cooldown})

	var (
		mu     sync.Mutex
		starts []time.Time
	)
	release := gate(t, th)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Schedule(context.Background(), th, func(context.Context) (bool, error) {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return true, nil
			})
		}()
		waitFor(t, func() bool { return th.Size() == i+1 })
	}
	release()
	wg.Wait()

	require.Len(t, starts, n)
	for i := 1; i < n; i++ {
		gap := starts[i].Sub(starts[i-1])
		assert.GreaterOrEqual(t, gap, spacing-slack, "gap before task %d", i)
		// The gate is the first task of the first batch.
		if (i+1)%limit == 0 {
			assert.GreaterOrEqual(t, gap, spacing+cooldown-slack, "cooldown before task %d", i)
		}
	}
}

func TestScheduleWhileDrainingIsPickedUp(t *testing.T) {
	th := New(Config{Spacing: time.Millisecond, BatchLimit: 10, Cooldown: time.Millisecond})

	inner := make(chan string, 1)
	_, err := Schedule(context.Background(), th, func(context.Context) (bool, error) {
		go func() {
			v, _ := Schedule(context.Background(), th, func(context.Context) (string, error) {
				return "second", nil
			})
			inner <- v
		}()
		return true, nil
	})
	require.NoError(t, err)

	select {
	case v := <-inner:
		assert.Equal(t, "second", v)
	case <-time.After(time.Second):
		t.Fatal("task scheduled while draining never ran")
	}
	assert.Zero(t, th.Size())
}

func TestScheduleCallerContextCancelled(t *testing.T) {
	th := New(Config{Spacing: time.Millisecond, BatchLimit: 10, Cooldown: time.Millisecond})
	release := gate(t, th)

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		_, err := Schedule(ctx, th, func(context.Context) (bool, error) {
			close(ran)
			return true, nil
		})
		errc <- err
	}()
	waitFor(t, func() bool { return th.Size() == 1 })
	cancel()

	assert.ErrorIs(t, <-errc, context.Canceled)
	release()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("abandoned task did not run")
	}
}

func runSerially(t *testing.T, th *Throttler, n int) []time.Time {
	t.Helper()
	var starts []time.Time
	for i := 0; i < n; i++ {
		_, err := Schedule(context.Background(), th, func(context.Context) (bool, error) {
			starts = append(starts, time.Now())
			return true, nil
		})
		require.NoError(t, err)
	}
	return starts
}

func TestSerialCallersArePaced(t *testing.T) {
	const spacing = 25 * time.Millisecond
	th := New(Config{Spacing: spacing, BatchLimit: 100, Cooldown: time.Millisecond})

	starts := runSerially(t, th, 4)

	require.Len(t, starts, 4)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), spacing-slack, "gap before task %d", i)
	}
}

func TestSerialCallersCoolDownAfterBatch(t *testing.T) {
	const (
		spacing  = 5 * time.Millisecond
		cooldown = 40 * time.Millisecond
		limit    = 2
	)
	th := New(Config{Spacing: spacing, BatchLimit: limit, Cooldown: cooldown})

	starts := runSerially(t, th, 5)

	for i := 1; i < len(starts); i++ {
		gap := starts[i].Sub(starts[i-1])
		assert.GreaterOrEqual(t, gap, spacing-slack, "gap before task %d", i)
		if i%limit == 0 {
			assert.GreaterOrEqual(t, gap, spacing+cooldown-slack, "cooldown before task %d", i)
		}
	}
}

func TestIdleTimeCountsTowardsSpacing(t *testing.T) {
	th := New(Config{Spacing: time.Second, BatchLimit: 100, Cooldown: time.Second})

	var (
		mu    sync.Mutex
		waits []time.Duration
	)
	clock := time.Unix(1_700_000_000, 0)
	th.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	th.sleep = func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		waits = append(waits, d)
		clock = clock.Add(d)
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(d)
	}

	runSerially(t, th, 1)
	advance(300 * time.Millisecond)
	runSerially(t, th, 1)
	advance(5 * time.Second)
	runSerially(t, th, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []time.Duration{700 * time.Millisecond}, waits)
}
