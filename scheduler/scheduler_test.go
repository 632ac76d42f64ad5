package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNop() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func count(n *int32) TaskFn {
	return func(context.Context) error {
		atomic.AddInt32(n, 1)
		return nil
	}
}

func TestAddTicker_Fires(t *testing.T) {
	s := New(newNop())
	defer s.Stop()

	var n int32
	s.AddTicker("tick", 20*time.Millisecond, 0, count(&n))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&n) >= 3 }, time.Second, 10*time.Millisecond)
}

func TestAddTicker_Replaces(t *testing.T) {
	s := New(newNop())
	defer s.Stop()

	var count1, count2 int32
	s.AddTicker("task", 20*time.Millisecond, 0, count(&count1))
	time.Sleep(30 * time.Millisecond)
	s.AddTicker("task", 20*time.Millisecond, 0, count(&count2))
	time.Sleep(80 * time.Millisecond)

	// Old ticker should have stopped, new one should be running
	snap1 := atomic.LoadInt32(&count1)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap1, atomic.LoadInt32(&count1), "old ticker must stop after replacement")
	assert.Positive(t, atomic.LoadInt32(&count2))
}

func TestTicker_Timeout(t *testing.T) {
	s := New(newNop())
	defer s.Stop()

	var timedOut int32
	s.AddTicker("slow", 10*time.Millisecond, 5*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			atomic.StoreInt32(&timedOut, 1)
		}
		return ctx.Err()
	})
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&timedOut) == 1 }, time.Second, 5*time.Millisecond)
}

func TestRemove_Ticker(t *testing.T) {
	s := New(newNop())
	defer s.Stop()

	var n int32
	s.AddTicker("task", 20*time.Millisecond, 0, count(&n))
	time.Sleep(50 * time.Millisecond)
	s.Remove("task")
	time.Sleep(30 * time.Millisecond)
	snap := atomic.LoadInt32(&n)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&n), "ticker must stop after Remove")
}

func TestRemove_NonExistent(t *testing.T) {
	s := New(newNop())
	defer s.Stop()
	// Must not panic
	s.Remove("nope")
}

func TestStop_WaitsForRunningTask(t *testing.T) {
	s := New(newNop())

	var started, finished int32
	s.AddTicker("long", 10*time.Millisecond, time.Hour, func(ctx context.Context) error {
		atomic.StoreInt32(&started, 1)
		<-ctx.Done()
		atomic.StoreInt32(&finished, 1)
		return nil
	})
	require.Eventually(t, func() bool { return atomic.LoadInt32(&started) == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&finished), "Stop returns only after the run ends")
}

func TestStop_Idempotent(t *testing.T) {
	s := New(newNop())
	s.Stop()
	s.Stop() // must not panic on double-stop
}

func TestListTickers(t *testing.T) {
	s := New(newNop())
	defer s.Stop()

	require.Empty(t, s.ListTickers())
	s.AddTicker("beta", time.Hour, 0, count(new(int32)))
	s.AddTicker("alpha", time.Hour, 0, count(new(int32)))
	assert.Equal(t, []string{"alpha", "beta"}, s.ListTickers())

	s.Remove("alpha")
	assert.Equal(t, []string{"beta"}, s.ListTickers())
}

func TestTicker_PanicAndErrorKeepRunning(t *testing.T) {
	s := New(newNop())
	defer s.Stop()

	var runs int32
	s.AddTicker("flaky", 10*time.Millisecond, 0, func(context.Context) error {
		switch atomic.AddInt32(&runs, 1) {
		case 1:
			panic("oops")
		case 2:
			return errors.New("boom")
		}
		return nil
	})
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 3 }, time.Second, 5*time.Millisecond)
}
