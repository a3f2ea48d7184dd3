package clockx_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabsession/pkg/clockx"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestFakeAdvanceFiresInOrder(t *testing.T) {
	clk := clockx.NewFake(epoch)

	var fired []string
	clk.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	clk.AfterFunc(1*time.Second, func() { fired = append(fired, "a") })
	clk.AfterFunc(5*time.Second, func() { fired = append(fired, "c") })

	clk.Advance(3 * time.Second)
	require.Equal(t, []string{"a", "b"}, fired)
	require.Equal(t, epoch.Add(3*time.Second), clk.Now())
	require.Equal(t, 1, clk.Pending())

	clk.Advance(2 * time.Second)
	require.Equal(t, []string{"a", "b", "c"}, fired)
}

func TestFakeNowIsDeadlineInsideCallback(t *testing.T) {
	clk := clockx.NewFake(epoch)

	var at time.Time
	clk.AfterFunc(time.Minute, func() { at = clk.Now() })
	clk.Advance(time.Hour)

	require.Equal(t, epoch.Add(time.Minute), at)
}

func TestFakeStop(t *testing.T) {
	clk := clockx.NewFake(epoch)

	called := false
	timer := clk.AfterFunc(time.Second, func() { called = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop(), "second stop reports already stopped")

	clk.Advance(time.Minute)
	require.False(t, called)
}

func TestFakeRescheduleFromCallback(t *testing.T) {
	clk := clockx.NewFake(epoch)

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			clk.AfterFunc(time.Second, tick)
		}
	}
	clk.AfterFunc(time.Second, tick)

	clk.Advance(10 * time.Second)
	require.Equal(t, 3, count)
}

func TestSleep(t *testing.T) {
	t.Run("zero duration returns immediately", func(t *testing.T) {
		require.NoError(t, clockx.Sleep(context.Background(), clockx.System, 0))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := clockx.Sleep(ctx, clockx.NewFake(epoch), time.Hour)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("fake clock wakes sleeper", func(t *testing.T) {
		clk := clockx.NewFake(epoch)
		done := make(chan error, 1)
		go func() { done <- clockx.Sleep(context.Background(), clk, time.Second) }()

		require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
		clk.Advance(time.Second)
		require.NoError(t, <-done)
	})
}
