package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/pkg/scheduler"
)

func TestAdd(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }

	s := scheduler.New()
	require.NoError(t, s.Add("prune", "@every 5m", noop))
	require.NoError(t, s.Add("report", "0 3 * * *", noop))

	require.ErrorIs(t, s.Add(" ", "@hourly", noop), scheduler.ErrEmptyTaskName)
	require.ErrorIs(t, s.Add("nil", "@hourly", nil), scheduler.ErrNilTask)
	require.ErrorIs(t, s.Add("bad", "every tuesday", noop), scheduler.ErrInvalidSchedule)
	require.ErrorIs(t, s.Add("prune", "@hourly", noop), scheduler.ErrDuplicateTask)

	assert.Equal(t, []string{"prune", "report"}, s.Tasks())
}

func TestRunNowAndRunAll(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	boom := errors.New("boom")

	s := scheduler.New()
	require.NoError(t, s.Add("ok", "@hourly", func(context.Context) error {
		calls.Add(1)
		return nil
	}))
	require.NoError(t, s.Add("fails", "@hourly", func(context.Context) error {
		calls.Add(1)
		return boom
	}))

	require.NoError(t, s.RunNow(context.Background(), "ok"))
	require.ErrorIs(t, s.RunNow(context.Background(), "missing"), scheduler.ErrTaskNotFound)

	err := s.RunAll(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fails")
	assert.Equal(t, int32(3), calls.Load())
}

func TestStartRunsScheduledTasks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 1)
	s := scheduler.New()
	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))

	require.NoError(t, s.StartFunc()(ctx))
	require.ErrorIs(t, s.Start(ctx), scheduler.ErrAlreadyStarted)

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled task did not run")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	require.NoError(t, s.Shutdown(shutdownCtx))
}
