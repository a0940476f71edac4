package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smritirangarajan/spenderella/internal/jobs"
)

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	var (
		ok     atomic.Int32
		failed atomic.Int32
		panics atomic.Int32
	)

	ctx, cancel := context.WithCancel(context.Background())

	s := jobs.NewScheduler(
		jobs.Job{Name: "ok", Interval: 5 * time.Millisecond, Run: func(context.Context) (int, error) {
			ok.Add(1)
			return 1, nil
		}},
		jobs.Job{Name: "failing", Interval: 5 * time.Millisecond, Run: func(context.Context) (int, error) {
			failed.Add(1)
			return 0, errors.New("boom")
		}},
		jobs.Job{Name: "panicking", Interval: 5 * time.Millisecond, Run: func(context.Context) (int, error) {
			panics.Add(1)
			panic("bad")
		}},
		jobs.Job{Name: "disabled", Interval: 0, Run: func(context.Context) (int, error) {
			t.Error("disabled job ran")
			return 0, nil
		}},
	)

	s.Start(ctx)

	assert.Eventually(t, func() bool {
		return ok.Load() >= 3 && failed.Load() >= 3 && panics.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
