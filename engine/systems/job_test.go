package systems

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

func TestNewJobSystemRejectsBadSizes(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

// collect drains results until want callbacks ran or the deadline passes.
func collect(t *testing.T, js *JobSystem, want int) {
	t.Helper()
	ran := 0
	require.Eventually(t, func() bool {
		ran += js.Update()
		return ran >= want
	}, 2*time.Second, time.Millisecond)
}

func TestCallbacksRunOnUpdate(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	var got []int
	var failed error
	boom := errors.New("boom")

	for i := 1; i <= 3; i++ {
		i := i
		require.NoError(t, js.Submit(metadata.JobTask{
			Name:       "square",
			EntryPoint: func() (interface{}, error) { return i * i, nil },
			OnSuccess:  func(r interface{}) { got = append(got, r.(int)) },
		}))
	}
	require.NoError(t, js.Submit(metadata.JobTask{
		Name:       "broken",
		EntryPoint: func() (interface{}, error) { return nil, boom },
		OnFail:     func(err error) { failed = err },
	}))

	collect(t, js, 4)
	assert.ElementsMatch(t, []int{1, 4, 9}, got)
	assert.ErrorIs(t, failed, boom)
}

func TestJobsWithoutCallbacksProduceNoResults(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)

	ran := make(chan struct{})
	require.NoError(t, js.Submit(metadata.JobTask{
		EntryPoint: func() (interface{}, error) { close(ran); return nil, nil },
	}))
	<-ran
	require.NoError(t, js.Shutdown())

	assert.Zero(t, js.Update())
}

func TestShutdownDropsUnstartedJobs(t *testing.T) {
	js, err := NewJobSystem(1, 2)
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, js.Submit(metadata.JobTask{EntryPoint: func() (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	}}))
	<-started

	var queuedRan atomic.Bool
	require.NoError(t, js.Submit(metadata.JobTask{
		EntryPoint: func() (interface{}, error) { queuedRan.Store(true); return nil, nil },
		OnSuccess:  func(interface{}) {},
	}))

	done := make(chan struct{})
	go func() {
		_ = js.Shutdown()
		close(done)
	}()
	// Shutdown marks the pool closed before it waits for the running job.
	require.Eventually(t, func() bool {
		_, err := js.TrySubmit(metadata.JobTask{EntryPoint: func() (interface{}, error) { return nil, nil }})
		return errors.Is(err, ErrJobSystemClosed)
	}, 2*time.Second, time.Millisecond)
	close(release)
	<-done

	assert.False(t, queuedRan.Load())
	assert.Zero(t, js.Update())
}

func TestSubmitValidation(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, js.Submit(metadata.JobTask{Name: "empty"}), ErrJobWithoutEntry)
	_, err = js.TrySubmit(metadata.JobTask{Name: "empty"})
	assert.ErrorIs(t, err, ErrJobWithoutEntry)

	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	job := metadata.JobTask{EntryPoint: func() (interface{}, error) { return nil, nil }}
	assert.ErrorIs(t, js.Submit(job), ErrJobSystemClosed)
	_, err = js.TrySubmit(job)
	assert.ErrorIs(t, err, ErrJobSystemClosed)
}

func TestTrySubmitReportsFullQueue(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	blocker := metadata.JobTask{EntryPoint: func() (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	}}
	idle := metadata.JobTask{EntryPoint: func() (interface{}, error) { return nil, nil }}

	ok, err := js.TrySubmit(blocker)
	require.NoError(t, err)
	require.True(t, ok)
	<-started

	ok, err = js.TrySubmit(idle)
	require.NoError(t, err)
	assert.True(t, ok, "one slot is buffered")

	ok, err = js.TrySubmit(idle)
	require.NoError(t, err)
	assert.False(t, ok)

	close(release)
	require.NoError(t, js.Shutdown())
}
