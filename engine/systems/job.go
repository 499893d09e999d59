package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// JobSystem runs job entry points on a fixed set of workers and hands their results
// back to the thread calling Update, which is where GPU uploads must happen.
type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	results    chan func()
	done       chan struct{}
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var (
	ErrNoWorkers           = fmt.Errorf("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
	ErrJobSystemClosed     = errors.New("job system is shut down")
	ErrJobWithoutEntry     = errors.New("job has no entry point")
)

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan metadata.JobTask, channelSize),
		results:    make(chan func(), metadata.MAX_JOB_RESULTS),
		done:       make(chan struct{}),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				select {
				case <-js.done:
					continue
				default:
				}
				if cb := js.run(job); cb != nil {
					select {
					case js.results <- cb:
					case <-js.done:
					}
				}
			}
		}()
	}
}

// run executes the entry point and returns the callback to be invoked by Update, if any.
func (js *JobSystem) run(job metadata.JobTask) func() {
	result, err := job.EntryPoint()
	if err != nil {
		core.LogError("job `%s` failed: %s", job.Name, err)
		if job.OnFail == nil {
			return nil
		}
		return func() { job.OnFail(err) }
	}
	if job.OnSuccess == nil {
		return nil
	}
	return func() { job.OnSuccess(result) }
}

/**
 * @brief Shuts the job system down. Queued jobs that have not started are dropped,
 * as are results nobody collected.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.done)
	close(js.jobQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}

/**
 * @brief Runs the callbacks of finished jobs on the calling goroutine. Should happen once an update cycle.
 * Returns how many ran.
 */
func (js *JobSystem) Update() int {
	n := 0
	for {
		select {
		case cb := <-js.results:
			cb()
			n++
		default:
			return n
		}
	}
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	if jt.EntryPoint == nil {
		return ErrJobWithoutEntry
	}
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- jt
	return nil
}

// TrySubmit queues the job only if there is room. It never blocks.
func (js *JobSystem) TrySubmit(jt metadata.JobTask) (bool, error) {
	if jt.EntryPoint == nil {
		return false, ErrJobWithoutEntry
	}
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return false, ErrJobSystemClosed
	}
	select {
	case js.jobQueue <- jt:
		return true, nil
	default:
		return false, nil
	}
}
