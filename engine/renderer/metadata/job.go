package metadata

/** @brief Runs on a worker goroutine. The result is handed to OnSuccess. */
type JobEntry func() (interface{}, error)

/** Definition for completion of a job. */
type JobOnComplete func(result interface{})

/** Definition for failure of a job. */
type JobOnFailure func(err error)

/**
 * @brief Describes a job to be run. EntryPoint runs on a worker;
 * OnSuccess and OnFail run on the thread that calls JobSystem.Update.
 */
type JobTask struct {
	/** @brief Used in log messages. */
	Name string
	/** @brief A function to be invoked when the job starts. Required. */
	EntryPoint JobEntry
	/** @brief A function to be invoked when the job successfully completes. Optional. */
	OnSuccess JobOnComplete
	/** @brief A function to be invoked when the job fails. Optional. */
	OnFail JobOnFailure
}

// The max number of job results that can wait for Update at once.
const MAX_JOB_RESULTS int = 512
