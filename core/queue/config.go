package queue

// Config holds configuration for the worker pool.
type Config struct {
	// Workers is the number of concurrent workers draining the queue.
	Workers int `mapstructure:"workers" default:"8"`
	// Buffer is the size of the job channel buffer.
	Buffer int `mapstructure:"buffer" default:"64"`
	// TaskTimeoutSeconds bounds each fan-out task; a timeout counts as a
	// task failure.
	TaskTimeoutSeconds int `mapstructure:"task_timeout_seconds" default:"30"`
}
