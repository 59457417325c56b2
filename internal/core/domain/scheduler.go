package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// Due reports whether an enabled task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed counts workflows imported or records audited.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration for a specific task.
// Returns a zero TaskConfig if the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig returns the defaults used by `flowhub serve`.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDRepoSync: {
				Enabled:  true,
				Interval: 1 * time.Hour,
			},
			TaskIDIndexAudit: {
				Enabled:  true,
				Interval: 24 * time.Hour,
			},
		},
	}
}

// Task IDs for built-in tasks.
const (
	TaskIDRepoSync   = "repo-sync"
	TaskIDIndexAudit = "index-audit"
)
