package scheduler

import (
	"errors"
	"fmt"
)

// SchedulerError defines the interface for scheduler-specific errors
type SchedulerError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

type schedulerError struct {
	code      string
	message   string
	temporary bool
}

func (e *schedulerError) Error() string {
	return fmt.Sprintf("scheduler error [%s]: %s", e.code, e.message)
}

func (e *schedulerError) Code() string {
	return e.code
}

func (e *schedulerError) Message() string {
	return e.message
}

func (e *schedulerError) Temporary() bool {
	return e.temporary
}

// Error codes
const (
	ErrSchedulerNotRunning     = "scheduler_not_running"
	ErrSchedulerAlreadyRunning = "scheduler_already_running"
	ErrInvalidConfiguration    = "invalid_configuration"
	ErrJobFailed               = "job_failed"
	ErrJobPanic                = "job_panic"
	ErrShutdownTimeout         = "shutdown_timeout"
)

// JobError reports a failed or panicking job run. The job keeps its schedule.
type JobError struct {
	schedulerError
	Job   string
	cause error
}

func (e *JobError) Unwrap() error {
	return e.cause
}

type ShutdownError struct {
	schedulerError
	TimeoutSeconds int
}

type ConfigurationError struct {
	schedulerError
	Field string
	Value interface{}
}

func NewSchedulerError(code, message string) error {
	return &schedulerError{code: code, message: message}
}

func NewJobError(job string, err error) error {
	return &JobError{
		schedulerError: schedulerError{
			code:      ErrJobFailed,
			message:   fmt.Sprintf("job %s failed: %v", job, err),
			temporary: true,
		},
		Job:   job,
		cause: err,
	}
}

func NewJobPanicError(job string, recovered interface{}) error {
	return &JobError{
		schedulerError: schedulerError{
			code:      ErrJobPanic,
			message:   fmt.Sprintf("job %s panicked: %v", job, recovered),
			temporary: true,
		},
		Job: job,
	}
}

func NewShutdownError(message string, timeoutSeconds int) error {
	return &ShutdownError{
		schedulerError: schedulerError{
			code:    ErrShutdownTimeout,
			message: message,
		},
		TimeoutSeconds: timeoutSeconds,
	}
}

func NewConfigurationError(field string, value interface{}, message string) error {
	return &ConfigurationError{
		schedulerError: schedulerError{
			code:    ErrInvalidConfiguration,
			message: fmt.Sprintf("invalid configuration for field %s (value: %v): %s", field, value, message),
		},
		Field: field,
		Value: value,
	}
}

// IsTemporaryError reports whether a later run may succeed
func IsTemporaryError(err error) bool {
	var schedErr SchedulerError
	if errors.As(err, &schedErr) {
		return schedErr.Temporary()
	}
	return false
}

func IsConfigurationError(err error) bool {
	var schedErr SchedulerError
	if errors.As(err, &schedErr) {
		return schedErr.Code() == ErrInvalidConfiguration
	}
	return false
}
