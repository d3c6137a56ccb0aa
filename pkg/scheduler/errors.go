package scheduler

import "errors"

var (
	ErrEmptyTaskName    = errors.New("scheduler: empty task name")
	ErrNilTask          = errors.New("scheduler: nil task")
	ErrDuplicateTask    = errors.New("scheduler: task already registered")
	ErrInvalidSchedule  = errors.New("scheduler: invalid schedule")
	ErrAlreadyStarted   = errors.New("scheduler: already started")
	ErrTaskNotFound     = errors.New("scheduler: task not found")
	ErrShutdownTimedOut = errors.New("scheduler: running tasks did not finish before shutdown deadline")
)
