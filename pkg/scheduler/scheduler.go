package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Task is a unit of periodic work. The context is cancelled on shutdown.
type Task func(ctx context.Context) error

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger for task runs.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLocation sets the time zone schedules are evaluated in. Default: UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Scheduler runs named tasks on cron schedules. A task never overlaps with
// its own previous run.
type Scheduler struct {
	ctx     context.Context
	cron    *cron.Cron
	log     *slog.Logger
	loc     *time.Location
	tasks   map[string]Task
	order   []string
	mu      sync.Mutex
	started bool
}

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// New creates a scheduler. Add tasks, then start it with Start or StartFunc.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:   context.Background(),
		log:   slog.New(slog.DiscardHandler),
		loc:   time.UTC,
		tasks: make(map[string]Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLocation(s.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return s
}

// Add registers task under name. spec accepts five or six fields and
// descriptors such as "@every 5m" or "@hourly".
func (s *Scheduler) Add(name, spec string, task Task) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyTaskName
	}
	if task == nil {
		return ErrNilTask
	}
	schedule, err := parser.Parse(spec)
	if err != nil {
		return errors.Join(fmt.Errorf("%w: %q", ErrInvalidSchedule, spec), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, name)
	}
	s.tasks[name] = task
	s.order = append(s.order, name)
	s.cron.Schedule(schedule, cron.FuncJob(func() { s.run(name, task) }))
	return nil
}

// Start begins running scheduled tasks. Runs receive ctx and stop being
// scheduled once it is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("scheduler started", slog.Int("tasks", len(s.order)))

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}

// StartFunc adapts Start to a server startup hook.
//
//	app.Run(addr, rpcgate.StartupHook(sched.StartFunc()), rpcgate.ShutdownHook(sched.Shutdown))
func (s *Scheduler) StartFunc() func(context.Context) error {
	return s.Start
}

// Shutdown stops scheduling and waits for running tasks until ctx is done.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return errors.Join(ErrShutdownTimedOut, ctx.Err())
	}
}

// RunNow executes the named task immediately in the caller's goroutine.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	task, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	return task(ctx)
}

// RunAll executes every task once, concurrently, and returns the joined
// failures. Useful to warm state at startup before the first tick.
func (s *Scheduler) RunAll(ctx context.Context) error {
	s.mu.Lock()
	names := append([]string(nil), s.order...)
	s.mu.Unlock()

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			if err := s.RunNow(gctx, name); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Tasks returns task names in registration order.
func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (s *Scheduler) run(name string, task Task) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "scheduled task panicked",
				slog.String("task", name),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	if err := task(ctx); err != nil {
		s.log.ErrorContext(ctx, "scheduled task failed",
			slog.String("task", name),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return
	}
	s.log.DebugContext(ctx, "scheduled task completed",
		slog.String("task", name),
		slog.Duration("duration", time.Since(start)),
	)
}
