// Package scheduler runs periodic maintenance tasks, such as pruning expired
// SQL rate-limit counters, on cron schedules.
//
//	sched := scheduler.New(scheduler.WithLogger(log))
//	_ = sched.Add("prune-rate-limits", "@every 5m", func(ctx context.Context) error {
//	    _, err := store.Prune(ctx)
//	    return err
//	})
package scheduler
