// Package procedures holds the procedures exposed by the auth service.
package procedures

import (
	"time"

	"github.com/dmitrymomot/rpcgate"
)

// HealthName is the registered name of the health procedure.
const HealthName = "health"

// HealthStatus is returned by the health procedure.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health is a public query reporting that the service is up.
// The timestamp is ISO-8601 UTC with millisecond precision.
func Health(stack *rpcgate.Stack) *rpcgate.Procedure {
	return HealthAt(stack, time.Now)
}

// HealthAt is Health with an injectable clock.
func HealthAt(stack *rpcgate.Stack, now func() time.Time) *rpcgate.Procedure {
	return stack.Public().Query(HealthName, func(rpcgate.Context) (any, error) {
		return HealthStatus{
			Status:    "ok",
			Timestamp: now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		}, nil
	})
}
