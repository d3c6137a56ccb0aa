// Package health serves liveness and readiness probes for rpcgate services.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs a set of named [Checks] concurrently and answers
// 503 if any of them fails. [Run] exposes the same evaluation for callers
// that need the aggregated [Response] without HTTP.
//
// Checks share the func(context.Context) error shape returned by
// redis.Healthcheck and db.Healthcheck:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second)))
//
// Plain text is the default response body. Send Accept: application/json or
// ?format=json for the structured form:
//
//	{"status":"unhealthy","checks":{"redis":{"status":"unhealthy","error":"health: check failed: ..."}}}
package health
