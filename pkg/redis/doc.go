// Package redis opens the shared Redis client used by rpcgate services.
//
// The client backs the distributed rate-limit counters (see
// [github.com/dmitrymomot/rpcgate/pkg/ratelimit.Redis]) and is probed by the
// readiness endpoint. Connection settings come from [Config], which carries
// koanf tags so it can be embedded in a service configuration struct:
//
//	type Config struct {
//	    Redis redis.Config `koanf:"redis"`
//	}
//
// Open pings the server before returning and retries with a linear backoff
// while the context allows it:
//
//	client, err := redis.Open(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//
//	app := rpcgate.New(
//	    rpcgate.WithHealthChecks(
//	        rpcgate.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	    ),
//	)
//	return app.Run(":7001", rpcgate.ShutdownHook(redis.Shutdown(client)))
//
// Only redis:// and rediss:// (TLS) URLs are accepted.
package redis
