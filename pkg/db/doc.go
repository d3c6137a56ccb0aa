// Package db opens the PostgreSQL pool used by the SQL rate-limit store and
// applies its goose migrations.
//
//	pool, err := db.Connect(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	if err := db.Migrate(ctx, pool, ratelimit.Migrations, "migrations", cfg.Database.MigrationsTable, log); err != nil {
//	    return err
//	}
//	store := ratelimit.NewPostgres(pool)
//
// Healthcheck and Shutdown return closures for the readiness endpoint and the
// server's shutdown hooks.
package db
