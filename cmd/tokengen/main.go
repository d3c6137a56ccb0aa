// Command tokengen mints development access tokens for the auth service.
// The secret and issuer default to the auth service's AUTH_JWT__* settings.
//
//	tokengen -sub user-123 -email user@example.com -role ADMIN
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/rpcgate"
	"github.com/dmitrymomot/rpcgate/pkg/config"
	"github.com/dmitrymomot/rpcgate/pkg/jwt"
)

var errMissingSecret = errors.New("tokengen: JWT secret is required (-secret or AUTH_JWT__SECRET)")

type jwtConfig struct {
	Secret string        `koanf:"secret"`
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("failed to issue token", "error", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	env := struct {
		JWT jwtConfig `koanf:"jwt"`
	}{JWT: jwtConfig{Issuer: "rpcgate", TTL: time.Hour}}
	if err := config.Load("AUTH_", &env, config.WithEnvFiles(".env")); err != nil {
		return err
	}

	mock := rpcgate.MockUser()
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	fs.SetOutput(out)
	secret := fs.String("secret", env.JWT.Secret, "HMAC secret")
	issuer := fs.String("issuer", env.JWT.Issuer, "token issuer")
	ttl := fs.Duration("ttl", env.JWT.TTL, "token lifetime")
	sub := fs.String("sub", mock.ID, "user ID")
	email := fs.String("email", mock.Email, "user email")
	role := fs.String("role", mock.Role.String(), "user role")
	status := fs.String("status", mock.Status.String(), "account status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *secret == "" {
		return errMissingSecret
	}
	r, err := rpcgate.ParseRole(*role)
	if err != nil {
		return err
	}
	st, err := rpcgate.ParseStatus(*status)
	if err != nil {
		return err
	}

	svc, err := jwt.New(*secret, jwt.WithIssuer(*issuer), jwt.WithTTL(*ttl))
	if err != nil {
		return err
	}
	token, err := rpcgate.IssueToken(svc, rpcgate.User{ID: *sub, Email: *email, Role: r, Status: st})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
