package procedures

import (
	"log/slog"

	"github.com/dmitrymomot/rpcgate"
	"github.com/dmitrymomot/rpcgate/middlewares"
	"github.com/dmitrymomot/rpcgate/pkg/validator"
)

// RegisterName is the registered name of the register procedure.
const RegisterName = "register"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// RegisterInput is the input of the register procedure.
type RegisterInput struct {
	Email     string `json:"email" sanitize:"email"`
	Password  string `json:"password" sanitize:"-"`
	FirstName string `json:"firstName" sanitize:"strip_html,spaces"`
	LastName  string `json:"lastName" sanitize:"strip_html,spaces"`
	Phone     string `json:"phone,omitempty" sanitize:"trim"`
}

// RegisterSchema parses and validates RegisterInput.
var RegisterSchema = middlewares.JSONSchema(func(in RegisterInput) []validator.Rule {
	return []validator.Rule{
		validator.Email("email", in.Email),
		validator.MinLenString("password", in.Password, MinPasswordLength),
		validator.MaxLenString("password", in.Password, 128),
		validator.RequiredString("firstName", in.FirstName),
		validator.MaxLenString("firstName", in.FirstName, 100),
		validator.RequiredString("lastName", in.LastName),
		validator.MaxLenString("lastName", in.LastName, 100),
		validator.When(in.Phone != "", validator.Phone("phone", in.Phone)),
	}
})

// Register is a public mutation guarded by the auth rate limit (5 attempts
// per 15 minutes per IP and email). It only validates and logs the request;
// there is no user store behind it.
func Register(stack *rpcgate.Stack, log *slog.Logger) *rpcgate.Procedure {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	b := rpcgate.Validated(stack.WithRateLimit(middlewares.AuthRateLimit()).Public(), RegisterSchema)
	return b.Mutation(RegisterName, rpcgate.Handle(func(c rpcgate.Context, in RegisterInput) (any, error) {
		log.InfoContext(c.Context(), "user registered",
			slog.String("email", in.Email),
			slog.String("ip", c.IP()),
		)
		return nil, nil
	}))
}
