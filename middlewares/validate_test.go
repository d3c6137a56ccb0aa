package middlewares_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rpcgate/internal"
	"github.com/dmitrymomot/rpcgate/middlewares"
	"github.com/dmitrymomot/rpcgate/pkg/validator"
)

type signupInput struct {
	Email    string `json:"email" sanitize:"email"`
	Password string `json:"password"`
	Name     string `json:"name" sanitize:"strip_html,spaces"`
}

var signupSchema = middlewares.JSONSchema(func(in signupInput) []validator.Rule {
	return []validator.Rule{
		validator.Email("email", in.Email),
		validator.MinLenString("password", in.Password, 8),
		validator.RequiredString("name", in.Name),
	}
})

func TestValidate(t *testing.T) {
	t.Parallel()

	echo := internal.Handle(func(_ internal.Context, in signupInput) (signupInput, error) {
		return in, nil
	})

	t.Run("valid input reaches the handler typed and sanitized", func(t *testing.T) {
		t.Parallel()

		c := anonymous("signup").WithRawInput(json.RawMessage(
			`{"email":" Jane@Example.com ","password":"correct-horse","name":"<b>Jane</b>  Doe","extra":1}`))
		res, err := call(c, echo, middlewares.Validate(signupSchema))
		require.NoError(t, err)
		assert.Equal(t, signupInput{Email: "jane@example.com", Password: "correct-horse", Name: "Jane Doe"}, res)
	})

	t.Run("rule failures carry details", func(t *testing.T) {
		t.Parallel()

		c := anonymous("signup").WithRawInput(json.RawMessage(`{"email":"nope","password":"short","name":"J"}`))
		_, err := call(c, echo, middlewares.Validate(signupSchema))

		ae := internal.AsAppError(err)
		require.NotNil(t, ae)
		assert.Equal(t, internal.KindValidation, ae.Kind)
		assert.Equal(t, middlewares.MsgInvalidInput, ae.Message)

		ve, ok := ae.Details.(validator.ValidationErrors)
		require.True(t, ok)
		assert.True(t, ve.Has("email"))
		assert.True(t, ve.Has("password"))
		assert.False(t, ve.Has("name"))
	})

	t.Run("missing input fails the rules", func(t *testing.T) {
		t.Parallel()

		_, err := call(anonymous("signup"), echo, middlewares.Validate(signupSchema))
		require.True(t, internal.IsKind(err, internal.KindValidation))
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()

		c := anonymous("signup").WithRawInput(json.RawMessage(`{"email":42}`))
		_, err := call(c, echo, middlewares.Validate(signupSchema))
		ae := internal.AsAppError(err)
		require.NotNil(t, ae)
		assert.Equal(t, internal.KindValidation, ae.Kind)
		assert.Nil(t, ae.Details)
	})

	t.Run("schema app errors are kept", func(t *testing.T) {
		t.Parallel()

		want := internal.ErrValidation("Email already taken")
		schema := internal.SchemaFunc[signupInput](func(json.RawMessage) (signupInput, error) {
			return signupInput{}, want
		})
		_, err := call(anonymous("signup"), echo, middlewares.Validate[signupInput](schema))
		assert.Same(t, want, internal.AsAppError(err))
	})

	t.Run("nil schema", func(t *testing.T) {
		t.Parallel()

		_, err := call(anonymous("signup"), echo, middlewares.Validate[signupInput](nil))
		require.True(t, internal.IsKind(err, internal.KindInternal))
		assert.True(t, errors.Is(err, middlewares.ErrNilSchema))
	})

	t.Run("handler without validation is an internal error", func(t *testing.T) {
		t.Parallel()

		_, err := call(anonymous("signup"), echo)
		require.True(t, internal.IsKind(err, internal.KindInternal))
		assert.ErrorIs(t, err, internal.ErrInputNotValidated)
	})
}
