package middlewares

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/dmitrymomot/rpcgate/internal"
	"github.com/dmitrymomot/rpcgate/pkg/sanitizer"
	"github.com/dmitrymomot/rpcgate/pkg/validator"
)

// Validate parses the raw input with schema and hands the typed value to the
// rest of the chain through the Context. Failures become Validation errors
// with message "Invalid input data"; rule failures are attached as details.
func Validate[T any](schema internal.Schema[T]) internal.Stage {
	return internal.NewStage("validate", func(c internal.Context, next internal.HandlerFunc) (any, error) {
		if schema == nil {
			return nil, internal.ErrInternal("", internal.WithError(ErrNilSchema))
		}
		in, err := schema.Parse(c.RawInput())
		if err != nil {
			return nil, validationError(err)
		}
		return next(c.WithInput(in))
	})
}

func validationError(err error) error {
	if ae := internal.AsAppError(err); ae != nil {
		return ae
	}
	if ve := validator.ExtractValidationErrors(err); ve != nil {
		return internal.ErrValidation(MsgInvalidInput, internal.WithDetails(ve), internal.WithError(err))
	}
	return internal.ErrValidation(MsgInvalidInput, internal.WithError(err))
}

// JSONSchema builds a Schema that decodes JSON into T, applies `sanitize`
// struct tags, then evaluates the rules returned by rules. Absent input
// decodes as the zero T, so required fields must be checked by rules.
//
//	var registerSchema = middlewares.JSONSchema(func(in RegisterInput) []validator.Rule {
//	    return []validator.Rule{
//	        validator.Email("email", in.Email),
//	        validator.MinLenString("password", in.Password, 8),
//	    }
//	})
func JSONSchema[T any](rules func(in T) []validator.Rule) internal.Schema[T] {
	return internal.SchemaFunc[T](func(raw json.RawMessage) (T, error) {
		var in T
		if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			if err := json.Unmarshal(raw, &in); err != nil {
				return in, err
			}
		}

		if reflect.TypeFor[T]().Kind() == reflect.Struct {
			if err := sanitizer.SanitizeStruct(&in); err != nil {
				return in, err
			}
		}

		if rules != nil {
			if err := validator.Apply(rules(in)...); err != nil {
				return in, err
			}
		}
		return in, nil
	})
}

// ErrNilSchema is reported when Validate is given no schema.
var ErrNilSchema = errors.New("middlewares: nil schema")
