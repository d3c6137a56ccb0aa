package validator

import (
	"errors"
	"strings"
)

// ErrValidation is matched by every ValidationErrors value.
var ErrValidation = errors.New("validation failed")

// ValidationError describes one failed rule.
// TranslationKey and TranslationValues let callers localize Message.
type ValidationError struct {
	TranslationValues map[string]any `json:"-"`
	Field             string         `json:"field"`
	Message           string         `json:"message"`
	TranslationKey    string         `json:"-"`
}

// ValidationErrors collects failed rules in evaluation order.
type ValidationErrors []ValidationError

// Error implements error.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e))
	for _, ve := range e {
		parts = append(parts, ve.Field+": "+ve.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether field has at least one error.
func (e ValidationErrors) Has(field string) bool {
	for _, ve := range e {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages recorded for field.
func (e ValidationErrors) Get(field string) []string {
	var msgs []string
	for _, ve := range e {
		if ve.Field == field {
			msgs = append(msgs, ve.Message)
		}
	}
	return msgs
}

// Fields groups messages by field name.
func (e ValidationErrors) Fields() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, ve := range e {
		out[ve.Field] = append(out[ve.Field], ve.Message)
	}
	return out
}

// Translate rewrites messages that carry a translation key, in place.
// A nil fn is a no-op.
func (e ValidationErrors) Translate(fn func(key string, values map[string]any) string) {
	if fn == nil {
		return
	}
	for i := range e {
		if e[i].TranslationKey != "" {
			e[i].Message = fn(e[i].TranslationKey, e[i].TranslationValues)
		}
	}
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors inside err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
