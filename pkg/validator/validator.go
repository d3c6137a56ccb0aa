package validator

// Rule is a single check. Error is reported when Check returns false.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply evaluates every rule and returns ValidationErrors for the failures,
// or nil when all pass.
//
//	err := validator.Apply(
//	    validator.RequiredString("email", in.Email),
//	    validator.Email("email", in.Email),
//	    validator.MinLenString("password", in.Password, 8),
//	)
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if r.Check != nil && !r.Check() {
			errs = append(errs, r.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// When returns rule if cond holds, otherwise a rule that always passes.
// Useful for optional fields.
func When(cond bool, rule Rule) Rule {
	if !cond {
		return Rule{Check: func() bool { return true }}
	}
	return rule
}

func newRule(field, message, key string, values map[string]any, check func() bool) Rule {
	if values == nil {
		values = map[string]any{}
	}
	values["field"] = field
	return Rule{
		Check: check,
		Error: ValidationError{
			Field:             field,
			Message:           message,
			TranslationKey:    key,
			TranslationValues: values,
		},
	}
}
