// Package validator provides declarative, rule-based input validation.
//
// Rules are plain values built by constructors such as RequiredString or
// MinLenString and evaluated together by Apply, which reports every failure
// as ValidationErrors:
//
//	err := validator.Apply(
//	    validator.RequiredString("email", in.Email),
//	    validator.Email("email", in.Email),
//	    validator.MinLenString("password", in.Password, 8),
//	    validator.When(in.Phone != "", validator.Phone("phone", in.Phone)),
//	)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//	    // ve serializes as [{"field":"email","message":"is required"}, ...]
//	}
//
// Each error carries a translation key and values so messages can be
// localized with ValidationErrors.Translate.
package validator
