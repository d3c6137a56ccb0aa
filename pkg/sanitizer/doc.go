// Package sanitizer cleans user input before validation.
//
// HTML handling is built on bluemonday: StripHTML removes all markup,
// SanitizeHTML keeps a small formatting allow-list. SanitizeStruct applies
// transforms declared in `sanitize` struct tags:
//
//	type RegisterInput struct {
//	    Email string `json:"email" sanitize:"email"`
//	    Phone string `json:"phone" sanitize:"trim"`
//	}
package sanitizer
