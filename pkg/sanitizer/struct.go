package sanitizer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNotStructPointer is returned when SanitizeStruct gets anything but a
// non-nil pointer to a struct.
var ErrNotStructPointer = errors.New("sanitizer: target must be a non-nil struct pointer")

// Tag is the struct tag read by SanitizeStruct.
const Tag = "sanitize"

var transforms = map[string]func(string) string{
	"trim":       strings.TrimSpace,
	"lower":      strings.ToLower,
	"upper":      strings.ToUpper,
	"html":       SanitizeHTML,
	"strip_html": StripHTML,
	"email":      Email,
	"spaces":     CollapseSpaces,
}

// Email trims and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CollapseSpaces replaces runs of whitespace with a single space and trims.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeStruct rewrites string fields of the struct v points to, as
// directed by their `sanitize` tags. Transforms are comma separated and run in
// order. Nested structs, struct pointers and string slices are walked.
//
//	type RegisterInput struct {
//	    Email     string `json:"email" sanitize:"email"`
//	    FirstName string `json:"firstName" sanitize:"strip_html,spaces"`
//	}
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	return sanitizeStruct(rv.Elem())
}

func sanitizeStruct(rv reflect.Value) error {
	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)

		tag := sf.Tag.Get(Tag)
		if tag == "-" {
			continue
		}

		switch fv.Kind() {
		case reflect.String:
			if tag == "" {
				continue
			}
			s, err := apply(tag, fv.String())
			if err != nil {
				return fmt.Errorf("%s: %w", sf.Name, err)
			}
			fv.SetString(s)
		case reflect.Slice:
			if tag == "" || fv.Type().Elem().Kind() != reflect.String {
				continue
			}
			for j := range fv.Len() {
				s, err := apply(tag, fv.Index(j).String())
				if err != nil {
					return fmt.Errorf("%s[%d]: %w", sf.Name, j, err)
				}
				fv.Index(j).SetString(s)
			}
		case reflect.Struct:
			if err := sanitizeStruct(fv); err != nil {
				return err
			}
		case reflect.Pointer:
			if fv.IsNil() {
				continue
			}
			switch fv.Elem().Kind() {
			case reflect.Struct:
				if err := sanitizeStruct(fv.Elem()); err != nil {
					return err
				}
			case reflect.String:
				if tag == "" {
					continue
				}
				s, err := apply(tag, fv.Elem().String())
				if err != nil {
					return fmt.Errorf("%s: %w", sf.Name, err)
				}
				fv.Elem().SetString(s)
			}
		}
	}
	return nil
}

func apply(tag, s string) (string, error) {
	for name := range strings.SplitSeq(tag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		fn, ok := transforms[name]
		if !ok {
			return "", fmt.Errorf("sanitizer: unknown transform %q", name)
		}
		s = fn(s)
	}
	return s, nil
}
