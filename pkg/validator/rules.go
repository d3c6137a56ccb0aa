package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Number is the set of numeric types accepted by numeric rules.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// RequiredString fails on empty or whitespace-only values.
func RequiredString(field, value string) Rule {
	return newRule(field, "is required", "validation.required", nil, func() bool {
		return strings.TrimSpace(value) != ""
	})
}

// MinLenString fails when value has fewer than n characters.
func MinLenString(field, value string, n int) Rule {
	return newRule(field, fmt.Sprintf("must be at least %d characters long", n), "validation.min_length",
		map[string]any{"min": n}, func() bool {
			return utf8.RuneCountInString(value) >= n
		})
}

// MaxLenString fails when value has more than n characters.
func MaxLenString(field, value string, n int) Rule {
	return newRule(field, fmt.Sprintf("must not exceed %d characters", n), "validation.max_length",
		map[string]any{"max": n}, func() bool {
			return utf8.RuneCountInString(value) <= n
		})
}

// LenString fails unless value has exactly n characters.
func LenString(field, value string, n int) Rule {
	return newRule(field, fmt.Sprintf("must be exactly %d characters long", n), "validation.exact_length",
		map[string]any{"length": n}, func() bool {
			return utf8.RuneCountInString(value) == n
		})
}

// Email fails unless value is a bare address such as "user@example.com".
func Email(field, value string) Rule {
	return newRule(field, "must be a valid email address", "validation.email", nil, func() bool {
		addr, err := mail.ParseAddress(value)
		return err == nil && addr.Address == value && strings.Contains(value[strings.LastIndex(value, "@")+1:], ".")
	})
}

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,19}$`)

// Phone fails unless value looks like a phone number: digits, spaces,
// parentheses and dashes with an optional leading plus.
func Phone(field, value string) Rule {
	return newRule(field, "must be a valid phone number", "validation.phone", nil, func() bool {
		return phonePattern.MatchString(value)
	})
}

// Matches fails unless value matches re.
func Matches(field, value string, re *regexp.Regexp, message string) Rule {
	return newRule(field, message, "validation.pattern", nil, func() bool {
		return re.MatchString(value)
	})
}

// OneOf fails unless value is one of allowed.
func OneOf[T comparable](field string, value T, allowed ...T) Rule {
	return newRule(field, fmt.Sprintf("must be one of %v", allowed), "validation.one_of",
		map[string]any{"values": allowed}, func() bool {
			for _, a := range allowed {
				if a == value {
					return true
				}
			}
			return false
		})
}

// RequiredNum fails on the zero value.
func RequiredNum[T Number](field string, value T) Rule {
	return newRule(field, "is required", "validation.required", nil, func() bool {
		return value != 0
	})
}

// MinNum fails when value < n.
func MinNum[T Number](field string, value, n T) Rule {
	return newRule(field, fmt.Sprintf("must be at least %v", n), "validation.min",
		map[string]any{"min": n}, func() bool {
			return value >= n
		})
}

// MaxNum fails when value > n.
func MaxNum[T Number](field string, value, n T) Rule {
	return newRule(field, fmt.Sprintf("must not exceed %v", n), "validation.max",
		map[string]any{"max": n}, func() bool {
			return value <= n
		})
}

// RequiredSlice fails on an empty slice.
func RequiredSlice[T any](field string, value []T) Rule {
	return newRule(field, "is required", "validation.required", nil, func() bool {
		return len(value) > 0
	})
}

// MaxLenSlice fails when value has more than n items.
func MaxLenSlice[T any](field string, value []T, n int) Rule {
	return newRule(field, fmt.Sprintf("must not contain more than %d items", n), "validation.max_items",
		map[string]any{"max": n}, func() bool {
			return len(value) <= n
		})
}

// RequiredMap fails on an empty map.
func RequiredMap[K comparable, V any](field string, value map[K]V) Rule {
	return newRule(field, "is required", "validation.required", nil, func() bool {
		return len(value) > 0
	})
}
