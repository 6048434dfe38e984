package source

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Rule checks one aspect of an item.
type Rule func(it Item) []ValidationError

// Required rejects nil or blank values of field.
func Required(field string) Rule {
	return func(it Item) []ValidationError {
		v, _ := it.Get(field)
		if v == nil || strings.TrimSpace(Format(v)) == "" {
			return []ValidationError{{Message: field + " is required", Members: []string{field}}}
		}
		return nil
	}
}

// Numeric rejects values of field that do not parse as a number. Nil passes.
func Numeric(field string) Rule {
	return func(it Item) []ValidationError {
		v, _ := it.Get(field)
		switch x := v.(type) {
		case nil, int, int32, int64, float32, float64:
			return nil
		default:
			if _, err := strconv.ParseFloat(strings.TrimSpace(Format(x)), 64); err != nil {
				return []ValidationError{{Message: field + " must be a number", Members: []string{field}}}
			}
		}
		return nil
	}
}

// MaxLength rejects values of field longer than n runes.
func MaxLength(field string, n int) Rule {
	return func(it Item) []ValidationError {
		v, _ := it.Get(field)
		if v == nil {
			return nil
		}
		if utf8.RuneCountInString(Format(v)) > n {
			return []ValidationError{{
				Message: fmt.Sprintf("%s is longer than %d characters", field, n),
				Members: []string{field},
			}}
		}
		return nil
	}
}

// Check reports message when ok returns false. With no members the error
// is entity-level.
func Check(message string, ok func(Item) bool, members ...string) Rule {
	return func(it Item) []ValidationError {
		if ok(it) {
			return nil
		}
		return []ValidationError{{Message: message, Members: members}}
	}
}
