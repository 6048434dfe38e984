package edit

import (
	"slices"
	"strings"

	"gridview/internal/source"
)

// Errors is a deduplicated set of validation errors.
type Errors struct {
	list []source.ValidationError
	seen map[string]struct{}
}

func errorKey(e source.ValidationError) string {
	members := slices.Clone(e.Members)
	slices.Sort(members)
	return e.Message + "\x00" + strings.Join(members, "\x00")
}

// Add records errs, skipping any with a message and member set already seen.
func (s *Errors) Add(errs ...source.ValidationError) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, e := range errs {
		k := errorKey(e)
		if _, ok := s.seen[k]; ok {
			continue
		}
		s.seen[k] = struct{}{}
		s.list = append(s.list, e)
	}
}

func (s *Errors) Clear() {
	s.list = nil
	s.seen = nil
}

func (s *Errors) List() []source.ValidationError { return s.list }

func (s *Errors) Len() int { return len(s.list) }

// Touches reports whether any error names field.
func (s *Errors) Touches(field string) bool {
	for _, e := range s.list {
		if slices.Contains(e.Members, field) {
			return true
		}
	}
	return false
}

// For returns the errors naming field.
func (s *Errors) For(field string) []source.ValidationError {
	var out []source.ValidationError
	for _, e := range s.list {
		if slices.Contains(e.Members, field) {
			out = append(out, e)
		}
	}
	return out
}
