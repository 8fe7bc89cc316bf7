package manifest

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

// FlagAssignment is an ordered mapping from flag name to value.
// Names are case-insensitive and stored in lower case. Assigning a name twice
// keeps its first position and the last value. The zero value is empty and
// ready to use; a FlagAssignment is never mutated in place.
type FlagAssignment struct {
	names  []string
	values map[string]bool
}

// With returns a copy of a with name set to value.
func (a FlagAssignment) With(name string, value bool) FlagAssignment {
	name = strings.ToLower(name)
	out := FlagAssignment{
		names:  slices.Clone(a.names),
		values: maps.Clone(a.values),
	}
	if out.values == nil {
		out.values = make(map[string]bool)
	}
	if _, ok := out.values[name]; !ok {
		out.names = append(out.names, name)
	}
	out.values[name] = value
	return out
}

// Lookup returns the value assigned to name, if any.
func (a FlagAssignment) Lookup(name string) (value, ok bool) {
	value, ok = a.values[strings.ToLower(name)]
	return value, ok
}

// Len returns the number of assigned flags.
func (a FlagAssignment) Len() int {
	return len(a.names)
}

// All yields the assignments in order.
func (a FlagAssignment) All() iter.Seq2[string, bool] {
	return func(yield func(string, bool) bool) {
		for _, name := range a.names {
			if !yield(name, a.values[name]) {
				return
			}
		}
	}
}

// Map returns the assignments as a new map.
func (a FlagAssignment) Map() map[string]bool {
	out := make(map[string]bool, len(a.names))
	maps.Copy(out, a.values)
	return out
}

// String renders a in the form accepted by ParseFlagAssignment, e.g. "+dev -fast".
func (a FlagAssignment) String() string {
	parts := make([]string, 0, len(a.names))
	for name, value := range a.All() {
		if value {
			parts = append(parts, "+"+name)
		} else {
			parts = append(parts, "-"+name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseFlagAssignment parses a list of flags separated by spaces or commas.
// "+name" and a bare "name" enable a flag; "-name" disables it.
func ParseFlagAssignment(s string) (FlagAssignment, error) {
	var a FlagAssignment
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, field := range fields {
		value := true
		name := field
		switch field[0] {
		case '+':
			name = field[1:]
		case '-':
			name = field[1:]
			value = false
		}
		if !validFlagName(name) {
			return FlagAssignment{}, fmt.Errorf("%w: %q", ErrInvalidFlag, field)
		}
		a = a.With(name, value)
	}
	return a, nil
}

func validFlagName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case (r >= '0' && r <= '9' || r == '-') && i > 0:
		default:
			return false
		}
	}
	return true
}
