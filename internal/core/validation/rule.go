package validation

import (
	"context"
	"net/http"
)

// Location names where a rule reads its field from.
type Location int

const (
	InBody Location = iota
	InQuery
	InPath
)

func (l Location) String() string {
	switch l {
	case InQuery:
		return "query"
	case InPath:
		return "params"
	default:
		return "body"
	}
}

// Predicate inspects the raw value of a field. See Run for how its error is read.
type Predicate func(ctx context.Context, value any, req *Request) error

// Rule is a single field check. Rules are declared once per route and never mutated.
type Rule struct {
	Field   string
	In      Location
	Message string
	// Kind is used when the predicate returns ErrInvalid.
	Kind Kind
	// Optional skips the predicate when the field is absent or empty.
	Optional bool
	// Bail stops later rules for the same field once this one fails.
	Bail bool
	// When gates the whole rule; false means the rule passes without running.
	When  func(*Request) bool
	Check Predicate
}

const defaultMessage = "invalid value"

// Body starts a rule reading a body field.
func Body(field string, check Predicate, message string) Rule {
	return Rule{Field: field, In: InBody, Check: check, Message: message}
}

// Query starts a rule reading a query parameter.
func Query(field string, check Predicate, message string) Rule {
	return Rule{Field: field, In: InQuery, Check: check, Message: message}
}

// Param starts a rule reading a path parameter.
func Param(field string, check Predicate, message string) Rule {
	return Rule{Field: field, In: InPath, Check: check, Message: message}
}

// AsOptional returns a copy of the rule that is skipped for absent values.
func (r Rule) AsOptional() Rule {
	r.Optional = true
	return r
}

// Bailing returns a copy of the rule that ends its field's chain on failure.
func (r Rule) Bailing() Rule {
	r.Bail = true
	return r
}

// If returns a copy of the rule guarded by cond.
func (r Rule) If(cond func(*Request) bool) Rule {
	r.When = cond
	return r
}

// WithKind returns a copy of the rule that fails with kind.
func (r Rule) WithKind(kind Kind) Rule {
	r.Kind = kind
	return r
}

// OptionalOnPatch returns a run condition skipping the rule on PATCH when field is empty.
func OptionalOnPatch(field string) func(*Request) bool {
	return func(req *Request) bool {
		if req.Method != http.MethodPatch {
			return true
		}
		v, ok := req.Body[field]
		if ok && !isEmpty(v) {
			return true
		}
		return req.File(field) != nil
	}
}
