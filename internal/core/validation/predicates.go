package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Required fails for absent or empty values.
func Required() Predicate {
	return func(_ context.Context, value any, _ *Request) error {
		if isEmpty(value) {
			return ErrInvalid
		}
		return nil
	}
}

// Length fails unless the value's string form has between lo and hi runes.
// A hi of 0 means unbounded.
func Length(lo, hi int) Predicate {
	return func(_ context.Context, value any, _ *Request) error {
		n := utf8.RuneCountInString(String(value))
		if n < lo || (hi > 0 && n > hi) {
			return ErrInvalid
		}
		return nil
	}
}

// Email fails unless the value is a bare email address.
func Email() Predicate {
	return func(_ context.Context, value any, _ *Request) error {
		s := String(value)
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return ErrInvalid
		}
		return nil
	}
}

// IntMin fails unless the value is an integer no smaller than floor.
func IntMin(floor int64) Predicate {
	return func(_ context.Context, value any, _ *Request) error {
		n, ok := Int(value)
		if !ok || n < floor {
			return ErrInvalid
		}
		return nil
	}
}

// Boolean fails unless the value is a boolean or one of "true", "false", "0", "1".
func Boolean() Predicate {
	return func(_ context.Context, value any, _ *Request) error {
		if _, ok := Bool(value); !ok {
			return ErrInvalid
		}
		return nil
	}
}

// Exists fails for values that are missing entirely or null.
func Exists() Predicate {
	return func(_ context.Context, value any, _ *Request) error {
		if value == nil {
			return ErrInvalid
		}
		return nil
	}
}

// Date fails unless the value is a YYYY-MM-DD or YYYY/MM/DD date.
func Date() Predicate {
	return func(_ context.Context, value any, _ *Request) error {
		if _, ok := ParseDate(String(value)); !ok {
			return ErrInvalid
		}
		return nil
	}
}

// IsString fails for values that are not strings.
func IsString() Predicate {
	return func(_ context.Context, value any, _ *Request) error {
		if _, ok := value.(string); !ok {
			return ErrInvalid
		}
		return nil
	}
}

// OneOf fails unless the value's string form equals one of allowed. Whole
// JSON numbers compare in their integer form.
func OneOf[T any](allowed ...T) Predicate {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[fmt.Sprint(a)] = struct{}{}
	}
	return func(_ context.Context, value any, _ *Request) error {
		if value == nil {
			return ErrInvalid
		}
		key := String(value)
		switch value.(type) {
		case json.Number, float64:
			// 5.0 and 5e0 are the number 5
			if n, ok := Int(value); ok {
				key = strconv.FormatInt(n, 10)
			}
		}
		if _, ok := set[key]; !ok {
			return ErrInvalid
		}
		return nil
	}
}

// All fails with the first failing predicate of preds.
func All(preds ...Predicate) Predicate {
	return func(ctx context.Context, value any, req *Request) error {
		for _, p := range preds {
			if err := p(ctx, value, req); err != nil {
				return err
			}
		}
		return nil
	}
}

// AtLeastOneOf is a whole-body rule requiring one non-null value among fields.
// Uploaded files count as values.
func AtLeastOneOf(fields ...string) Rule {
	return Rule{
		Field:   "",
		In:      InBody,
		Message: "require at least one value of: " + strings.Join(fields, ", "),
		Check: func(_ context.Context, _ any, req *Request) error {
			for _, f := range fields {
				if v, ok := req.Body[f]; ok && v != nil {
					return nil
				}
				if req.File(f) != nil {
					return nil
				}
			}
			return ErrInvalid
		},
	}
}

// ImageMimetypes are the accepted image upload types.
var ImageMimetypes = []string{"image/jpeg", "image/png", "image/gif"}

// Image checks an uploaded file field: required unless the request is a PATCH
// and its content type must be one of mimetypes.
func Image(field string, mimetypes ...string) Rule {
	if len(mimetypes) == 0 {
		mimetypes = ImageMimetypes
	}
	return Rule{
		Field: field,
		In:    InBody,
		Check: func(_ context.Context, _ any, req *Request) error {
			fh := req.File(field)
			if fh == nil {
				if req.Method == http.MethodPatch {
					return nil
				}
				return Reject(KindBadRequest, field+" is required")
			}
			mt := Mimetype(fh)
			for _, m := range mimetypes {
				if strings.EqualFold(m, mt) {
					return nil
				}
			}
			return Reject(KindBadRequest, fmt.Sprintf("Mimetype %s is not legal. Only %s are accepted",
				mt, strings.Join(mimetypes, ", ")))
		},
	}
}

// Mimetype returns the declared content type of an uploaded file.
func Mimetype(fh *multipart.FileHeader) string {
	return strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
}

// String returns the string form of a raw request value.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// Int coerces a raw request value to an integer.
func Int(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Bool coerces a raw request value to a boolean.
func Bool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string, json.Number:
		switch strings.ToLower(String(t)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}

// ParseDate parses the date layouts accepted by Date.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2006/01/02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
