package validation

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func check(p Predicate, v any) error {
	return p(context.Background(), v, bodyRequest(http.MethodPost, nil))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		pred  Predicate
		value any
		ok    bool
	}{
		{"required string", Required(), "x", true},
		{"required empty", Required(), "", false},
		{"required nil", Required(), nil, false},
		{"length in range", Length(1, 5), "abc", true},
		{"length too long", Length(1, 5), "abcdef", false},
		{"length runes", Length(1, 2), "æø", true},
		{"length unbounded", Length(10, 0), "0123456789abcdef", true},
		{"length short password", Length(10, 256), "short", false},
		{"email", Email(), "ada@example.org", true},
		{"email with name", Email(), "Ada <ada@example.org>", false},
		{"email garbage", Email(), "nope", false},
		{"int json number", IntMin(1), json.Number("4"), true},
		{"int string", IntMin(1), "12", true},
		{"int zero below floor", IntMin(1), json.Number("0"), false},
		{"int fractional", IntMin(0), json.Number("1.5"), false},
		{"int float64 whole", IntMin(0), float64(3), true},
		{"int word", IntMin(0), "three", false},
		{"bool true", Boolean(), true, true},
		{"bool string", Boolean(), "false", true},
		{"bool digit", Boolean(), "1", true},
		{"bool word", Boolean(), "yes", false},
		{"exists false", Exists(), false, true},
		{"exists nil", Exists(), nil, false},
		{"date dash", Date(), "2019-02-15", true},
		{"date slash", Date(), "2019/02/15", true},
		{"date garbage", Date(), "15th of feb", false},
		{"string", IsString(), "x", true},
		{"string number", IsString(), json.Number("1"), false},
		{"oneof rating", OneOf(0, 1, 2, 3, 4, 5), json.Number("5"), true},
		{"oneof rating out", OneOf(0, 1, 2, 3, 4, 5), json.Number("6"), false},
		{"oneof whole float", OneOf(0, 1, 2, 3, 4, 5), json.Number("5.0"), true},
		{"oneof exponent", OneOf(0, 1, 2, 3, 4, 5), json.Number("5e0"), true},
		{"oneof fraction", OneOf(0, 1, 2, 3, 4, 5), json.Number("4.5"), false},
		{"oneof float64", OneOf(0, 1, 2, 3, 4, 5), 3.0, true},
		{"oneof string float", OneOf(0, 1, 2, 3, 4, 5), "5.0", false},
		{"oneof state", OneOf("want to watch", "watching", "watched"), "watching", true},
		{"oneof nil", OneOf("watched"), nil, false},
		{"all pass", All(Length(1, 256), Email()), "ada@example.org", true},
		{"all first fails", All(Length(1, 256), Email()), "", false},
		{"all second fails", All(Length(1, 256), Email()), "ada", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := check(tt.pred, tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestAtLeastOneOf(t *testing.T) {
	rule := AtLeastOneOf("email", "password")
	assert.Equal(t, "require at least one value of: email, password", rule.Message)

	res, err := Run(context.Background(), bodyRequest(http.MethodPatch, map[string]any{"admin": true}), []Rule{rule})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.Status())

	res, err = Run(context.Background(), bodyRequest(http.MethodPatch, map[string]any{"password": "0123456789"}), []Rule{rule})
	assert.NoError(t, err)
	assert.True(t, res.OK())
}

func TestOptionalOnPatch(t *testing.T) {
	cond := OptionalOnPatch("name")

	assert.True(t, cond(bodyRequest(http.MethodPost, nil)))
	assert.False(t, cond(bodyRequest(http.MethodPatch, map[string]any{})))
	assert.False(t, cond(bodyRequest(http.MethodPatch, map[string]any{"name": ""})))
	assert.True(t, cond(bodyRequest(http.MethodPatch, map[string]any{"name": "Dark"})))
}

func TestCoercions(t *testing.T) {
	n, ok := Int(json.Number("42"))
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	n, ok = Int(json.Number("7.0"))
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	_, ok = Int(json.Number("7.5"))
	assert.False(t, ok)

	b, ok := Bool("TRUE")
	assert.True(t, ok)
	assert.True(t, b)

	d, ok := ParseDate("2008-01-20")
	assert.True(t, ok)
	assert.Equal(t, 2008, d.Year())

	assert.Equal(t, "3.5", String(3.5))
	assert.Equal(t, "", String(nil))
}
