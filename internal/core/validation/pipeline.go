package validation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Outcome is a recorded failure of one rule.
type Outcome struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Kind    Kind   `json:"-"`
}

// Result holds the outcomes of a run in declared rule order, skip markers included.
type Result struct {
	Outcomes []Outcome
}

// Errors returns the outcomes without skip markers.
func (r Result) Errors() []Outcome {
	out := make([]Outcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Kind != kindSkip {
			out = append(out, o)
		}
	}
	return out
}

// OK reports whether no rule failed.
func (r Result) OK() bool { return len(r.Errors()) == 0 }

// Status returns the status of the worst outcome, or 200 when there is none.
func (r Result) Status() int {
	errs := r.Errors()
	if len(errs) == 0 {
		return http.StatusOK
	}
	worst := KindBadRequest
	for _, o := range errs {
		if o.Kind.severity() > worst.severity() {
			worst = o.Kind
		}
	}
	return worst.Status()
}

// Run evaluates rules against req. Rules for different fields run concurrently,
// rules for the same field run in declared order so Bail can end the chain.
// Outcomes are always assembled in declared order. If ctx is done before all
// rules resolve, Run returns ctx.Err() and an empty result.
func Run(ctx context.Context, req *Request, rules []Rule) (Result, error) {
	type fieldKey struct {
		in    Location
		field string
	}
	var (
		order  []fieldKey
		groups = map[fieldKey][]int{}
	)
	for i, rule := range rules {
		k := fieldKey{rule.In, rule.Field}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	slots := make([]*Outcome, len(rules))
	var g errgroup.Group
	for _, k := range order {
		idx := groups[k]
		g.Go(func() error {
			for _, i := range idx {
				if ctx.Err() != nil {
					return nil
				}
				o := evaluate(ctx, rules[i], req)
				slots[i] = o
				if o != nil && o.Kind != kindSkip && rules[i].Bail {
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{}
	for _, o := range slots {
		if o != nil {
			res.Outcomes = append(res.Outcomes, *o)
		}
	}
	return res, nil
}

func evaluate(ctx context.Context, rule Rule, req *Request) (out *Outcome) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Str("field", rule.Field).
				Str("location", rule.In.String()).
				Str("panic", fmt.Sprint(p)).
				Msg("validation rule panicked")
			out = &Outcome{Field: rule.Field, Message: MsgServerError, Kind: KindServerError}
		}
	}()

	if rule.When != nil && !rule.When(req) {
		return nil
	}
	value, present := req.Value(rule.In, rule.Field)
	if rule.Optional && (!present || isEmpty(value)) {
		return nil
	}
	if rule.Check == nil {
		return nil
	}
	return rule.outcome(rule.Check(ctx, value, req))
}

func (r Rule) outcome(err error) *Outcome {
	if err == nil {
		return nil
	}
	msg := r.Message
	if msg == "" {
		msg = defaultMessage
	}

	var f *Failure
	switch {
	case errors.Is(err, ErrSkip):
		return &Outcome{Field: r.Field, Message: "skip", Kind: kindSkip}
	case errors.As(err, &f):
		if f.Message != "" {
			msg = f.Message
		}
		return &Outcome{Field: r.Field, Message: msg, Kind: f.Kind}
	case errors.Is(err, ErrInvalid):
		return &Outcome{Field: r.Field, Message: msg, Kind: r.Kind}
	default:
		log.Warn().
			Err(err).
			Str("field", r.Field).
			Str("location", r.In.String()).
			Msg("validation rule failed unexpectedly")
		return &Outcome{Field: r.Field, Message: MsgServerError, Kind: KindServerError}
	}
}
