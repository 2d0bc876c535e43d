package middlewarex

import (
	"context"

	"tvcatalog/internal/domain/user"
)

type ctxKey string

const (
	ctxUser ctxKey = "user"
)

func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

func User(ctx context.Context) (*user.User, bool) {
	v, ok := ctx.Value(ctxUser).(*user.User)
	return v, ok && v != nil
}
