package validation

import "context"

// Fetcher resolves a resource from a path parameter. It returns (nil, nil) when
// the resource does not exist and an error only on infrastructure failure.
type Fetcher[T any] func(ctx context.Context, id string, req *Request) (*T, error)

// ResourceExists passes when fetch finds a resource for the path parameter and
// attaches it under key. A missing resource fails with "not found" (404); a
// fetch error fails with "server error" (500) and is logged, never returned.
func ResourceExists[T any](param, key string, fetch Fetcher[T]) Rule {
	return Rule{
		Field:   param,
		In:      InPath,
		Message: MsgNotFound,
		Kind:    KindNotFound,
		Check: func(ctx context.Context, value any, req *Request) error {
			id, _ := value.(string)
			res, err := fetch(ctx, id, req)
			if err != nil {
				return err
			}
			if res == nil {
				return ErrInvalid
			}
			req.Attach(key, res)
			return nil
		},
	}
}

// ResourceNotExists is the inverse of ResourceExists: it passes when fetch finds
// nothing and fails with "already exists" (400) otherwise.
func ResourceNotExists[T any](param string, fetch Fetcher[T]) Rule {
	return Rule{
		Field:   param,
		In:      InPath,
		Message: MsgAlreadyExists,
		Kind:    KindBadRequest,
		Check: func(ctx context.Context, value any, req *Request) error {
			id, _ := value.(string)
			res, err := fetch(ctx, id, req)
			if err != nil {
				return err
			}
			if res != nil {
				return ErrInvalid
			}
			return nil
		},
	}
}
