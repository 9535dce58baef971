package query

import (
	"context"
	"fmt"
)

func clone[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}

	return v
}

func cast[T any](key Key, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T

		return zero, fmt.Errorf("cached data for %s is %T, not %T", key, v, zero)
	}

	return clone(t), nil
}

// Fetch is the typed form of Client.Fetch. The returned value is a copy
// callers may modify freely.
func Fetch[T any](ctx context.Context, c *Client, key Key, load func(context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		data, err := load(ctx)
		if err != nil {
			return nil, err
		}

		return data, nil
	})
	if err != nil {
		var zero T

		return zero, err
	}

	return cast[T](key, v)
}

// Get returns a copy of the data cached under key, if any.
func Get[T any](c *Client, key Key) (T, bool) {
	var zero T

	e, ok := c.Get(key)
	if !ok || !e.HasData {
		return zero, false
	}

	t, err := cast[T](key, e.Data)
	if err != nil {
		return zero, false
	}

	return t, true
}

// SetData applies a typed updater to key. Data of another type is treated as absent.
func SetData[T any](c *Client, key Key, fn func(old T, ok bool) (T, bool)) {
	c.SetData(key, func(old any, ok bool) (any, bool) {
		var typed T
		if ok {
			typed, ok = old.(T)
		}

		data, keep := fn(typed, ok)

		return data, keep
	})
}

// Update applies fn to every matched entry holding a T and returns how many changed.
func Update[T any](c *Client, m Matcher, fn func(T) T) int {
	return c.Update(m, func(old any, _ bool) (any, bool) {
		typed, ok := old.(T)
		if !ok {
			return nil, false
		}

		return fn(typed), true
	})
}
