package domain

// Page is one page of a paginated result.
// Items never exceeds Limit when Limit is positive, and Total is never below len(Items).
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Clone returns a copy whose Items slice is independent of p.
func (p Page[T]) Clone() Page[T] {
	items := make([]T, len(p.Items))
	copy(items, p.Items)
	p.Items = items

	return p
}

// Prepend returns a copy of p with item first and Total incremented.
func (p Page[T]) Prepend(item T) Page[T] {
	items := make([]T, 0, len(p.Items)+1)
	items = append(items, item)
	items = append(items, p.Items...)
	if p.Limit > 0 && len(items) > p.Limit {
		items = items[:p.Limit]
	}

	p.Items = items
	p.Total++

	return p
}

// Append returns a copy of p with item last and Total incremented. A full
// page grows its Limit to hold the item, since appended lists are not paged.
func (p Page[T]) Append(item T) Page[T] {
	items := make([]T, 0, len(p.Items)+1)
	items = append(items, p.Items...)
	items = append(items, item)
	if p.Limit > 0 && len(items) > p.Limit {
		p.Limit = len(items)
	}

	p.Items = items
	p.Total++

	return p
}

// Map returns a copy of p with fn applied to every item.
func (p Page[T]) Map(fn func(T) T) Page[T] {
	items := make([]T, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	p.Items = items

	return p
}

// Remove returns a copy of p without the items matching pred.
// Total is decremented once per removed item but never drops below len(Items).
func (p Page[T]) Remove(pred func(T) bool) Page[T] {
	items := make([]T, 0, len(p.Items))
	removed := 0
	for _, item := range p.Items {
		if pred(item) {
			removed++

			continue
		}
		items = append(items, item)
	}

	p.Items = items
	p.Total -= removed
	if p.Total < len(items) {
		p.Total = len(items)
	}

	return p
}

// Find returns the first item matching pred.
func (p Page[T]) Find(pred func(T) bool) (T, bool) {
	for _, item := range p.Items {
		if pred(item) {
			return item, true
		}
	}

	var zero T

	return zero, false
}
