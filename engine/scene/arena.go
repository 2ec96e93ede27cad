package scene

import (
	"github.com/cockroachdb/errors"
)

// Arena owns a growing list of values addressed by their insertion index.
type Arena[T any] struct {
	items []T
}

func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Add appends v and returns its index.
func (a *Arena[T]) Add(v T) int {
	a.items = append(a.items, v)
	return len(a.items) - 1
}

func (a *Arena[T]) Get(index int) (T, error) {
	var zero T
	if index < 0 || index >= len(a.items) {
		return zero, errors.Newf("arena index %d out of range [0, %d)", index, len(a.items))
	}
	return a.items[index], nil
}

func (a *Arena[T]) Len() int {
	return len(a.items)
}

// Each visits every value in insertion order.
func (a *Arena[T]) Each(fn func(index int, v T)) {
	for i, v := range a.items {
		fn(i, v)
	}
}

// Clear drops every value. Callers release what the values own before.
func (a *Arena[T]) Clear() {
	a.items = nil
}
