package random

import (
	"cmp"
	"fmt"
	"slices"
)

// Item returns a uniformly chosen element of list.
func Item[T any](r *Random, list []T) (T, error) {
	if len(list) == 0 {
		var zero T
		return zero, fmt.Errorf("%w: cannot pick from an empty list", ErrInvalidArgument)
	}

	return list[r.number(uint64(len(list)))], nil
}

// Key returns a uniformly chosen key of m. Keys are sorted first so the choice depends only
// on the stream and the map contents, never on map iteration order.
func Key[K cmp.Ordered, V any](r *Random, m map[K]V) (K, error) {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return Item(r, keys)
}

// Use returns v on a coin flip and the zero value otherwise.
func Use[T any](r *Random, v T) T {
	if r.Bool() {
		return v
	}

	var zero T
	return zero
}

// Variant is a possibly-deferred value: a literal, a list to pick from, or a thunk.
type Variant[T any] interface {
	resolve(r *Random) (T, error)
}

type literal[T any] struct{ value T }

type list[T any] struct{ items []Variant[T] }

type thunk[T any] struct{ fn func() T }

func Literal[T any](v T) Variant[T] {
	return literal[T]{value: v}
}

// Literals wraps every value as a Literal.
func Literals[T any](vs ...T) []Variant[T] {
	ret := make([]Variant[T], len(vs))
	for i, v := range vs {
		ret[i] = Literal(v)
	}

	return ret
}

// List resolves by picking one of items and resolving that.
func List[T any](items ...Variant[T]) Variant[T] {
	return list[T]{items: items}
}

// Thunk resolves to whatever fn returns; its result is not resolved any further.
func Thunk[T any](fn func() T) Variant[T] {
	return thunk[T]{fn: fn}
}

func (l literal[T]) resolve(*Random) (T, error) {
	return l.value, nil
}

func (l list[T]) resolve(r *Random) (T, error) {
	item, err := Item(r, l.items)
	if err != nil {
		var zero T
		return zero, err
	}

	return Pick(r, item)
}

func (t thunk[T]) resolve(*Random) (T, error) {
	return t.fn(), nil
}

// Pick resolves v: thunks are invoked, lists are picked from recursively, literals are returned.
func Pick[T any](r *Random, v Variant[T]) (T, error) {
	if v == nil {
		var zero T
		return zero, fmt.Errorf("%w: nil variant", ErrInvalidArgument)
	}

	return v.resolve(r)
}

// Entry is one weighted alternative.
type Entry[V any] struct {
	Weight uint32
	Value  V
}

// choose walks entries until the weighted draw lands in one. If the scan runs off the end,
// which correct weight bookkeeping never allows, the first entry is used.
func choose[V any](r *Random, entries []Entry[V]) (V, error) {
	if len(entries) == 0 {
		var zero V
		return zero, fmt.Errorf("%w: cannot choose from an empty table", ErrInvalidArgument)
	}

	total := uint64(0)
	for _, e := range entries {
		total += uint64(e.Weight)
	}

	if total > fullRange {
		var zero V
		return zero, fmt.Errorf("%w: total weight %d exceeds 2^32", ErrInvalidArgument, total)
	}

	n := r.number(total)
	for _, e := range entries {
		if n < uint64(e.Weight) {
			return e.Value, nil
		}
		n -= uint64(e.Weight)
	}

	return entries[0].Value, nil
}

// ChooseFlat returns the chosen entry's value as-is.
func ChooseFlat[V any](r *Random, entries []Entry[V]) (V, error) {
	return choose(r, entries)
}

// Choose resolves the chosen entry's value. The value is resolved as a one-element List,
// which costs one extra draw; reproducing the reference stream depends on it.
func Choose[T any](r *Random, entries []Entry[Variant[T]]) (T, error) {
	v, err := choose(r, entries)
	if err != nil {
		var zero T
		return zero, err
	}

	return Pick(r, List(v))
}

// Weighted expands a weighted table into a flat list where each value appears Weight times.
func Weighted[V any](entries []Entry[V]) []V {
	var ret []V
	for _, e := range entries {
		for j := uint32(0); j < e.Weight; j++ {
			ret = append(ret, e.Value)
		}
	}

	return ret
}
