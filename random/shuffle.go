package random

import "fmt"

// Shuffle permutes list in place, Fisher-Yates from the last index down.
func Shuffle[T any](r *Random, list []T) {
	for i := len(list) - 1; i >= 0; i-- {
		p := r.number(uint64(i + 1))
		list[i], list[p] = list[p], list[i]
	}
}

// Shuffled returns a shuffled shallow copy of list.
func Shuffled[T any](r *Random, list []T) []T {
	ret := make([]T, len(list))
	copy(ret, list)
	Shuffle(r, ret)

	return ret
}

// Subset picks a count in [0, len(list)] and then resolves that many elements, with replacement.
func Subset[T any](r *Random, list []Variant[T]) ([]T, error) {
	count := int(r.number(uint64(len(list)) + 1))
	return SubsetN(r, list, count)
}

// SubsetN resolves count elements of list independently; elements may repeat.
func SubsetN[T any](r *Random, list []Variant[T], count int) ([]T, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative subset size %d", ErrInvalidArgument, count)
	}

	ret := make([]T, 0, count)
	whole := List(list...)

	for i := 0; i < count; i++ {
		v, err := Pick(r, whole)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}

	return ret, nil
}

// Pop removes a uniformly chosen element from *list and returns it.
func Pop[T any](r *Random, list *[]T) (T, error) {
	if list == nil || len(*list) == 0 {
		var zero T
		return zero, fmt.Errorf("%w: cannot pop from an empty list", ErrInvalidArgument)
	}

	s := *list
	i := r.number(uint64(len(s)))
	v := s[i]

	*list = append(s[:i], s[i+1:]...)

	return v, nil
}
