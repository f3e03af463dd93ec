package query

import (
	"slices"
	"strings"

	"github.com/alxcrm/crmd/internal/domain"
)

// CompareFunc orders two records of T: negative when a sorts before b.
type CompareFunc[T any] func(a, b T) int

// CompileOrdering parses a comma-separated field list ("-" prefix for
// descending, whitespace trimmed) into a multi-key comparator. An empty
// spec yields a nil comparator, meaning the store's natural order stands.
// A field missing from the table is an UnknownFieldError, not silently
// dropped.
func CompileOrdering[T any](fields map[string]CompareFunc[T], spec string) (CompareFunc[T], error) {
	type sortKey struct {
		cmp  CompareFunc[T]
		desc bool
	}
	var keys []sortKey
	for _, part := range strings.Split(spec, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		desc := strings.HasPrefix(name, "-")
		if desc {
			name = strings.TrimSpace(strings.TrimPrefix(name, "-"))
		}
		cmp, ok := fields[name]
		if !ok {
			return nil, &domain.UnknownFieldError{Field: name}
		}
		keys = append(keys, sortKey{cmp: cmp, desc: desc})
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return func(a, b T) int {
		for _, k := range keys {
			c := k.cmp(a, b)
			if c == 0 {
				continue
			}
			if k.desc {
				return -c
			}
			return c
		}
		return 0
	}, nil
}

// Sort applies cmp with a stable sort, so records comparing equal keep
// their original relative order. A nil cmp leaves the slice untouched.
func Sort[T any](list []T, cmp CompareFunc[T]) {
	if cmp == nil {
		return
	}
	slices.SortStableFunc(list, cmp)
}
