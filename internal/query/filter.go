// Package query turns declarative filter options and ordering specs into
// predicates and comparators over the domain collections.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/alxcrm/crmd/internal/domain"
)

// Kind is the closed set of comparisons a filter option can ask for.
type Kind int

const (
	KindIContains Kind = iota // case-insensitive substring on a text field
	KindGte                   // inclusive lower bound, numeric or temporal
	KindLte                   // inclusive upper bound, numeric or temporal
	KindPrefix                // startswith on a text field
	KindJoinIContains         // icontains across a joined entity's field
	KindJoinEquals            // id membership across a multi-valued relation
)

// Option maps one recognized filter option onto a field of T. Exactly one
// accessor is set per option; Strs and IDs mark multi-valued relations,
// which force de-duplication of the result set.
type Option[T any] struct {
	Kind Kind
	Str  func(T) string
	Num  func(T) decimal.Decimal
	Time func(T) time.Time
	Strs func(T) []string
	IDs  func(T) []string
}

// Filter is the conjunction of the predicate terms compiled from a
// filter-option mapping.
type Filter[T any] struct {
	terms    []func(T) bool
	distinct bool
}

// Compile builds a Filter from opts using the entity's option table.
// Absent, nil and blank values are skipped, unrecognized keys are ignored,
// and malformed values are collected into a single ValidationError.
func Compile[T any](table map[string]Option[T], opts map[string]any) (*Filter[T], error) {
	f := &Filter[T]{}
	var reasons []string

	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := opts[name]
		opt, ok := table[name]
		if !ok || raw == nil {
			continue
		}
		if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		term, err := compileTerm(opt, raw)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		f.terms = append(f.terms, term)
		if opt.Strs != nil || opt.IDs != nil {
			f.distinct = true
		}
	}
	if len(reasons) > 0 {
		return nil, &domain.ValidationError{Reasons: reasons}
	}
	return f, nil
}

func compileTerm[T any](opt Option[T], raw any) (func(T) bool, error) {
	switch opt.Kind {
	case KindIContains, KindJoinIContains:
		want := strings.ToLower(cast.ToString(raw))
		if opt.Strs != nil {
			return func(v T) bool {
				for _, s := range opt.Strs(v) {
					if strings.Contains(strings.ToLower(s), want) {
						return true
					}
				}
				return false
			}, nil
		}
		return func(v T) bool {
			return strings.Contains(strings.ToLower(opt.Str(v)), want)
		}, nil

	case KindPrefix:
		want := cast.ToString(raw)
		return func(v T) bool { return strings.HasPrefix(opt.Str(v), want) }, nil

	case KindGte, KindLte:
		if opt.Time != nil {
			bound, err := toTime(raw)
			if err != nil {
				return nil, err
			}
			if opt.Kind == KindGte {
				return func(v T) bool { return !opt.Time(v).Before(bound) }, nil
			}
			return func(v T) bool { return !opt.Time(v).After(bound) }, nil
		}
		bound, err := toDecimal(raw)
		if err != nil {
			return nil, err
		}
		if opt.Kind == KindGte {
			return func(v T) bool { return opt.Num(v).GreaterThanOrEqual(bound) }, nil
		}
		return func(v T) bool { return opt.Num(v).LessThanOrEqual(bound) }, nil

	case KindJoinEquals:
		want := cast.ToString(raw)
		return func(v T) bool {
			for _, id := range opt.IDs(v) {
				if id == want {
					return true
				}
			}
			return false
		}, nil
	}
	return nil, fmt.Errorf("unsupported comparison")
}

// Match reports whether v satisfies every compiled term. An empty filter
// matches everything.
func (f *Filter[T]) Match(v T) bool {
	for _, term := range f.terms {
		if !term(v) {
			return false
		}
	}
	return true
}

// RequiresDistinct reports whether the filter traversed a multi-valued
// relation, in which case the result set must be de-duplicated by id.
func (f *Filter[T]) RequiresDistinct() bool { return f.distinct }

// DedupeByID drops repeated entities, keeping the first occurrence.
func DedupeByID[T any](list []T, id func(T) string) []T {
	seen := make(map[string]struct{}, len(list))
	out := list[:0]
	for _, v := range list {
		k := id(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}
	d, err := decimal.NewFromString(cast.ToString(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %v", raw)
	}
	return d, nil
}

func toTime(raw any) (time.Time, error) {
	if t, ok := raw.(time.Time); ok {
		return t, nil
	}
	t, err := dateparse.ParseAny(cast.ToString(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("not a timestamp: %v", raw)
	}
	return t, nil
}
