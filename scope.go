package records

import "math"

// Unbounded is the limit of a scope without LimitBy.
const Unbounded = math.MaxInt

// Scope fully determines one query: table, filter, pagination, ordering and
// the attribute keys instances may carry.
//
// Scope is a value. Every chain method returns a new Scope with its own
// Order and Keys slices and never touches the receiver, so scopes can be
// shared between goroutines without synchronization as long as callers do
// not write into the exported slices.
type Scope struct {
	TableName string
	Filter    Filter
	Limit     int
	Skip      int
	Order     []Order
	Keys      []string
}

// NewScope returns an unfiltered, unbounded, unordered scope over table.
func NewScope(table string, keys []string) Scope {
	return Scope{
		TableName: table,
		Limit:     Unbounded,
		Keys:      append([]string(nil), keys...),
	}
}

func (s Scope) clone() Scope {
	next := s
	next.Order = append([]Order(nil), s.Order...)
	next.Keys = append([]string(nil), s.Keys...)
	return next
}

// FilterBy intersects the current filter with f.
func (s Scope) FilterBy(f Filter) Scope {
	next := s.clone()
	switch {
	case f == nil:
	case s.Filter == nil:
		next.Filter = f
	default:
		next.Filter = And{s.Filter, f}
	}
	return next
}

// OrFilterBy unions the current filter with f. Without a current filter the
// result is f alone.
func (s Scope) OrFilterBy(f Filter) Scope {
	next := s.clone()
	switch {
	case f == nil:
	case s.Filter == nil:
		next.Filter = f
	default:
		next.Filter = Or{s.Filter, f}
	}
	return next
}

// OnlyFilter replaces the current filter with f.
func (s Scope) OnlyFilter(f Filter) Scope {
	next := s.clone()
	next.Filter = f
	return next
}

// Unfiltered drops the filter so every record matches.
func (s Scope) Unfiltered() Scope {
	return s.OnlyFilter(nil)
}

// LimitBy caps the number of returned records. n must be positive.
func (s Scope) LimitBy(n int) (Scope, error) {
	if n <= 0 {
		return s.clone(), invalidArgument("limit must be a positive integer, got %d", n)
	}
	next := s.clone()
	next.Limit = n
	return next, nil
}

// Unlimited removes the limit.
func (s Scope) Unlimited() Scope {
	next := s.clone()
	next.Limit = Unbounded
	return next
}

// SkipBy drops the first n matching records. n must not be negative.
func (s Scope) SkipBy(n int) (Scope, error) {
	if n < 0 {
		return s.clone(), invalidArgument("skip must not be negative, got %d", n)
	}
	next := s.clone()
	next.Skip = n
	return next, nil
}

// Unskipped resets skip to zero.
func (s Scope) Unskipped() Scope {
	next := s.clone()
	next.Skip = 0
	return next
}

// OrderBy appends sort keys after the existing ones.
func (s Scope) OrderBy(orders ...Order) Scope {
	next := s.clone()
	next.Order = append(next.Order, orders...)
	return next
}

// Reorder replaces the sort keys.
func (s Scope) Reorder(orders ...Order) Scope {
	next := s.clone()
	next.Order = append([]Order(nil), orders...)
	return next
}

// Unordered clears the sort keys; results follow insertion order.
func (s Scope) Unordered() Scope {
	next := s.clone()
	next.Order = nil
	return next
}

// HasKey reports whether key is one of the scope's attribute keys.
func (s Scope) HasKey(key string) bool {
	for _, k := range s.Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Window returns the [start, end) slice bounds that Skip and Limit select
// out of total matching records. A non positive Limit is unbounded.
func (s Scope) Window(total int) (int, int) {
	start := s.Skip
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if s.Limit > 0 && s.Limit < total-start {
		end = start + s.Limit
	}
	return start, end
}
