package records

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewScopeDefaults(t *testing.T) {
	keys := []string{"a", "b"}
	scope := NewScope("items", keys)
	keys[0] = "mutated"

	if scope.Limit != Unbounded || scope.Skip != 0 || scope.Filter != nil || len(scope.Order) != 0 {
		t.Fatalf("unexpected defaults: %+v", scope)
	}
	if !reflect.DeepEqual(scope.Keys, []string{"a", "b"}) {
		t.Fatalf("keys should be copied, got %v", scope.Keys)
	}
}

func TestScopeFilterComposition(t *testing.T) {
	a := Property{"a": 1}
	b := Property{"b": 2}
	c := Property{"c": 3}
	base := NewScope("items", nil)

	cases := []struct {
		name string
		got  Filter
		want Filter
	}{
		{"filter on empty", base.FilterBy(a).Filter, a},
		{"or on empty", base.OrFilterBy(a).Filter, a},
		{"filter twice", base.FilterBy(a).FilterBy(b).Filter, And{a, b}},
		{"or twice", base.OrFilterBy(a).OrFilterBy(b).Filter, Or{a, b}},
		{"filter then or", base.FilterBy(a).OrFilterBy(b).Filter, Or{a, b}},
		{"or then filter", base.FilterBy(a).OrFilterBy(b).FilterBy(c).Filter, And{Or{a, b}, c}},
		{"nil is ignored", base.FilterBy(a).FilterBy(nil).OrFilterBy(nil).Filter, a},
		{"only replaces", base.FilterBy(a).OnlyFilter(b).Filter, b},
		{"unfiltered", base.FilterBy(a).Unfiltered().Filter, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !reflect.DeepEqual(tc.got, tc.want) {
				t.Fatalf("want %#v, got %#v", tc.want, tc.got)
			}
		})
	}
}

func TestScopeLimitSkipValidation(t *testing.T) {
	base := NewScope("items", nil)

	for _, n := range []int{0, -1} {
		if _, err := base.LimitBy(n); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("LimitBy(%d) expected ErrInvalidArgument, got %v", n, err)
		}
	}
	if _, err := base.SkipBy(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SkipBy(-1) expected ErrInvalidArgument, got %v", err)
	}

	limited, err := base.LimitBy(5)
	if err != nil || limited.Limit != 5 {
		t.Fatalf("LimitBy(5) = %d, %v", limited.Limit, err)
	}
	if base.Limit != Unbounded {
		t.Fatalf("receiver limit changed to %d", base.Limit)
	}
	if limited.Unlimited().Limit != Unbounded {
		t.Fatalf("Unlimited should restore the unbounded limit")
	}

	skipped, err := base.SkipBy(0)
	if err != nil || skipped.Skip != 0 {
		t.Fatalf("SkipBy(0) = %d, %v", skipped.Skip, err)
	}
	skipped, _ = base.SkipBy(3)
	if skipped.Unskipped().Skip != 0 || base.Skip != 0 {
		t.Fatalf("Unskipped should reset skip without touching the receiver")
	}
}

func TestScopeOrderingDoesNotAlias(t *testing.T) {
	base := NewScope("items", []string{"a"}).OrderBy(Ascending("a"))
	first := base.OrderBy(Descending("b"))
	second := base.OrderBy(Descending("c"))

	if len(base.Order) != 1 {
		t.Fatalf("receiver order changed: %v", base.Order)
	}
	if first.Order[1].Key != "b" || second.Order[1].Key != "c" {
		t.Fatalf("derived scopes share order storage: %v %v", first.Order, second.Order)
	}
	if got := base.Reorder(Descending("z")).Order; !reflect.DeepEqual(got, []Order{Descending("z")}) {
		t.Fatalf("Reorder should replace, got %v", got)
	}
	if got := base.Unordered().Order; len(got) != 0 {
		t.Fatalf("Unordered should clear, got %v", got)
	}
}

func TestScopeWindow(t *testing.T) {
	cases := []struct {
		skip, limit, total int
		start, end         int
	}{
		{0, Unbounded, 3, 0, 3},
		{1, Unbounded, 3, 1, 3},
		{1, 1, 3, 1, 2},
		{5, 1, 3, 3, 3},
		{0, 10, 3, 0, 3},
		{0, 0, 3, 0, 3},
	}
	for _, tc := range cases {
		scope := Scope{Skip: tc.skip, Limit: tc.limit}
		start, end := scope.Window(tc.total)
		if start != tc.start || end != tc.end {
			t.Fatalf("Window(skip=%d limit=%d total=%d) = [%d,%d), want [%d,%d)", tc.skip, tc.limit, tc.total, start, end, tc.start, tc.end)
		}
	}
}

func TestScopeHasKey(t *testing.T) {
	scope := NewScope("items", []string{"a", "b"})
	if !scope.HasKey("a") || scope.HasKey("id") {
		t.Fatalf("unexpected HasKey results for %v", scope.Keys)
	}
}
