package records

import (
	"math"
	"reflect"
	"strings"
	"time"
)

// Equal reports whether a and b hold the same value. Numbers compare by
// value regardless of their Go type, so int(1), int64(1) and float64(1) are
// equal. nil equals only nil.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if cmp, ok := Compare(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders a against b, returning -1, 0 or 1. ok is false when the
// values have no natural ordering against each other (nil, mixed kinds,
// maps, slices).
func Compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if na, ok := asNumber(a); ok {
		if nb, ok := asNumber(b); ok {
			return na.compare(nb), true
		}
		return 0, false
	}
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), true
		}
		return 0, false
	case *time.Time:
		if bv, ok := b.(*time.Time); ok && av != nil && bv != nil {
			return av.Compare(*bv), true
		}
		return 0, false
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch {
	case ra.Kind() == reflect.String && rb.Kind() == reflect.String:
		return strings.Compare(ra.String(), rb.String()), true
	case ra.Kind() == reflect.Bool && rb.Kind() == reflect.Bool:
		x, y := ra.Bool(), rb.Bool()
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

type numberKind int

const (
	signedNumber numberKind = iota
	unsignedNumber
	floatNumber
)

type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
}

func asNumber(value any) (number, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: signedNumber, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: unsignedNumber, u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: floatNumber, f: rv.Float()}, true
	default:
		return number{}, false
	}
}

func (n number) float() float64 {
	switch n.kind {
	case signedNumber:
		return float64(n.i)
	case unsignedNumber:
		return float64(n.u)
	default:
		return n.f
	}
}

func (n number) compare(o number) int {
	switch {
	case n.kind == signedNumber && o.kind == signedNumber:
		return compareOrdered(n.i, o.i)
	case n.kind == unsignedNumber && o.kind == unsignedNumber:
		return compareOrdered(n.u, o.u)
	case n.kind == signedNumber && o.kind == unsignedNumber:
		if n.i < 0 {
			return -1
		}
		return compareOrdered(uint64(n.i), o.u)
	case n.kind == unsignedNumber && o.kind == signedNumber:
		if o.i < 0 {
			return 1
		}
		return compareOrdered(n.u, uint64(o.i))
	}
	x, y := n.float(), o.float()
	if math.IsNaN(x) || math.IsNaN(y) {
		return compareOrdered(boolRank(!math.IsNaN(x)), boolRank(!math.IsNaN(y)))
	}
	return compareOrdered(x, y)
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}

func compareOrdered[T int64 | uint64 | float64 | int](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AsInt64 converts any integer or integral float value to int64.
func AsInt64(value any) (int64, bool) {
	n, ok := asNumber(value)
	if !ok {
		return 0, false
	}
	switch n.kind {
	case signedNumber:
		return n.i, true
	case unsignedNumber:
		if n.u > math.MaxInt64 {
			return 0, false
		}
		return int64(n.u), true
	default:
		if n.f != math.Trunc(n.f) || n.f > math.MaxInt64 || n.f < math.MinInt64 {
			return 0, false
		}
		return int64(n.f), true
	}
}
