package memory

import (
	"reflect"
	"time"

	records "github.com/goliatone/go-records"
)

// less orders a before b by each Order in priority. Values of different
// kinds order by kind: nil, bool, number, string, time, then everything
// else. Values of the last kind compare equal, so the stable sort keeps
// their insertion order.
func less(a, b records.Record, orders []records.Order) bool {
	for _, order := range orders {
		cmp := compareForSort(a[order.Key], b[order.Key])
		if cmp == 0 {
			continue
		}
		if order.Direction == records.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

const (
	rankNil = iota
	rankBool
	rankNumber
	rankString
	rankTime
	rankOther
)

func compareForSort(a, b any) int {
	ra, rb := sortRank(a), sortRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if ra == rankNil || ra == rankOther {
		return 0
	}
	if cmp, ok := records.Compare(a, b); ok {
		return cmp
	}
	return 0
}

func sortRank(value any) int {
	switch v := value.(type) {
	case nil:
		return rankNil
	case time.Time:
		return rankTime
	case *time.Time:
		if v == nil {
			return rankNil
		}
		return rankTime
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Bool:
		return rankBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return rankNumber
	case reflect.String:
		return rankString
	default:
		return rankOther
	}
}
