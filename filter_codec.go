package records

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Operator keys of the plain data representation of a filter tree.
const (
	OpAnd        = "$and"
	OpOr         = "$or"
	OpNot        = "$not"
	OpIn         = "$in"
	OpNotIn      = "$notIn"
	OpNull       = "$null"
	OpNotNull    = "$notNull"
	OpBetween    = "$between"
	OpNotBetween = "$notBetween"
	OpGt         = "$gt"
	OpGte        = "$gte"
	OpLt         = "$lt"
	OpLte        = "$lte"
	OpRaw        = "$raw"
	OpExpr       = "$expr"
)

// ParseFilterJSON decodes a JSON document into a filter tree.
func ParseFilterJSON(data []byte) (Filter, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalidArgument("filter json: %v", err)
	}
	return ParseFilter(raw)
}

// ParseFilter converts plain key/value data into a filter tree. Keys that do
// not start with "$" form one Property. Several entries in one map are
// combined with And. An empty map yields the nil (match all) filter.
func ParseFilter(data map[string]any) (Filter, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var parts And
	property := Property{}
	operators := make([]string, 0, len(data))
	for key, value := range data {
		if strings.HasPrefix(key, "$") {
			operators = append(operators, key)
			continue
		}
		property[key] = value
	}
	if len(property) > 0 {
		parts = append(parts, property)
	}
	sort.Strings(operators)

	for _, op := range operators {
		node, err := parseOperator(op, data[op])
		if err != nil {
			return nil, err
		}
		parts = append(parts, node)
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return parts, nil
}

func parseOperator(op string, value any) (Filter, error) {
	switch op {
	case OpAnd, OpOr:
		items, ok := asSlice(value)
		if !ok {
			return nil, invalidArgument("%s expects a list, got %T", op, value)
		}
		children := make([]Filter, 0, len(items))
		for _, item := range items {
			child, err := parseNested(op, item)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if op == OpAnd {
			return And(children), nil
		}
		return Or(children), nil
	case OpNot:
		child, err := parseNested(op, value)
		if err != nil {
			return nil, err
		}
		return Not{Filter: child}, nil
	case OpNull, OpNotNull:
		key, ok := value.(string)
		if !ok || key == "" {
			return nil, invalidArgument("%s expects a key name, got %T", op, value)
		}
		if op == OpNull {
			return IsNull{Key: key}, nil
		}
		return IsNotNull{Key: key}, nil
	case OpIn, OpNotIn:
		return perKey(op, value, func(key string, v any) (Filter, error) {
			values, ok := asSlice(v)
			if !ok {
				return nil, invalidArgument("%s.%s expects a list, got %T", op, key, v)
			}
			if op == OpIn {
				return In{Key: key, Values: values}, nil
			}
			return NotIn{Key: key, Values: values}, nil
		})
	case OpBetween, OpNotBetween:
		return perKey(op, value, func(key string, v any) (Filter, error) {
			bounds, ok := asMap(v)
			if !ok {
				return nil, invalidArgument("%s.%s expects {from, to}, got %T", op, key, v)
			}
			if op == OpBetween {
				return Between{Key: key, From: bounds["from"], To: bounds["to"]}, nil
			}
			return NotBetween{Key: key, From: bounds["from"], To: bounds["to"]}, nil
		})
	case OpGt, OpGte, OpLt, OpLte:
		return perKey(op, value, func(key string, v any) (Filter, error) {
			switch op {
			case OpGt:
				return Gt{Key: key, Value: v}, nil
			case OpGte:
				return Gte{Key: key, Value: v}, nil
			case OpLt:
				return Lt{Key: key, Value: v}, nil
			default:
				return Lte{Key: key, Value: v}, nil
			}
		})
	case OpRaw:
		body, ok := asMap(value)
		if !ok {
			return nil, invalidArgument("%s expects {$query, $bindings}, got %T", op, value)
		}
		query, _ := body["$query"].(string)
		bindings, _ := asSlice(body["$bindings"])
		return Raw{Query: query, Bindings: bindings}, nil
	case OpExpr:
		if expression, ok := value.(string); ok {
			return Expr{Expression: expression}, nil
		}
		body, ok := asMap(value)
		if !ok {
			return nil, invalidArgument("%s expects a string or {$expression, $args}, got %T", op, value)
		}
		expression, _ := body["$expression"].(string)
		args, _ := asMap(body["$args"])
		return Expr{Expression: expression, Args: args}, nil
	default:
		return nil, fmt.Errorf("%w: operator %q", ErrUnsupportedFilter, op)
	}
}

func parseNested(op string, value any) (Filter, error) {
	body, ok := asMap(value)
	if !ok {
		return nil, invalidArgument("%s expects filter objects, got %T", op, value)
	}
	return ParseFilter(body)
}

func perKey(op string, value any, build func(key string, v any) (Filter, error)) (Filter, error) {
	body, ok := asMap(value)
	if !ok || len(body) == 0 {
		return nil, invalidArgument("%s expects a non empty object, got %T", op, value)
	}
	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	nodes := make(And, 0, len(keys))
	for _, key := range keys {
		node, err := build(key, body[key])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return nodes, nil
}

// FilterToMap converts a filter tree into plain key/value data accepted by
// ParseFilter. The nil filter becomes an empty map.
func FilterToMap(filter Filter) map[string]any {
	switch f := filter.(type) {
	case nil:
		return map[string]any{}
	case Property:
		out := make(map[string]any, len(f))
		for key, value := range f {
			out[key] = value
		}
		return out
	case And:
		return map[string]any{OpAnd: filterList(f)}
	case Or:
		return map[string]any{OpOr: filterList(f)}
	case Not:
		return map[string]any{OpNot: FilterToMap(f.Filter)}
	case In:
		return map[string]any{OpIn: map[string]any{f.Key: append([]any{}, f.Values...)}}
	case NotIn:
		return map[string]any{OpNotIn: map[string]any{f.Key: append([]any{}, f.Values...)}}
	case IsNull:
		return map[string]any{OpNull: f.Key}
	case IsNotNull:
		return map[string]any{OpNotNull: f.Key}
	case Between:
		return map[string]any{OpBetween: map[string]any{f.Key: map[string]any{"from": f.From, "to": f.To}}}
	case NotBetween:
		return map[string]any{OpNotBetween: map[string]any{f.Key: map[string]any{"from": f.From, "to": f.To}}}
	case Gt:
		return map[string]any{OpGt: map[string]any{f.Key: f.Value}}
	case Gte:
		return map[string]any{OpGte: map[string]any{f.Key: f.Value}}
	case Lt:
		return map[string]any{OpLt: map[string]any{f.Key: f.Value}}
	case Lte:
		return map[string]any{OpLte: map[string]any{f.Key: f.Value}}
	case Raw:
		return map[string]any{OpRaw: map[string]any{"$query": f.Query, "$bindings": append([]any{}, f.Bindings...)}}
	case Expr:
		if len(f.Args) == 0 {
			return map[string]any{OpExpr: f.Expression}
		}
		return map[string]any{OpExpr: map[string]any{"$expression": f.Expression, "$args": f.Args}}
	default:
		return map[string]any{}
	}
}

func filterList(filters []Filter) []any {
	out := make([]any, 0, len(filters))
	for _, child := range filters {
		out = append(out, FilterToMap(child))
	}
	return out
}

func asSlice(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Record:
		return v, true
	case Property:
		return v, true
	default:
		return nil, false
	}
}
