package records

import (
	"fmt"
	"sort"
	"strings"
)

// FieldDescriptor describes one attribute path of a Model and the type of
// its seed value.
type FieldDescriptor struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Fields describes the Model attributes from the Init seed. Nested maps are
// flattened into dotted paths; keys without a seed value report "any". The
// identifier is listed first.
func (m *Model) Fields() []FieldDescriptor {
	var seed Record
	if m.init != nil {
		seed = m.init()
	}
	fields := []FieldDescriptor{{Path: m.identifier, Type: identifierType(m.keyType)}}
	for _, key := range m.scope.Keys {
		value, ok := seed[key]
		if !ok || value == nil {
			fields = append(fields, FieldDescriptor{Path: key, Type: "any"})
			continue
		}
		fields = append(fields, describeField(value, key)...)
	}
	return fields
}

func identifierType(keyType KeyType) string {
	if keyType == KeyTypeUUID {
		return "string"
	}
	return "int64"
}

func describeField(value any, prefix string) []FieldDescriptor {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return []FieldDescriptor{{Path: prefix, Type: "map[string]any"}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, describeField(typed[key], joinPath(prefix, key))...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []FieldDescriptor{{Path: prefix, Type: "[]" + elementType}}
	default:
		return []FieldDescriptor{{Path: prefix, Type: typeName(typed)}}
	}
}

func typeName(value any) string {
	if value == nil {
		return "any"
	}
	return fmt.Sprintf("%T", value)
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
