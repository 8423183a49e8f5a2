package todo

import (
	"encoding/json"
	"strconv"
)

// Shape identifies which container a todo list arrived in.
type Shape int

const (
	// ShapeUnknown is anything that is not a recognized container.
	ShapeUnknown Shape = iota

	// ShapeArray is a bare ordered sequence of items.
	ShapeArray

	// ShapeWrapper is an object whose items field holds the sequence.
	ShapeWrapper
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeWrapper:
		return "wrapper"
	default:
		return "unknown"
	}
}

// maxNormalizeDepth stops lenient reads from following absurdly deep trees.
const maxNormalizeDepth = 64

// ShapeOf classifies input. Typed values ([]Item, List, *List) and decoded
// JSON or YAML values ([]any, map[string]any) are recognized; raw JSON bytes
// are classified by their decoded form.
func ShapeOf(input any) Shape {
	switch value := input.(type) {
	case []Item, []any:
		return ShapeArray
	case List:
		return ShapeWrapper
	case *List:
		if value == nil {
			return ShapeUnknown
		}
		return ShapeWrapper
	case map[string]any:
		if _, ok := value["items"].([]any); ok {
			return ShapeWrapper
		}
		return ShapeUnknown
	case json.RawMessage:
		return ShapeOf(decodeJSON(value))
	case []byte:
		return ShapeOf(decodeJSON(value))
	default:
		return ShapeUnknown
	}
}

// Normalize returns the items held by input in canonical form.
//
// Normalize never fails: unrecognized shapes, malformed JSON and non-object
// entries all degrade to fewer (or no) items. Legacy title and done fields
// are preserved so renderers can display older data.
func Normalize(input any) []Item {
	switch value := input.(type) {
	case []Item:
		return value
	case List:
		return value.Items
	case *List:
		if value == nil {
			return nil
		}
		return value.Items
	case []any:
		return normalizeEntries(value, 0)
	case map[string]any:
		entries, ok := value["items"].([]any)
		if !ok {
			return nil
		}
		return normalizeEntries(entries, 0)
	case json.RawMessage:
		return normalizeDecoded(decodeJSON(value))
	case []byte:
		return normalizeDecoded(decodeJSON(value))
	default:
		return nil
	}
}

func normalizeDecoded(value any) []Item {
	switch value.(type) {
	case []any, map[string]any:
		return Normalize(value)
	default:
		return nil
	}
}

func decodeJSON(data []byte) any {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil
	}
	return value
}

func normalizeEntries(entries []any, depth int) []Item {
	if len(entries) == 0 {
		return nil
	}
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, lenientItem(fields, depth))
	}
	return items
}

func lenientItem(fields map[string]any, depth int) Item {
	item := Item{
		ID:      scalarString(fields["id"]),
		Content: stringField(fields, "content"),
		Status:  Status(stringField(fields, "status")),
	}
	if title, ok := fields["title"].(string); ok {
		item.Title = &title
	}
	if done, ok := fields["done"].(bool); ok {
		item.Done = &done
	}
	if children, ok := fields["children"].([]any); ok && depth+1 < maxNormalizeDepth {
		item.Children = normalizeEntries(children, depth+1)
	}
	return item
}

func stringField(fields map[string]any, key string) string {
	value, _ := fields[key].(string)
	return value
}

// scalarString renders ids written as numbers the way they were written.
func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return ""
	}
}
