package resource

import (
	"fmt"
	"maps"
)

// Reserved field names managed by the service.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Document is a single record of a collection. Values are whatever the JSON
// payload or the store decoded them to.
type Document map[string]any

// ID returns the string form of the document's id, or "" when it has none.
func (d Document) ID() string {
	v, ok := d[FieldID]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// JoinSpec names the collection to join against and the field in that
// collection which references the primary document's id.
type JoinSpec struct {
	Member string
	Column string
}

// IsZero reports whether no join has been bound.
func (j JoinSpec) IsZero() bool { return j.Member == "" && j.Column == "" }

func (j JoinSpec) String() string { return j.Member + "." + j.Column }

// Filter is a single-field equality predicate.
type Filter struct {
	Field string
	Value Scalar
}

// NewFilter builds a Filter from request strings; only the value is coerced.
func NewFilter(field, raw string) Filter {
	return Filter{Field: field, Value: Coerce(raw)}
}
