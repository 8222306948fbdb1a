package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	apperrors "svcwiki/internal/errors"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindRef:
		return "ref"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a resolved JSON value. Strings under the catalog base become
// references that are fetched only when Resource is called.
type Value struct {
	kind  Kind
	b     bool
	num   json.Number
	str   string
	items []Value
	obj   *Resource
	cache *Cache
}

// Null is the zero Value.
var Null = Value{}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns a printable form: the text of a string, the URL of a
// reference or object, and the literal form of scalars.
func (v Value) String() string {
	switch v.kind {
	case KindString, KindRef:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindObject:
		return v.obj.URL()
	default:
		return ""
	}
}

// Text returns the value of a plain string.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Int returns a number value as an integer.
func (v Value) Int() (int64, error) {
	switch v.kind {
	case KindNumber:
		if i, err := v.num.Int64(); err == nil {
			return i, nil
		}
		f, err := v.num.Float64()
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	case KindString:
		return strconv.ParseInt(v.str, 10, 64)
	default:
		return 0, fmt.Errorf("value of kind %s is not a number", v.kind)
	}
}

// Items returns the elements of an array, or nil for any other kind.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Strings returns the printable form of each non-null array element.
func (v Value) Strings() []string {
	var out []string
	for _, item := range v.Items() {
		if item.IsNull() {
			continue
		}
		out = append(out, item.String())
	}
	return out
}

// Empty mirrors JSON truthiness: null, "", [] and {} are empty.
func (v Value) Empty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindArray:
		return len(v.items) == 0
	case KindObject:
		return len(v.obj.fields) == 0
	default:
		return false
	}
}

// Ref returns the URL of a reference value.
func (v Value) Ref() (string, bool) {
	if v.kind != KindRef {
		return "", false
	}
	return v.str, true
}

// Resource returns the object behind v, fetching it through the cache if v is a reference.
func (v Value) Resource(ctx context.Context) (*Resource, error) {
	switch v.kind {
	case KindObject:
		return v.obj, nil
	case KindRef:
		return v.cache.Get(ctx, v.str)
	default:
		return nil, &apperrors.ProtocolError{Reason: fmt.Sprintf("expected object or reference, got %s", v.kind)}
	}
}
