package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	apperrors "svcwiki/internal/errors"
)

// Resource is a JSON object from the catalog. Field access resolves nested
// objects, arrays and resource references through the owning cache.
type Resource struct {
	url    string
	fields map[string]any
	cache  *Cache

	mu       sync.Mutex
	resolved map[string]Value
}

// URL returns the resource's own URL: the URL it was fetched from, or the
// first self key present in its fields.
func (r *Resource) URL() string {
	if r.url != "" {
		return r.url
	}
	for _, key := range r.cache.schema.SelfKeys {
		if s, ok := r.fields[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Has reports whether the raw field is present (a derived field is not).
func (r *Resource) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Keys returns the raw field names in sorted order.
func (r *Resource) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Raw returns the undecorated field map. Callers must not modify it.
func (r *Resource) Raw() map[string]any {
	return r.fields
}

// Field returns the named field passed through the cache resolver. Absent
// fields are synthesised from the schema's derived suffixes when possible.
func (r *Resource) Field(name string) (Value, error) {
	raw, ok := r.fields[name]
	if !ok {
		if u := r.cache.schema.derivedURL(r.URL(), name); u != "" {
			return Value{kind: KindRef, str: u, cache: r.cache}, nil
		}
		return Null, &apperrors.MissingFieldError{Resource: r.URL(), Field: name}
	}

	// Resolved fields are kept so nested objects keep their identity.
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.resolved[name]; ok {
		return v, nil
	}

	v := r.cache.Resolve(raw)
	// The body of a single-key envelope shares the envelope's URL.
	if v.kind == KindObject && v.obj.url == "" && len(r.fields) == 1 && v.obj.URL() == "" {
		v.obj.url = r.URL()
	}
	if r.resolved == nil {
		r.resolved = make(map[string]Value)
	}
	r.resolved[name] = v
	return v, nil
}

// Text returns the named field as a string, or "" if it is absent or null.
func (r *Resource) Text(name string) string {
	v, err := r.Field(name)
	if err != nil || v.IsNull() {
		return ""
	}
	if v.kind == KindRef && !r.Has(name) {
		return ""
	}
	return v.String()
}

// Object returns the named field as a resource, fetching it if it is a reference.
func (r *Resource) Object(ctx context.Context, name string) (*Resource, error) {
	v, err := r.Field(name)
	if err != nil {
		return nil, err
	}
	res, err := v.Resource(ctx)
	if err != nil {
		return nil, fmt.Errorf("field %q of %s: %w", name, r.URL(), err)
	}
	return res, nil
}

// Path follows a chain of field names, resolving objects and references on
// the way, and returns the last field's value.
func (r *Resource) Path(ctx context.Context, names ...string) (Value, error) {
	if len(names) == 0 {
		return Value{kind: KindObject, obj: r, cache: r.cache}, nil
	}
	cur := r
	for i, name := range names[:len(names)-1] {
		next, err := cur.Object(ctx, name)
		if err != nil {
			return Null, fmt.Errorf("path element %d: %w", i, err)
		}
		cur = next
	}
	return cur.Field(names[len(names)-1])
}

// Unwrap returns the body of a single-key envelope such as {"service": {...}}.
func (r *Resource) Unwrap() (*Resource, string, error) {
	if len(r.fields) != 1 {
		return nil, "", &apperrors.MalformedResponseError{
			URL:    r.URL(),
			Reason: fmt.Sprintf("expected single top-level key, got %d", len(r.fields)),
		}
	}
	for key := range r.fields {
		v, err := r.Field(key)
		if err != nil {
			return nil, "", err
		}
		if v.kind != KindObject {
			return nil, "", &apperrors.MalformedResponseError{URL: r.URL(), Reason: fmt.Sprintf("envelope %q is %s", key, v.kind)}
		}
		return v.obj, key, nil
	}
	return nil, "", nil
}

// Lookup returns the named field from r or, failing that, from the bodies of
// nested single-key envelopes. It is how documents such as
// {"service": {"summary": {...}}} are reached from the resource that linked them.
func (r *Resource) Lookup(name string) (Value, error) {
	cur := r
	for depth := 0; depth < 3; depth++ {
		if cur.Has(name) {
			return cur.Field(name)
		}
		if len(cur.fields) != 1 {
			break
		}
		inner, _, err := cur.Unwrap()
		if err != nil {
			break
		}
		cur = inner
	}
	return Null, &apperrors.MissingFieldError{Resource: r.URL(), Field: name}
}

func (r *Resource) String() string {
	return fmt.Sprintf("Resource(%s)", r.URL())
}
