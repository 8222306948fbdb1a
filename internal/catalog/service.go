package catalog

import (
	"context"
	"fmt"
	"strings"

	apperrors "svcwiki/internal/errors"
)

// Category is a node of the catalog's category hierarchy.
type Category struct {
	URL  string
	Name string

	res *Resource
}

func newCategory(res *Resource) *Category {
	return &Category{
		URL:  res.URL(),
		Name: res.Text("name"),
		res:  res,
	}
}

func (c *Category) String() string { return c.Name }

// parentURL returns the URL of the broader category, or "" for a root. List
// entries that omit "broader" are completed from the category document.
func (c *Category) parentURL(ctx context.Context) (string, error) {
	res := c.res
	if !res.Has("broader") {
		doc, err := res.cache.Get(ctx, c.URL)
		if err != nil {
			return "", fmt.Errorf("failed to get category %s: %w", c.URL, err)
		}
		body, err := doc.Lookup("broader")
		if err != nil {
			if apperrors.IsMissingField(err) {
				return "", nil
			}
			return "", err
		}
		return refURL(body), nil
	}
	v, err := res.Field("broader")
	if err != nil {
		return "", err
	}
	return refURL(v), nil
}

// refURL extracts a URL from a reference, or from an object's resource key.
func refURL(v Value) string {
	switch v.Kind() {
	case KindRef, KindString:
		return v.String()
	case KindObject:
		return v.obj.URL()
	default:
		return ""
	}
}

// Service is a typed view of a catalog service resource.
type Service struct {
	res *Resource
}

// NewService wraps a resource as a service.
func NewService(res *Resource) *Service {
	return &Service{res: res}
}

// Resource returns the underlying resource.
func (s *Service) Resource() *Resource { return s.res }

// URL returns the service's own URL.
func (s *Service) URL() string { return s.res.URL() }

// ID returns the last path segment of the service URL.
func (s *Service) ID() string {
	u := strings.TrimRight(s.URL(), "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

func (s *Service) Name() string        { return s.res.Text("name") }
func (s *Service) Description() string { return s.res.Text("description") }
func (s *Service) CreatedAt() string   { return s.res.Text("created_at") }

func (s *Service) String() string { return s.Name() }

// Submitter describes the user who registered a service.
type Submitter struct {
	Name        string
	Affiliation string
	PublicEmail string
}

// Display formats the submitter as "name, affiliation (email)".
func (u Submitter) Display() string {
	out := u.Name
	if u.Affiliation != "" {
		out += ", " + u.Affiliation
	}
	if u.PublicEmail != "" {
		out += " (" + u.PublicEmail + ")"
	}
	return out
}

// Submitter fetches the submitting user.
func (s *Service) Submitter(ctx context.Context) (*Submitter, error) {
	doc, err := s.res.Object(ctx, "submitter")
	if err != nil {
		return nil, err
	}
	user := doc
	if doc.Has("user") {
		if user, err = doc.Object(ctx, "user"); err != nil {
			return nil, err
		}
	}
	return &Submitter{
		Name:        user.Text("name"),
		Affiliation: user.Text("affiliation"),
		PublicEmail: user.Text("public_email"),
	}, nil
}

// Summary is the aggregated description metadata of a service.
type Summary struct {
	res *Resource
}

// Summary fetches the service summary. The summary document is
// {"service": {"summary": {...}}}.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	doc, err := s.res.Object(ctx, "summary")
	if err != nil {
		return nil, fmt.Errorf("failed to get summary of %s: %w", s.URL(), err)
	}
	v, err := doc.Lookup("summary")
	if err != nil {
		// Inline summaries are already the summary body.
		if apperrors.IsMissingField(err) {
			return &Summary{res: doc}, nil
		}
		return nil, err
	}
	res, err := v.Resource(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{res: res}, nil
}

// Resource returns the summary body.
func (m *Summary) Resource() *Resource { return m.res }

func (m *Summary) list(name string) []string {
	v, err := m.res.Field(name)
	if err != nil || !m.res.Has(name) {
		return nil
	}
	return v.Strings()
}

// Categories returns the names of the service's categories.
func (m *Summary) Categories(ctx context.Context) ([]string, error) {
	v, err := m.res.Field("categories")
	if err != nil || !m.res.Has("categories") {
		return nil, nil
	}
	var names []string
	for _, item := range v.Items() {
		switch item.Kind() {
		case KindString:
			names = append(names, item.String())
		case KindObject, KindRef:
			res, err := item.Resource(ctx)
			if err != nil {
				return nil, err
			}
			if !res.Has("name") {
				if inner, _, err := res.Unwrap(); err == nil {
					res = inner
				}
			}
			names = append(names, res.Text("name"))
		}
	}
	return names, nil
}

func (m *Summary) Descriptions() []string      { return m.list("descriptions") }
func (m *Summary) DocumentationURLs() []string { return m.list("documentation_urls") }
func (m *Summary) Licenses() []string          { return m.list("licenses") }
func (m *Summary) Contacts() []string          { return m.list("contacts") }
func (m *Summary) Publications() []string      { return m.list("publications") }
func (m *Summary) Citations() []string         { return m.list("citations") }

// Deployment is a concrete endpoint of a variant.
type Deployment struct {
	Endpoint            string
	ProviderName        string
	ProviderDescription string
	VariantURL          string
	VariantDescription  string
}

// Deployments fetches the service's deployments and the variant each one provides.
func (s *Service) Deployments(ctx context.Context) ([]*Deployment, error) {
	entries, err := s.entries(ctx, "deployments")
	if err != nil {
		return nil, err
	}

	var out []*Deployment
	for _, entry := range entries {
		d := &Deployment{Endpoint: entry.Text("endpoint")}
		if entry.Has("provider") {
			provider, err := entry.Object(ctx, "provider")
			if err != nil {
				return nil, err
			}
			if !provider.Has("name") {
				if inner, _, err := provider.Unwrap(); err == nil {
					provider = inner
				}
			}
			d.ProviderName = provider.Text("name")
			d.ProviderDescription = provider.Text("description")
		}

		doc, err := entry.Object(ctx, "resource")
		if err != nil {
			return nil, err
		}
		pv, err := doc.Lookup("provided_variant")
		if err != nil {
			return nil, err
		}
		variant, err := pv.Resource(ctx)
		if err != nil {
			return nil, err
		}
		d.VariantURL = refURL(fieldOrNull(variant, "resource"))
		if d.VariantURL == "" {
			d.VariantURL = variant.URL()
		}
		d.VariantDescription = variant.Text("description")
		out = append(out, d)
	}
	return out, nil
}

// entries returns the objects of a list field that is either inline or a
// derived sub-resource such as /variants.
func (s *Service) entries(ctx context.Context, name string) ([]*Resource, error) {
	v, err := s.res.Field(name)
	if err != nil {
		return nil, err
	}
	if v.Kind() == KindRef || v.Kind() == KindObject {
		doc, err := v.Resource(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s of %s: %w", name, s.URL(), err)
		}
		if v, err = doc.Lookup(name); err != nil {
			return nil, err
		}
	}
	return objects(ctx, v)
}

func objects(ctx context.Context, v Value) ([]*Resource, error) {
	var out []*Resource
	for _, item := range v.Items() {
		res, err := item.Resource(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func fieldOrNull(r *Resource, name string) Value {
	v, err := r.Field(name)
	if err != nil {
		return Null
	}
	return v
}
