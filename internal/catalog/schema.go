package catalog

import "strings"

// Attribute identifiers used by BiodiversityCatalogue annotations.
const (
	DescriptionAttribute = "http://biodiversitycatalogue.org/attribute/description"
	ExampleDataAttribute = "http://biodiversitycatalogue.org/attribute/exampledata"
)

// Schema captures the URL conventions of one catalog API version.
type Schema struct {
	// SelfKeys are the fields, in priority order, that hold a resource's own URL.
	SelfKeys []string `mapstructure:"self_keys"`

	// Derived maps a field name to a URL suffix. When a resource lacks the field,
	// it is synthesised as a reference to the resource URL plus the suffix.
	Derived map[string]string `mapstructure:"derived"`

	DescriptionAttribute string `mapstructure:"description_attribute"`
	ExampleDataAttribute string `mapstructure:"example_data_attribute"`
}

// DefaultSchema returns the conventions of the BiodiversityCatalogue v1 API.
func DefaultSchema() Schema {
	return Schema{
		SelfKeys: []string{"self", "resource"},
		Derived: map[string]string{
			"annotations": "/annotations",
			"summary":     "/summary",
			"variants":    "/variants",
			"deployments": "/deployments",
		},
		DescriptionAttribute: DescriptionAttribute,
		ExampleDataAttribute: ExampleDataAttribute,
	}
}

// withDefaults fills empty parts of s from DefaultSchema.
func (s Schema) withDefaults() Schema {
	def := DefaultSchema()
	if len(s.SelfKeys) == 0 {
		s.SelfKeys = def.SelfKeys
	}
	if s.Derived == nil {
		s.Derived = def.Derived
	}
	if s.DescriptionAttribute == "" {
		s.DescriptionAttribute = def.DescriptionAttribute
	}
	if s.ExampleDataAttribute == "" {
		s.ExampleDataAttribute = def.ExampleDataAttribute
	}
	return s
}

// derivedURL returns the URL for a derived field, or "" if name is not derived.
func (s Schema) derivedURL(base, name string) string {
	suffix, ok := s.Derived[name]
	if !ok || base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + suffix
}

// Merge returns s with the non-empty settings of o applied on top.
func (s Schema) Merge(o Schema) Schema {
	out := s
	if len(o.SelfKeys) > 0 {
		out.SelfKeys = o.SelfKeys
	}
	out.Derived = make(map[string]string, len(s.Derived)+len(o.Derived))
	for k, v := range s.Derived {
		out.Derived[k] = v
	}
	for k, v := range o.Derived {
		out.Derived[k] = v
	}
	if o.DescriptionAttribute != "" {
		out.DescriptionAttribute = o.DescriptionAttribute
	}
	if o.ExampleDataAttribute != "" {
		out.ExampleDataAttribute = o.ExampleDataAttribute
	}
	return out
}
