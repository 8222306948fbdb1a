package catalog

import (
	"context"
	"errors"
	"fmt"

	apperrors "svcwiki/internal/errors"
)

// InterfaceKind distinguishes the interface styles a variant can expose.
type InterfaceKind int

const (
	InterfaceSOAP InterfaceKind = iota + 1
	InterfaceREST
)

func (k InterfaceKind) String() string {
	switch k {
	case InterfaceSOAP:
		return "SOAP"
	case InterfaceREST:
		return "REST"
	default:
		return "unknown"
	}
}

// Interface is implemented by *SoapInterface and *RestInterface only.
type Interface interface {
	Kind() InterfaceKind
	DocumentationURL() string
	isInterface()
}

// Variant is one exposed interface of a service.
type Variant struct {
	Name      string
	URL       string
	Interface Interface
}

// Label returns the variant name with its interface style, e.g. "Main (SOAP)".
func (v *Variant) Label() string {
	if v.Interface == nil {
		return v.Name + " (unknown)"
	}
	return fmt.Sprintf("%s (%s)", v.Name, v.Interface.Kind())
}

// Variants fetches the service's variants and decides each one's interface
// style. A variant with an unrecognised document is kept with a nil Interface.
func (s *Service) Variants(ctx context.Context) ([]*Variant, error) {
	entries, err := s.entries(ctx, "variants")
	if err != nil {
		return nil, err
	}
	out := make([]*Variant, 0, len(entries))
	for _, entry := range entries {
		v, err := ParseVariant(ctx, entry)
		var protoErr *apperrors.ProtocolError
		if err != nil && !(errors.As(err, &protoErr) && v != nil) {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseVariant resolves a {name, resource} variant entry. The interface style
// is decided here, from whether the variant document has a soap_service or a
// rest_service body; a document with neither yields a ProtocolError.
func ParseVariant(ctx context.Context, entry *Resource) (*Variant, error) {
	v := &Variant{Name: entry.Text("name")}

	ref, err := entry.Field("resource")
	if err != nil {
		return nil, err
	}
	v.URL = refURL(ref)

	doc, err := ref.Resource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get variant %s: %w", v.URL, err)
	}

	switch {
	case doc.Has("soap_service"):
		body, err := doc.Object(ctx, "soap_service")
		if err != nil {
			return nil, err
		}
		v.Interface = &SoapInterface{res: body}
	case doc.Has("rest_service"):
		body, err := doc.Object(ctx, "rest_service")
		if err != nil {
			return nil, err
		}
		v.Interface = &RestInterface{res: body}
	default:
		return v, &apperrors.ProtocolError{URL: v.URL, Reason: "variant has neither soap_service nor rest_service"}
	}
	return v, nil
}

// SoapInterface is a WSDL-described variant.
type SoapInterface struct {
	res *Resource
}

func (*SoapInterface) Kind() InterfaceKind { return InterfaceSOAP }
func (*SoapInterface) isInterface()        {}

func (i *SoapInterface) WSDLLocation() string     { return i.res.Text("wsdl_location") }
func (i *SoapInterface) DocumentationURL() string { return i.res.Text("documentation_url") }

// Operations fetches the SOAP operations of the interface.
func (i *SoapInterface) Operations(ctx context.Context) ([]*Operation, error) {
	entries, err := listField(ctx, i.res, "operations")
	if err != nil {
		return nil, err
	}
	var out []*Operation
	for _, entry := range entries {
		doc, err := entry.Object(ctx, "resource")
		if err != nil {
			return nil, err
		}
		body, err := doc.Object(ctx, "soap_operation")
		if err != nil {
			return nil, err
		}
		op := &Operation{
			Name:        body.Text("name"),
			Description: body.Text("description"),
			res:         body,
		}
		if op.Inputs, err = parameters(ctx, body, "inputs"); err != nil {
			return nil, err
		}
		if op.Outputs, err = parameters(ctx, body, "outputs"); err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}

// RestInterface is a variant described by REST resources and methods.
type RestInterface struct {
	res *Resource
}

func (*RestInterface) Kind() InterfaceKind { return InterfaceREST }
func (*RestInterface) isInterface()        {}

func (i *RestInterface) DocumentationURL() string { return i.res.Text("documentation_url") }

// Resources returns the number of REST resources declared by the interface.
func (i *RestInterface) Resources(ctx context.Context) (int, error) {
	entries, err := listField(ctx, i.res, "resources")
	return len(entries), err
}

// Operations fetches every method of every REST resource, in declaration order.
func (i *RestInterface) Operations(ctx context.Context) ([]*Operation, error) {
	entries, err := listField(ctx, i.res, "resources")
	if err != nil {
		return nil, err
	}
	var out []*Operation
	for _, entry := range entries {
		doc, err := entry.Object(ctx, "resource")
		if err != nil {
			return nil, err
		}
		rest, err := doc.Object(ctx, "rest_resource")
		if err != nil {
			return nil, err
		}
		methods, err := listField(ctx, rest, "methods")
		if err != nil {
			return nil, err
		}
		for _, method := range methods {
			op := &Operation{
				Name:        method.Text("endpoint_label"),
				Description: method.Text("description"),
			}
			mdoc, err := method.Object(ctx, "resource")
			if err != nil {
				return nil, err
			}
			body, err := mdoc.Object(ctx, "rest_method")
			if err != nil {
				return nil, err
			}
			if op.Inputs, err = restParameters(ctx, body, "inputs"); err != nil {
				return nil, err
			}
			if op.Outputs, err = restParameters(ctx, body, "outputs"); err != nil {
				return nil, err
			}
			out = append(out, op)
		}
	}
	return out, nil
}

// Operation is a SOAP operation or a REST method.
type Operation struct {
	Name        string
	Description string
	Inputs      []*Parameter
	Outputs     []*Parameter

	// res is the operation body; REST methods have no annotations and leave it nil.
	res *Resource
}

// AnnotatedDescriptions returns descriptions attached as annotations.
func (o *Operation) AnnotatedDescriptions(ctx context.Context) ([]string, error) {
	if o.res == nil {
		return nil, nil
	}
	return annotations(ctx, o.res, o.res.cache.schema.DescriptionAttribute)
}

// Parameter is an input or output of an operation.
type Parameter struct {
	Name        string
	Description string

	entry *Resource
}

// Examples returns example data attached to the parameter as annotations.
func (p *Parameter) Examples(ctx context.Context) ([]string, error) {
	if p.entry == nil || !p.entry.Has("resource") {
		return nil, nil
	}
	doc, err := p.entry.Object(ctx, "resource")
	if err != nil {
		return nil, err
	}
	body, _, err := doc.Unwrap()
	if err != nil {
		return nil, err
	}
	return annotations(ctx, body, body.cache.schema.ExampleDataAttribute)
}

func parameters(ctx context.Context, body *Resource, name string) ([]*Parameter, error) {
	entries, err := listField(ctx, body, name)
	if err != nil {
		return nil, err
	}
	out := make([]*Parameter, 0, len(entries))
	for _, entry := range entries {
		out = append(out, &Parameter{
			Name:        entry.Text("name"),
			Description: entry.Text("description"),
			entry:       entry,
		})
	}
	return out, nil
}

// restParameters reads {"inputs": {"parameters": [...]}}.
func restParameters(ctx context.Context, body *Resource, name string) ([]*Parameter, error) {
	if !body.Has(name) {
		return nil, nil
	}
	group, err := body.Object(ctx, name)
	if err != nil {
		return nil, err
	}
	return parameters(ctx, group, "parameters")
}

// listField returns the objects of an inline list field; absent or null lists are empty.
func listField(ctx context.Context, r *Resource, name string) ([]*Resource, error) {
	if !r.Has(name) {
		return nil, nil
	}
	v, err := r.Field(name)
	if err != nil {
		return nil, err
	}
	return objects(ctx, v)
}

// annotations returns the content of every annotation on r whose attribute
// identifier equals attribute.
func annotations(ctx context.Context, r *Resource, attribute string) ([]string, error) {
	doc, err := r.Object(ctx, "annotations")
	if err != nil {
		if apperrors.IsMissingField(err) {
			return nil, nil
		}
		return nil, err
	}
	results, err := doc.Lookup("results")
	if err != nil {
		return nil, err
	}

	var out []string
	for _, item := range results.Items() {
		ann, err := item.Resource(ctx)
		if err != nil {
			return nil, err
		}
		id, err := ann.Path(ctx, "attribute", "identifier")
		if err != nil || id.String() != attribute {
			continue
		}
		content, err := ann.Path(ctx, "value", "content")
		if err != nil {
			continue
		}
		out = append(out, content.String())
	}
	return out, nil
}
