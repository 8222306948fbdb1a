// Package catalogtest provides an in-memory catalog API for tests.
package catalogtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Server serves JSON documents by path and counts requests per path.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	docs  map[string]any
	lists map[string]list
	hits  map[string]int
}

type list struct {
	tag   string
	items []any
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		docs:  make(map[string]any),
		lists: make(map[string]list),
		hits:  make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Base returns the catalog base URL, with a trailing slash.
func (s *Server) Base() string { return s.URL + "/" }

// Handle registers doc at path. Strings in doc may use "{base}" for the catalog base URL.
func (s *Server) Handle(path string, doc any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = s.expand(doc)
}

// HandleList registers a paginated list endpoint returning {tag: {pages, results}}.
func (s *Server) HandleList(path, tag string, items []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expanded := make([]any, len(items))
	for i, item := range items {
		expanded[i] = s.expand(item)
	}
	s.lists[path] = list{tag: tag, items: expanded}
}

// Hits returns the number of requests made for path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the number of requests made for any path.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	doc, ok := s.docs[r.URL.Path]
	l, isList := s.lists[r.URL.Path]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case ok:
		json.NewEncoder(w).Encode(doc)
	case isList:
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if perPage <= 0 {
			perPage = 50
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page <= 0 {
			page = 1
		}
		pages := (len(l.items) + perPage - 1) / perPage
		if pages == 0 {
			pages = 1
		}
		start := (page - 1) * perPage
		end := start + perPage
		if start > len(l.items) {
			start = len(l.items)
		}
		if end > len(l.items) {
			end = len(l.items)
		}
		json.NewEncoder(w).Encode(map[string]any{
			l.tag: map[string]any{
				"pages":   pages,
				"results": l.items[start:end],
			},
		})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) expand(v any) any {
	switch t := v.(type) {
	case string:
		return strings.ReplaceAll(t, "{base}", s.Base())
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = s.expand(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = s.expand(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = s.expand(item)
		}
		return out
	default:
		return v
	}
}

// Param describes an operation input or output.
type Param struct {
	Name        string
	Description string // empty means null
	Examples    []string
}

// Operation describes a SOAP operation or REST method.
type Operation struct {
	Name        string
	Description string
	Annotations []string
	Inputs      []Param
	Outputs     []Param
}

// Variant describes one interface of a service.
type Variant struct {
	Name             string
	REST             bool
	Unknown          bool
	WSDL             string
	DocumentationURL string
	Operations       []Operation
	Deployments      []string
}

// Service describes a complete service fixture.
type Service struct {
	ID                int
	Name              string
	Description       string
	Categories        []string
	Descriptions      []string
	DocumentationURLs []string
	Licenses          []string
	Contacts          []string
	Publications      []string
	Variants          []Variant
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func strs(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

// AddService registers every document reachable from svc and returns the
// list entry for it, suitable for HandleList("/services", "services", ...).
func (s *Server) AddService(svc Service) map[string]any {
	self := fmt.Sprintf("{base}services/%d", svc.ID)
	path := fmt.Sprintf("/services/%d", svc.ID)

	var categories []any
	for i, name := range svc.Categories {
		categories = append(categories, map[string]any{
			"resource": fmt.Sprintf("{base}categories/%d", i+1),
			"name":     name,
		})
	}
	s.Handle(path+"/summary", map[string]any{
		"service": map[string]any{
			"summary": map[string]any{
				"categories":         categories,
				"descriptions":       strs(svc.Descriptions),
				"documentation_urls": strs(svc.DocumentationURLs),
				"licenses":           strs(svc.Licenses),
				"contacts":           strs(svc.Contacts),
				"publications":       strs(svc.Publications),
				"citations":          []any{},
			},
		},
	})

	s.Handle("/users/1", map[string]any{
		"user": map[string]any{
			"self":         "{base}users/1",
			"name":         "Ada Submitter",
			"affiliation":  "Example Lab",
			"public_email": nil,
		},
	})

	var variants, deployments []any
	for vi, v := range svc.Variants {
		vid := svc.ID*100 + vi
		var vpath, vres string
		switch {
		case v.REST:
			vpath = fmt.Sprintf("/rest_services/%d", vid)
			vres = "{base}" + strings.TrimPrefix(vpath, "/")
			var resources []any
			for oi, op := range v.Operations {
				rid := vid*100 + oi
				mpath := fmt.Sprintf("/rest_methods/%d", rid)
				s.Handle(mpath, map[string]any{
					"rest_method": map[string]any{
						"self":    "{base}" + strings.TrimPrefix(mpath, "/"),
						"inputs":  map[string]any{"parameters": s.params("rest_parameters", "rest_parameter", rid, op.Inputs)},
						"outputs": map[string]any{"parameters": s.params("rest_parameters", "rest_parameter", rid+50, op.Outputs)},
					},
				})
				rpath := fmt.Sprintf("/rest_resources/%d", rid)
				s.Handle(rpath, map[string]any{
					"rest_resource": map[string]any{
						"self": "{base}" + strings.TrimPrefix(rpath, "/"),
						"methods": []any{map[string]any{
							"endpoint_label": op.Name,
							"description":    nullable(op.Description),
							"resource":       "{base}" + strings.TrimPrefix(mpath, "/"),
						}},
					},
				})
				resources = append(resources, map[string]any{"resource": "{base}" + strings.TrimPrefix(rpath, "/")})
			}
			s.Handle(vpath, map[string]any{
				"rest_service": map[string]any{
					"self":              vres,
					"documentation_url": nullable(v.DocumentationURL),
					"resources":         resources,
				},
			})
		case v.Unknown:
			vpath = fmt.Sprintf("/grpc_services/%d", vid)
			vres = "{base}" + strings.TrimPrefix(vpath, "/")
			s.Handle(vpath, map[string]any{"grpc_service": map[string]any{"self": vres}})
		default:
			vpath = fmt.Sprintf("/soap_services/%d", vid)
			vres = "{base}" + strings.TrimPrefix(vpath, "/")
			var operations []any
			for oi, op := range v.Operations {
				oid := vid*100 + oi
				opath := fmt.Sprintf("/soap_operations/%d", oid)
				s.Handle(opath, map[string]any{
					"soap_operation": map[string]any{
						"self":        "{base}" + strings.TrimPrefix(opath, "/"),
						"name":        op.Name,
						"description": nullable(op.Description),
						"inputs":      s.params("soap_inputs", "soap_input", oid, op.Inputs),
						"outputs":     s.params("soap_outputs", "soap_output", oid, op.Outputs),
					},
				})
				s.annotations(opath+"/annotations", "description", op.Annotations)
				operations = append(operations, map[string]any{
					"name":     op.Name,
					"resource": "{base}" + strings.TrimPrefix(opath, "/"),
				})
			}
			s.Handle(vpath, map[string]any{
				"soap_service": map[string]any{
					"self":              vres,
					"wsdl_location":     nullable(v.WSDL),
					"documentation_url": nullable(v.DocumentationURL),
					"operations":        operations,
				},
			})
		}
		variants = append(variants, map[string]any{"name": v.Name, "resource": vres})

		for di, endpoint := range v.Deployments {
			did := vid*10 + di
			dpath := fmt.Sprintf("/service_deployments/%d", did)
			s.Handle(dpath, map[string]any{
				"service_deployment": map[string]any{
					"self": "{base}" + strings.TrimPrefix(dpath, "/"),
					"provided_variant": map[string]any{
						"resource":    vres,
						"description": v.Name,
					},
				},
			})
			deployments = append(deployments, map[string]any{
				"resource": "{base}" + strings.TrimPrefix(dpath, "/"),
				"endpoint": endpoint,
				"provider": map[string]any{"name": "Provider", "description": "Hosting provider"},
			})
		}
	}

	doc := map[string]any{
		"self":        self,
		"name":        svc.Name,
		"description": nullable(svc.Description),
		"created_at":  "2013-05-01T10:00:00Z",
		"submitter":   "{base}users/1",
		"variants":    variants,
		"deployments": deployments,
	}
	s.Handle(path, map[string]any{"service": doc})
	return s.expand(doc).(map[string]any)
}

func (s *Server) params(collection, tag string, owner int, params []Param) []any {
	var out []any
	for i, p := range params {
		ppath := fmt.Sprintf("/%s/%d", collection, owner*10+i)
		self := "{base}" + strings.TrimPrefix(ppath, "/")
		s.Handle(ppath, map[string]any{tag: map[string]any{"self": self, "name": p.Name}})
		s.annotations(ppath+"/annotations", "exampledata", p.Examples)
		out = append(out, map[string]any{
			"name":        p.Name,
			"description": nullable(p.Description),
			"resource":    self,
		})
	}
	return out
}

func (s *Server) annotations(path, attribute string, contents []string) {
	var results []any
	for _, content := range contents {
		results = append(results, map[string]any{
			"attribute": map[string]any{"identifier": "http://biodiversitycatalogue.org/attribute/" + attribute},
			"value":     map[string]any{"content": content},
		})
	}
	s.Handle(path, map[string]any{"annotations": map[string]any{"results": results}})
}
