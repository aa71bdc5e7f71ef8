package dashboard

import (
	"fmt"
	"io"
	"os"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"
)

// ParameterType describes how an endpoint parameter should be captured.
type ParameterType string

const (
	ParamString ParameterType = "string"
	ParamNumber ParameterType = "number"
	ParamSelect ParameterType = "select"
)

// EndpointParameter describes one query parameter of an upstream endpoint.
type EndpointParameter struct {
	Name        string        `json:"name" yaml:"name"`
	Type        ParameterType `json:"type" yaml:"type"`
	Required    bool          `json:"required" yaml:"required"`
	Label       string        `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string        `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []string      `json:"options,omitempty" yaml:"options,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// EndpointDescriptor captures one upstream capability widgets can bind to.
type EndpointDescriptor struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Path        string              `json:"path" yaml:"path"`
	Category    string              `json:"category,omitempty" yaml:"category,omitempty"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  []EndpointParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Catalog is the immutable set of known endpoints. Build it once at boot;
// lookups after that are read-only.
type Catalog struct {
	entries []EndpointDescriptor
	byID    map[string]int
	byPath  map[string]int
}

// NewCatalog builds a catalog from the built-in endpoint set plus any
// extras. Extras with an empty ID get one derived from the name.
func NewCatalog(extra ...EndpointDescriptor) (*Catalog, error) {
	entries := append(DefaultEndpoints(), extra...)
	return buildCatalog(entries)
}

func buildCatalog(entries []EndpointDescriptor) (*Catalog, error) {
	c := &Catalog{
		byID:   make(map[string]int, len(entries)),
		byPath: make(map[string]int, len(entries)),
	}
	for _, desc := range entries {
		if desc.Path == "" {
			return nil, fmt.Errorf("dashboard: endpoint %q is missing a path", desc.Name)
		}
		if desc.ID == "" {
			desc.ID = strcase.ToSnake(desc.Name)
		}
		if _, exists := c.byID[desc.ID]; exists {
			return nil, fmt.Errorf("dashboard: duplicate endpoint id %q", desc.ID)
		}
		c.byID[desc.ID] = len(c.entries)
		if _, exists := c.byPath[desc.Path]; !exists {
			c.byPath[desc.Path] = len(c.entries)
		}
		c.entries = append(c.entries, desc)
	}
	return c, nil
}

// Endpoints returns a copy of every descriptor in catalog order.
func (c *Catalog) Endpoints() []EndpointDescriptor {
	out := make([]EndpointDescriptor, len(c.entries))
	copy(out, c.entries)
	return out
}

// Endpoint looks up a descriptor by ID.
func (c *Catalog) Endpoint(id string) (EndpointDescriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return EndpointDescriptor{}, false
	}
	return c.entries[i], true
}

// EndpointByPath looks up a descriptor by its upstream path.
func (c *Catalog) EndpointByPath(path string) (EndpointDescriptor, bool) {
	i, ok := c.byPath[path]
	if !ok {
		return EndpointDescriptor{}, false
	}
	return c.entries[i], true
}

// CategoryGroup is one category with its endpoints, in catalog order.
type CategoryGroup struct {
	Category  string               `json:"category"`
	Endpoints []EndpointDescriptor `json:"endpoints"`
}

// ByCategory groups endpoints by category, preserving first-appearance
// order of both categories and endpoints.
func (c *Catalog) ByCategory() []CategoryGroup {
	var groups []CategoryGroup
	index := map[string]int{}
	for _, desc := range c.entries {
		cat := desc.Category
		if cat == "" {
			cat = "General"
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, CategoryGroup{Category: cat})
		}
		groups[i].Endpoints = append(groups[i].Endpoints, desc)
	}
	return groups
}

const (
	catalogManifestVersionV1 = "1"
	// CatalogManifestVersion exposes the current manifest format version for tooling.
	CatalogManifestVersion = catalogManifestVersionV1
)

// CatalogManifest models a YAML document contributing extra endpoints.
type CatalogManifest struct {
	Version   string               `json:"version" yaml:"version"`
	Name      string               `json:"name,omitempty" yaml:"name,omitempty"`
	Endpoints []EndpointDescriptor `json:"endpoints" yaml:"endpoints"`
	Source    string               `json:"-" yaml:"-"`
}

// LoadCatalog builds the catalog from the built-in set plus the endpoints
// of every manifest file given.
func LoadCatalog(manifestPaths ...string) (*Catalog, error) {
	var extra []EndpointDescriptor
	for _, path := range manifestPaths {
		if path == "" {
			continue
		}
		doc, err := ReadCatalogManifest(path)
		if err != nil {
			return nil, err
		}
		extra = append(extra, doc.Endpoints...)
	}
	return NewCatalog(extra...)
}

// ReadCatalogManifest loads a manifest file from disk.
func ReadCatalogManifest(path string) (*CatalogManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeCatalogManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeCatalogManifest reads a manifest from any reader.
func DecodeCatalogManifest(r io.Reader) (*CatalogManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc CatalogManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = catalogManifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *CatalogManifest) Validate() error {
	if doc.Version != catalogManifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Endpoints))
	for idx, desc := range doc.Endpoints {
		if desc.Name == "" {
			return fmt.Errorf("dashboard: manifest endpoint at index %d is missing a name", idx)
		}
		if desc.Path == "" {
			return fmt.Errorf("dashboard: manifest endpoint %s is missing a path", desc.Name)
		}
		id := desc.ID
		if id == "" {
			id = strcase.ToSnake(desc.Name)
		}
		if _, exists := seen[id]; exists {
			return fmt.Errorf("dashboard: manifest duplicates endpoint id %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
