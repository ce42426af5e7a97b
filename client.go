package lattice

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Client communicates with a lattice model service over HTTP. It
// provides the name and branch query operations plus the service's
// REST API for lattices, elements, and particle types.
//
// The Config passed to NewClient is read-only for the lifetime of the
// client; concurrent use from multiple goroutines is safe.
type Client struct {
	config    Config
	transport *transport
	logger    *zap.Logger
}

// NewClient creates a lattice client for the endpoints named in cfg.
// Missing endpoint URLs are not an error here: each operation checks
// the URL it needs and reports ErrNotConfigured when absent.
//
// Example:
//
//	client := lattice.NewClient(lattice.Config{
//	    BaseURL: "https://lattice.example.org",
//	})
func NewClient(cfg Config, opts ...ClientOption) *Client {
	cc := clientConfig{authToken: cfg.AuthToken}
	for _, opt := range opts {
		opt(&cc)
	}
	if cc.httpClient == nil && cfg.Timeout > 0 {
		cc.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cc.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config:    cfg,
		transport: newTransport(cc),
		logger:    logger,
	}
}

// FindLatticeNames returns the lattice names matching the query. The
// query is an opaque string forwarded verbatim; an empty query is sent
// as-is and typically matches every name.
//
// When no name-query endpoint is configured, no request is issued and
// the error matches [ErrNotConfigured].
func (c *Client) FindLatticeNames(ctx context.Context, query string) ([]string, error) {
	endpoint := c.config.namesURL()
	if endpoint == "" {
		return nil, notConfigured(ConfigKeyNamesURL)
	}

	var names []string
	if err := c.transport.postQuery(ctx, endpoint, query, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// FindLatticeBranches returns the lattice branches matching the query.
// Identical contract to FindLatticeNames, bound to the branch-query
// endpoint.
func (c *Client) FindLatticeBranches(ctx context.Context, query string) ([]string, error) {
	endpoint := c.config.branchesURL()
	if endpoint == "" {
		return nil, notConfigured(ConfigKeyBranchesURL)
	}

	var branches []string
	if err := c.transport.postQuery(ctx, endpoint, query, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// --- REST resource types ---

// Links holds hypermedia references returned by the REST API.
type Links struct {
	Self      string `json:"self,omitempty"`
	Enclosure string `json:"enclosure,omitempty"`
}

// Property is a named value attached to a lattice or element,
// optionally with a unit.
type Property struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// LatticeFile describes a file attached to a lattice.
type LatticeFile struct {
	Links    Links  `json:"links"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

// Lattice is a lattice definition stored by the service.
type Lattice struct {
	ID           string        `json:"id"`
	Links        Links         `json:"links"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	StatusType   string        `json:"status_type"`
	LatticeType  string        `json:"lattice_type"`
	ParticleType string        `json:"particle_type"`
	CreatedBy    string        `json:"created_by"`
	CreatedDate  string        `json:"created_date"`
	Properties   []Property    `json:"properties"`
	Files        []LatticeFile `json:"files"`
}

// Element is a single element of a lattice, ordered by position along
// the beam line.
type Element struct {
	ID         string     `json:"id"`
	Links      Links      `json:"links"`
	Type       string     `json:"type"`
	LatticeID  string     `json:"lattice_id"`
	Order      int        `json:"order"`
	Name       string     `json:"name"`
	Length     float64    `json:"length"`
	Position   float64    `json:"position"`
	Properties []Property `json:"properties"`
}

// ParticleType identifies a particle species known to the service.
type ParticleType struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// --- REST operations ---

// SearchLattices returns the lattices matching the given search
// options. With no options every lattice is returned.
//
// Example:
//
//	lattices, err := client.SearchLattices(ctx,
//	    lattice.WithLatticeName("LS1*"),
//	    lattice.WithParticleType("kr86"),
//	)
func (c *Client) SearchLattices(ctx context.Context, opts ...SearchOption) ([]Lattice, error) {
	if c.config.BaseURL == "" {
		return nil, notConfigured(ConfigKeyBaseURL)
	}

	cfg := resolveSearchConfig(opts)
	params := url.Values{}
	if cfg.name != "" {
		params.Set("name", cfg.name)
	}
	if cfg.branch != "" {
		params.Set("branch", cfg.branch)
	}
	if cfg.version != "" {
		params.Set("version", cfg.version)
	}
	if cfg.latticeType != "" {
		params.Set("lattice_type", cfg.latticeType)
	}
	if cfg.particleType != "" {
		params.Set("particle_type", cfg.particleType)
	}

	endpoint := c.config.restURL("/lattices")
	if q := params.Encode(); q != "" {
		endpoint += "?" + q
	}

	var lattices []Lattice
	if err := c.transport.get(ctx, endpoint, &lattices); err != nil {
		return nil, err
	}
	return lattices, nil
}

// GetLattice retrieves a lattice by its identifier. A missing lattice
// yields an error matching [ErrNotFound].
func (c *Client) GetLattice(ctx context.Context, id string) (*Lattice, error) {
	if c.config.BaseURL == "" {
		return nil, notConfigured(ConfigKeyBaseURL)
	}

	var lat Lattice
	endpoint := c.config.restURL("/lattices/" + url.PathEscape(id))
	if err := c.transport.get(ctx, endpoint, &lat); err != nil {
		return nil, err
	}
	return &lat, nil
}

// ListLatticeElements returns the elements of a lattice in beam-line
// order.
func (c *Client) ListLatticeElements(ctx context.Context, latticeID string) ([]Element, error) {
	if c.config.BaseURL == "" {
		return nil, notConfigured(ConfigKeyBaseURL)
	}

	var elements []Element
	endpoint := c.config.restURL(fmt.Sprintf("/lattices/%s/elements", url.PathEscape(latticeID)))
	if err := c.transport.get(ctx, endpoint, &elements); err != nil {
		return nil, err
	}
	return elements, nil
}

// GetLatticeElement retrieves a single lattice element by its
// identifier.
func (c *Client) GetLatticeElement(ctx context.Context, elementID string) (*Element, error) {
	if c.config.BaseURL == "" {
		return nil, notConfigured(ConfigKeyBaseURL)
	}

	var elem Element
	endpoint := c.config.restURL("/lattices/elements/" + url.PathEscape(elementID))
	if err := c.transport.get(ctx, endpoint, &elem); err != nil {
		return nil, err
	}
	return &elem, nil
}

// FindParticleTypes returns the particle species known to the service.
func (c *Client) FindParticleTypes(ctx context.Context) ([]ParticleType, error) {
	if c.config.BaseURL == "" {
		return nil, notConfigured(ConfigKeyBaseURL)
	}

	var types []ParticleType
	if err := c.transport.get(ctx, c.config.restURL("/particletypes"), &types); err != nil {
		return nil, err
	}
	return types, nil
}
