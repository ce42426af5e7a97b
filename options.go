package lattice

import (
	"net/http"

	"go.uber.org/zap"
)

// --- Client Options ---

// clientConfig holds the resolved construction options for a Client.
type clientConfig struct {
	httpClient *http.Client
	authToken  string
	headers    map[string]string
	logger     *zap.Logger
}

// ClientOption configures the lattice client.
type ClientOption func(*clientConfig)

// WithHTTPClient sets a custom net/http.Client for the lattice client.
// It overrides Config.Timeout.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithAuthToken sets a Bearer token for authentication, overriding
// Config.AuthToken.
func WithAuthToken(token string) ClientOption {
	return func(c *clientConfig) {
		c.authToken = token
	}
}

// WithHeader sets a custom header on all requests.
func WithHeader(key, value string) ClientOption {
	return func(c *clientConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

// WithLogger sets a structured logger for the client's operational
// events. The async operations log dropped errors and missing-
// configuration diagnostics through it. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// --- Search Options ---

// searchConfig holds the resolved parameters for a lattice search.
type searchConfig struct {
	name         string
	branch       string
	version      string
	latticeType  string
	particleType string
}

// SearchOption narrows a SearchLattices call.
type SearchOption func(*searchConfig)

// WithLatticeName filters by lattice name. The wildcards * and ? match
// any run of characters and any single character respectively.
func WithLatticeName(name string) SearchOption {
	return func(c *searchConfig) {
		c.name = name
	}
}

// WithBranch filters by lattice branch.
func WithBranch(branch string) SearchOption {
	return func(c *searchConfig) {
		c.branch = branch
	}
}

// WithVersion filters by lattice version.
func WithVersion(version string) SearchOption {
	return func(c *searchConfig) {
		c.version = version
	}
}

// WithLatticeType filters by lattice type (e.g. "impactz").
func WithLatticeType(latticeType string) SearchOption {
	return func(c *searchConfig) {
		c.latticeType = latticeType
	}
}

// WithParticleType filters by particle type (e.g. "kr86").
func WithParticleType(particleType string) SearchOption {
	return func(c *searchConfig) {
		c.particleType = particleType
	}
}

func resolveSearchConfig(opts []SearchOption) searchConfig {
	cfg := searchConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
