package lattice

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration keys recognized by the client. They double as the YAML
// field names; the environment variable form is the upper-cased key.
const (
	ConfigKeyNamesURL    = "lattice_names_url"
	ConfigKeyBranchesURL = "lattice_branches_url"
	ConfigKeyBaseURL     = "lattice_base_url"
)

// Config names the endpoints of a lattice model service. It is
// populated once at setup time and read-only afterwards; the client
// never mutates it. No validation is performed beyond presence checks
// at call time.
type Config struct {
	// NamesURL is the endpoint for lattice name queries. When empty
	// and BaseURL is set, it defaults to the service's standard route
	// under BaseURL.
	NamesURL string `yaml:"lattice_names_url"`

	// BranchesURL is the endpoint for lattice branch queries, with the
	// same BaseURL defaulting as NamesURL.
	BranchesURL string `yaml:"lattice_branches_url"`

	// BaseURL is the root URL of the lattice model service. It is
	// required for the REST operations (SearchLattices, GetLattice,
	// elements, particle types).
	BaseURL string `yaml:"lattice_base_url"`

	// AuthToken, when set, is sent as a Bearer token on every request.
	AuthToken string `yaml:"auth_token"`

	// Timeout bounds each request when no custom HTTP client is
	// supplied. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// namesURL resolves the effective name-query endpoint, or "" when
// neither NamesURL nor BaseURL is configured.
func (c Config) namesURL() string {
	if c.NamesURL != "" {
		return c.NamesURL
	}
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/") + defaultNamesPath
	}
	return ""
}

func (c Config) branchesURL() string {
	if c.BranchesURL != "" {
		return c.BranchesURL
	}
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/") + defaultBranchesPath
	}
	return ""
}

func (c Config) restURL(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + restBasePath + path
}

// Load builds a Config from environment variables. A .env file in the
// working directory is loaded first if present.
//
// Recognized variables: LATTICE_NAMES_URL, LATTICE_BRANCHES_URL,
// LATTICE_BASE_URL, LATTICE_AUTH_TOKEN, LATTICE_TIMEOUT.
func Load() (Config, error) {
	// Load .env if it exists; absence is not an error.
	_ = godotenv.Load()

	cfg := Config{
		NamesURL:    os.Getenv(strings.ToUpper(ConfigKeyNamesURL)),
		BranchesURL: os.Getenv(strings.ToUpper(ConfigKeyBranchesURL)),
		BaseURL:     os.Getenv(strings.ToUpper(ConfigKeyBaseURL)),
		AuthToken:   os.Getenv("LATTICE_AUTH_TOKEN"),
	}

	if v := os.Getenv("LATTICE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("lattice: parse LATTICE_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// LoadFile builds a Config from a YAML file.
//
// Example:
//
//	lattice_base_url: https://lattice.example.org
//	lattice_names_url: https://lattice.example.org/lattice/web/lattice/names
//	timeout: 10s
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("lattice: read config: %w", err)
	}

	// yaml.v3 does not decode duration strings, so Timeout goes
	// through a string field.
	var file struct {
		NamesURL    string `yaml:"lattice_names_url"`
		BranchesURL string `yaml:"lattice_branches_url"`
		BaseURL     string `yaml:"lattice_base_url"`
		AuthToken   string `yaml:"auth_token"`
		Timeout     string `yaml:"timeout"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("lattice: parse config %s: %w", path, err)
	}

	cfg := Config{
		NamesURL:    file.NamesURL,
		BranchesURL: file.BranchesURL,
		BaseURL:     file.BaseURL,
		AuthToken:   file.AuthToken,
	}
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("lattice: parse timeout in %s: %w", path, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}
