// Package latticetesting provides test utilities for code built on the
// lattice client.
//
// [NewServer] starts a fake lattice model service that serves canned
// name and branch results and records every query it receives:
//
//	func TestLookup(t *testing.T) {
//	    srv := latticetesting.NewServer(t,
//	        latticetesting.WithNames("LS1", "LS2"),
//	    )
//	    client := srv.Client()
//	    names, err := client.FindLatticeNames(context.Background(), "LS")
//	    // ...
//	    latticetesting.AssertNameQueried(t, srv, "LS")
//	}
package latticetesting

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	lattice "github.com/latticemodel/lattice-go-sdk"
)

// Server is a fake lattice model service. It serves the configured
// names and branches from the standard query routes and records the
// received queries for later assertion. Safe for concurrent requests.
type Server struct {
	httpServer *httptest.Server

	mu            sync.Mutex
	names         []string
	branches      []string
	nameQueries   []string
	branchQueries []string
}

// ServerOption configures the fake server.
type ServerOption func(*Server)

// WithNames sets the lattice names returned by every name query.
func WithNames(names ...string) ServerOption {
	return func(s *Server) { s.names = names }
}

// WithBranches sets the lattice branches returned by every branch query.
func WithBranches(branches ...string) ServerOption {
	return func(s *Server) { s.branches = branches }
}

// NewServer starts a fake lattice model service. The server is shut
// down automatically when the test finishes.
func NewServer(t *testing.T, opts ...ServerOption) *Server {
	t.Helper()

	s := &Server{
		names:    []string{},
		branches: []string{},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/lattice/web/lattice/names", func(w http.ResponseWriter, r *http.Request) {
		s.record(&s.nameQueries, r)
		writeJSON(w, s.snapshot(&s.names))
	})
	mux.HandleFunc("/lattice/web/lattice/branches", func(w http.ResponseWriter, r *http.Request) {
		s.record(&s.branchQueries, r)
		writeJSON(w, s.snapshot(&s.branches))
	})

	s.httpServer = httptest.NewServer(mux)
	t.Cleanup(s.httpServer.Close)
	return s
}

// URL returns the base URL of the fake service.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Config returns a lattice.Config pointing at the fake service.
func (s *Server) Config() lattice.Config {
	return lattice.Config{BaseURL: s.httpServer.URL}
}

// Client returns a lattice client configured against the fake service.
func (s *Server) Client(opts ...lattice.ClientOption) *lattice.Client {
	return lattice.NewClient(s.Config(), opts...)
}

// NameQueries returns the name queries received so far, in arrival order.
func (s *Server) NameQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.nameQueries...)
}

// BranchQueries returns the branch queries received so far, in arrival order.
func (s *Server) BranchQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.branchQueries...)
}

func (s *Server) record(dst *[]string, r *http.Request) {
	query := r.FormValue("query")
	s.mu.Lock()
	*dst = append(*dst, query)
	s.mu.Unlock()
}

func (s *Server) snapshot(src *[]string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), *src...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// AssertNameQueried fails the test unless the fake server received at
// least one name query equal to query.
func AssertNameQueried(t *testing.T, s *Server, query string) {
	t.Helper()
	assertQueried(t, "name", s.NameQueries(), query)
}

// AssertBranchQueried fails the test unless the fake server received
// at least one branch query equal to query.
func AssertBranchQueried(t *testing.T, s *Server, query string) {
	t.Helper()
	assertQueried(t, "branch", s.BranchQueries(), query)
}

func assertQueried(t *testing.T, kind string, queries []string, query string) {
	t.Helper()
	for _, q := range queries {
		if q == query {
			return
		}
	}
	t.Errorf("latticetesting: no %s query %q received (got %v)", kind, query, queries)
}
