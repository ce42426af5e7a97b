package lattice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:8888"})
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.transport.httpClient != http.DefaultClient {
		t.Error("expected default HTTP client")
	}
}

func TestNewClientWithOptions(t *testing.T) {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	client := NewClient(Config{BaseURL: "http://localhost:8888"},
		WithHTTPClient(httpClient),
		WithAuthToken("test-token"),
		WithHeader("X-Custom", "value"),
	)
	if client.transport.httpClient != httpClient {
		t.Error("expected custom HTTP client")
	}
	if client.transport.authToken != "test-token" {
		t.Error("expected auth token to be set")
	}
}

func TestNewClientTimeout(t *testing.T) {
	client := NewClient(Config{Timeout: 5 * time.Second})
	if client.transport.httpClient == http.DefaultClient {
		t.Fatal("expected a dedicated HTTP client when Timeout is set")
	}
	if client.transport.httpClient.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %s", client.transport.httpClient.Timeout)
	}
}

func TestFindLatticeNames(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("expected form content type, got %s", ct)
		}
		if q := r.FormValue("query"); q != "LS1" {
			t.Errorf("expected query=LS1, got %q", q)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]string{"LS1-A", "LS1-B"})
	}))
	defer server.Close()

	client := NewClient(Config{NamesURL: server.URL})
	names, err := client.FindLatticeNames(context.Background(), "LS1")
	if err != nil {
		t.Fatalf("FindLatticeNames() error = %v", err)
	}
	if len(names) != 2 || names[0] != "LS1-A" || names[1] != "LS1-B" {
		t.Errorf("expected [LS1-A LS1-B], got %v", names)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("expected exactly 1 request, got %d", n)
	}
}

func TestFindLatticeNamesEmptyQuery(t *testing.T) {
	// An empty query is forwarded verbatim, not rejected.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if vals, ok := r.PostForm["query"]; !ok || len(vals) != 1 || vals[0] != "" {
			t.Errorf("expected query parameter present and empty, got %v", r.PostForm)
		}
		json.NewEncoder(w).Encode([]string{})
	}))
	defer server.Close()

	client := NewClient(Config{NamesURL: server.URL})
	names, err := client.FindLatticeNames(context.Background(), "")
	if err != nil {
		t.Fatalf("FindLatticeNames(\"\") error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected no names, got %v", names)
	}
}

func TestFindLatticeNamesNotConfigured(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.FindLatticeNames(context.Background(), "LS1")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	var lerr *Error
	if !errors.As(err, &lerr) {
		t.Fatal("expected *Error")
	}
	if lerr.ConfigKey != ConfigKeyNamesURL {
		t.Errorf("expected config key %s, got %s", ConfigKeyNamesURL, lerr.ConfigKey)
	}
}

func TestFindLatticeBranches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/branches" {
			t.Errorf("expected /api/branches, got %s", r.URL.Path)
		}
		if q := r.FormValue("query"); q != "main" {
			t.Errorf("expected query=main, got %q", q)
		}
		json.NewEncoder(w).Encode([]string{"main", "main-2"})
	}))
	defer server.Close()

	client := NewClient(Config{BranchesURL: server.URL + "/api/branches"})
	branches, err := client.FindLatticeBranches(context.Background(), "main")
	if err != nil {
		t.Fatalf("FindLatticeBranches() error = %v", err)
	}
	if len(branches) != 2 || branches[0] != "main" || branches[1] != "main-2" {
		t.Errorf("expected [main main-2], got %v", branches)
	}
}

func TestFindLatticeBranchesNotConfigured(t *testing.T) {
	client := NewClient(Config{NamesURL: "http://localhost:8888/names"})
	_, err := client.FindLatticeBranches(context.Background(), "main")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if ErrorCode(err) != ErrCodeNotConfigured {
		t.Errorf("expected code %s, got %s", ErrCodeNotConfigured, ErrorCode(err))
	}
}

func TestQueryURLsDefaultFromBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lattice/web/lattice/names":
			json.NewEncoder(w).Encode([]string{"LS1"})
		case "/lattice/web/lattice/branches":
			json.NewEncoder(w).Encode([]string{"main"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	names, err := client.FindLatticeNames(context.Background(), "LS")
	if err != nil {
		t.Fatalf("FindLatticeNames() error = %v", err)
	}
	if len(names) != 1 || names[0] != "LS1" {
		t.Errorf("expected [LS1], got %v", names)
	}

	branches, err := client.FindLatticeBranches(context.Background(), "LS")
	if err != nil {
		t.Fatalf("FindLatticeBranches() error = %v", err)
	}
	if len(branches) != 1 || branches[0] != "main" {
		t.Errorf("expected [main], got %v", branches)
	}
}

func TestFindLatticeNamesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"error": 500})
	}))
	defer server.Close()

	client := NewClient(Config{NamesURL: server.URL})
	_, err := client.FindLatticeNames(context.Background(), "LS1")
	if !errors.Is(err, ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}

	var lerr *Error
	if !errors.As(err, &lerr) {
		t.Fatal("expected *Error")
	}
	if lerr.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", lerr.HTTPStatus)
	}
}

func TestFindLatticeNamesContextCancelled(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{NamesURL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.FindLatticeNames(ctx, "LS1")
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSearchLattices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lattice/rest/v1/lattices" {
			t.Errorf("expected /lattice/rest/v1/lattices, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("name") != "LS1*" {
			t.Errorf("expected name=LS1*, got %q", q.Get("name"))
		}
		if q.Get("particle_type") != "kr86" {
			t.Errorf("expected particle_type=kr86, got %q", q.Get("particle_type"))
		}

		json.NewEncoder(w).Encode([]map[string]any{{
			"id":            "55e7542bfad7b66cf2598b4a",
			"links":         map[string]string{"self": "/lattice/rest/v1/lattices/55e7542bfad7b66cf2598b4a"},
			"name":          "LS1-FS1",
			"description":   "linac segment 1",
			"status_type":   "development",
			"lattice_type":  "impactz",
			"particle_type": "kr86",
			"created_by":    "physuser",
			"created_date":  "2015-09-02T15:55:23.852000",
			"properties": []map[string]any{
				{"name": "RefParticleMass", "value": 931494320.0},
			},
			"files": []map[string]any{
				{"links": map[string]string{"enclosure": "/lattice/rest/v1/lattices/55e7542bfad7b66cf2598b4a/files/1/download"}, "name": "LatticeFile", "filename": "test.in"},
			},
		}})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	lattices, err := client.SearchLattices(context.Background(),
		WithLatticeName("LS1*"),
		WithParticleType("kr86"),
	)
	if err != nil {
		t.Fatalf("SearchLattices() error = %v", err)
	}
	if len(lattices) != 1 {
		t.Fatalf("expected 1 lattice, got %d", len(lattices))
	}
	lat := lattices[0]
	if lat.ID != "55e7542bfad7b66cf2598b4a" {
		t.Errorf("unexpected ID %s", lat.ID)
	}
	if lat.Name != "LS1-FS1" || lat.LatticeType != "impactz" {
		t.Errorf("unexpected lattice %+v", lat)
	}
	if len(lat.Properties) != 1 || lat.Properties[0].Name != "RefParticleMass" {
		t.Errorf("unexpected properties %+v", lat.Properties)
	}
	if len(lat.Files) != 1 || lat.Files[0].Filename != "test.in" {
		t.Errorf("unexpected files %+v", lat.Files)
	}
}

func TestSearchLatticesRequiresBaseURL(t *testing.T) {
	client := NewClient(Config{NamesURL: "http://localhost:8888/names"})
	_, err := client.SearchLattices(context.Background())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGetLattice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lattice/rest/v1/lattices/55e7542bfad7b66cf2598b4a" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "55e7542bfad7b66cf2598b4a",
			"name": "LS1-FS1",
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	lat, err := client.GetLattice(context.Background(), "55e7542bfad7b66cf2598b4a")
	if err != nil {
		t.Fatalf("GetLattice() error = %v", err)
	}
	if lat.Name != "LS1-FS1" {
		t.Errorf("expected LS1-FS1, got %s", lat.Name)
	}
}

func TestGetLatticeNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"error": 404})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.GetLattice(context.Background(), "ffffffffffffffffffffffff")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListLatticeElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lattice/rest/v1/lattices/abc123abc123abc123abc123/elements" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "e1", "type": "DRIFT", "lattice_id": "abc123abc123abc123abc123", "order": 1, "name": "DR01", "length": 0.5, "position": 0.5},
			{"id": "e2", "type": "QUAD", "lattice_id": "abc123abc123abc123abc123", "order": 2, "name": "QD01", "length": 0.25, "position": 0.75},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	elements, err := client.ListLatticeElements(context.Background(), "abc123abc123abc123abc123")
	if err != nil {
		t.Fatalf("ListLatticeElements() error = %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	if elements[0].Type != "DRIFT" || elements[0].Order != 1 {
		t.Errorf("unexpected element %+v", elements[0])
	}
	if elements[1].Position != 0.75 {
		t.Errorf("expected position 0.75, got %f", elements[1].Position)
	}
}

func TestGetLatticeElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lattice/rest/v1/lattices/elements/e1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "e1", "type": "QUAD", "name": "QD01",
			"properties": []map[string]any{{"name": "B2", "value": 1.25, "unit": "T/m"}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	elem, err := client.GetLatticeElement(context.Background(), "e1")
	if err != nil {
		t.Fatalf("GetLatticeElement() error = %v", err)
	}
	if elem.Type != "QUAD" {
		t.Errorf("expected QUAD, got %s", elem.Type)
	}
	if len(elem.Properties) != 1 || elem.Properties[0].Unit != "T/m" {
		t.Errorf("unexpected properties %+v", elem.Properties)
	}
}

func TestFindParticleTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lattice/rest/v1/particletypes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]string{
			{"type": "kr86", "name": "Krypton-86"},
			{"type": "u238", "name": "Uranium-238"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	types, err := client.FindParticleTypes(context.Background())
	if err != nil {
		t.Fatalf("FindParticleTypes() error = %v", err)
	}
	if len(types) != 2 || types[0].Type != "kr86" {
		t.Errorf("unexpected particle types %+v", types)
	}
}

func TestAuthTokenHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("expected Bearer secret, got %q", auth)
		}
		json.NewEncoder(w).Encode([]string{})
	}))
	defer server.Close()

	client := NewClient(Config{NamesURL: server.URL, AuthToken: "secret"})
	if _, err := client.FindLatticeNames(context.Background(), "x"); err != nil {
		t.Fatalf("FindLatticeNames() error = %v", err)
	}
}
