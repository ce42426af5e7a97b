// Package lattice provides a Go client for a lattice model service:
// remote lookup of accelerator lattice names and branches by free-text
// query, plus the service's REST API for lattices, elements, and
// particle types.
//
// The client has two API surfaces:
//
//   - Synchronous, context-aware methods that return a result or an
//     explicit error ([Client.FindLatticeNames], [Client.SearchLattices]).
//   - A fire-and-forget callback layer compatible with the original
//     web-client behavior ([Client.FindLatticeNamesAsync]).
//
// # Quick Start
//
// Look up lattice names:
//
//	client := lattice.NewClient(lattice.Config{
//	    NamesURL:    "https://lattice.example.org/lattice/web/lattice/names",
//	    BranchesURL: "https://lattice.example.org/lattice/web/lattice/branches",
//	})
//	names, err := client.FindLatticeNames(ctx, "LS1")
//
// Or configure from the environment (LATTICE_NAMES_URL, LATTICE_BASE_URL, ...):
//
//	cfg, err := lattice.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := lattice.NewClient(cfg)
//
// A query endpoint that is not configured yields [ErrNotConfigured]
// rather than a failed request, so callers can distinguish "no server
// configured" from a transport failure.
package lattice
