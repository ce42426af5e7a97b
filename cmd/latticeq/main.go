// Command latticeq queries a lattice model service from the command
// line: lattice names, branches, lattice search, elements, and
// particle types.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	lattice "github.com/latticemodel/lattice-go-sdk"
)

var (
	// Global flags
	configPath  string
	baseURL     string
	namesURL    string
	branchesURL string
	timeout     time.Duration
	verbose     bool

	// Search flags
	searchName         string
	searchBranch       string
	searchLatticeType  string
	searchParticleType string

	logger *zap.Logger
	client *lattice.Client
)

var rootCmd = &cobra.Command{
	Use:   "latticeq",
	Short: "Query a lattice model service",
	Long: `latticeq looks up accelerator lattice data from a lattice model
service: lattice names and branches by free-text query, plus the
service's REST API for lattices, elements, and particle types.

Endpoints come from flags, a YAML config file, or the environment
(LATTICE_BASE_URL, LATTICE_NAMES_URL, LATTICE_BRANCHES_URL).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client = lattice.NewClient(cfg, lattice.WithLogger(logger))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadConfig resolves configuration with flags taking precedence over
// the config file, which takes precedence over the environment.
func loadConfig() (lattice.Config, error) {
	cfg, err := lattice.Load()
	if err != nil {
		return lattice.Config{}, err
	}
	if configPath != "" {
		cfg, err = lattice.LoadFile(configPath)
		if err != nil {
			return lattice.Config{}, err
		}
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if namesURL != "" {
		cfg.NamesURL = namesURL
	}
	if branchesURL != "" {
		cfg.BranchesURL = branchesURL
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return cfg, nil
}

var namesCmd = &cobra.Command{
	Use:   "names [query]",
	Short: "Find lattice names matching a query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		logger.Debug("querying lattice names", zap.String("query", query))
		names, err := client.FindLatticeNames(cmd.Context(), query)
		if err != nil {
			return err
		}
		return printJSON(names)
	},
}

var branchesCmd = &cobra.Command{
	Use:   "branches [query]",
	Short: "Find lattice branches matching a query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		logger.Debug("querying lattice branches", zap.String("query", query))
		branches, err := client.FindLatticeBranches(cmd.Context(), query)
		if err != nil {
			return err
		}
		return printJSON(branches)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search lattices by name, branch, and type",
	Long: `Searches the lattice REST API. The --name filter supports the
wildcards * (any run of characters) and ? (any single character).

Example:
  latticeq search --name "LS1*" --particle-type kr86`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []lattice.SearchOption
		if searchName != "" {
			opts = append(opts, lattice.WithLatticeName(searchName))
		}
		if searchBranch != "" {
			opts = append(opts, lattice.WithBranch(searchBranch))
		}
		if searchLatticeType != "" {
			opts = append(opts, lattice.WithLatticeType(searchLatticeType))
		}
		if searchParticleType != "" {
			opts = append(opts, lattice.WithParticleType(searchParticleType))
		}
		lattices, err := client.SearchLattices(cmd.Context(), opts...)
		if err != nil {
			return err
		}
		return printJSON(lattices)
	},
}

var elementsCmd = &cobra.Command{
	Use:   "elements [lattice-id]",
	Short: "List the elements of a lattice in beam-line order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		elements, err := client.ListLatticeElements(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(elements)
	},
}

var particleTypesCmd = &cobra.Command{
	Use:   "particle-types",
	Short: "List the particle species known to the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := client.FindParticleTypes(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(types)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "base URL of the lattice model service")
	rootCmd.PersistentFlags().StringVar(&namesURL, "names-url", "", "endpoint for name queries")
	rootCmd.PersistentFlags().StringVar(&branchesURL, "branches-url", "", "endpoint for branch queries")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (e.g. 10s)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	searchCmd.Flags().StringVar(&searchName, "name", "", "filter by lattice name (wildcards * and ?)")
	searchCmd.Flags().StringVar(&searchBranch, "branch", "", "filter by branch")
	searchCmd.Flags().StringVar(&searchLatticeType, "lattice-type", "", "filter by lattice type")
	searchCmd.Flags().StringVar(&searchParticleType, "particle-type", "", "filter by particle type")

	rootCmd.AddCommand(namesCmd, branchesCmd, searchCmd, elementsCmd, particleTypesCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
