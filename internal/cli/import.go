package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"opcmirror/internal/config"
	"opcmirror/internal/engine"
	"opcmirror/internal/flags"
	"opcmirror/internal/opc"
	"opcmirror/internal/output"
	"opcmirror/internal/tagstore"
)

var cfg = config.New()

var profilePath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a namespace subtree into the local tag store",
	Long: `Import browses the OPC UA address space under --base-node and recreates
the matching subtree as folders and tags under --root.

The traversal is breadth-first and bounded by --max-visits and --max-depth.
Leaf names are matched exactly and case-sensitively against --search; with
no --search, every variable node is imported. Entities that already exist
are skipped, never modified.

Profiles:
	Recurring imports can be described in a TOML profile (see --profile),
	including multiple base-node/root pairs. Explicit flags override profile
	values.

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --no-console: suppress the console sink (use with --emit/--out for machine output)

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, traversal.progress, traversal.retry,
	traversal.truncated, plan.built, commit.batch, item.result, run.finished).

Exit codes:
	0 = clean run, everything imported
	1 = some entities failed to import
	2 = traversal truncated (visit limit or cancellation); results incomplete
	3 = fatal error (import did not run)

Examples:
  # Import CV parameters of one module
  opcmirror import --endpoint opc.tcp://deltav-edge:4840 \
    --base-node "ns=2;s=0:/BRX001" --root BRX001 --search CV

  # Preview a profile-driven import
  opcmirror import --profile bioreactors.toml --dry-run

	# AI Agent: stream machine-readable events to stdout
	opcmirror import --profile bioreactors.toml --no-console --emit ndjson
`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}

		if profilePath != "" {
			if err := loadProfile(cmd, cfg, profilePath); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(3)
			}
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		os.Exit(runImport(cfg))
	},
}

// loadProfile folds profile values into cfg without clobbering flags the
// user set explicitly. Flags bind straight into cfg, so the pre-profile
// values are captured first and restored for every changed flag.
func loadProfile(cmd *cobra.Command, cfg *config.Config, path string) error {
	fromFlags := *cfg
	if err := config.LoadProfile(path, cfg); err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed(flags.FlagEndpoint) {
		cfg.Source.Endpoint = fromFlags.Source.Endpoint
	}
	if f.Changed(flags.FlagSearch) {
		cfg.Source.SearchNames = fromFlags.Source.SearchNames
	}
	if f.Changed(flags.FlagDataType) {
		cfg.Source.DataType = fromFlags.Source.DataType
	}
	if f.Changed(flags.FlagProvider) {
		cfg.Target.Provider = fromFlags.Target.Provider
	}
	if f.Changed(flags.FlagStore) {
		cfg.Target.StorePath = fromFlags.Target.StorePath
	}
	if f.Changed(flags.FlagChunkSize) {
		cfg.Limits.ChunkSize = fromFlags.Limits.ChunkSize
	}
	if f.Changed(flags.FlagMaxVisits) {
		cfg.Limits.MaxVisits = fromFlags.Limits.MaxVisits
	}
	if f.Changed(flags.FlagMaxDepth) {
		cfg.Limits.MaxDepth = fromFlags.Limits.MaxDepth
	}
	return nil
}

// runImport wires collaborators, runs every configured root, and maps the
// outcome to the exit-code contract.
func runImport(cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Runtime.Timeout)
	defer cancel()

	out, err := buildSinks(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}

	client, err := opc.Dial(ctx, cfg.Source.Endpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to connect to OPC UA server: %v\n", err)
		_ = out.Close()
		return 3
	}
	defer func() { _ = client.Close(ctx) }()

	store, err := tagstore.OpenSQLite(cfg.Target.StorePath, cfg.Target.Provider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open tag store: %v\n", err)
		_ = out.Close()
		return 3
	}
	defer func() { _ = store.Close() }()

	eng := engine.New(client, store, out)
	results, runErr := eng.RunAll(ctx, cfg)

	if err := out.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 3
	}

	return exitCodeForResults(results)
}

// exitCodeForResults aggregates per-root outcomes. Truncation outranks item
// failures: an incomplete traversal means missing entities the counts do
// not account for.
func exitCodeForResults(results []*engine.RunResult) int {
	code := 0
	for _, res := range results {
		if res == nil {
			return 3
		}
		if res.Truncated && code < 2 {
			code = 2
		}
		if len(res.Errors) > 0 && code < 1 {
			code = 1
		}
	}
	return code
}

func buildSinks(cfg *config.Config) (*output.Manager, error) {
	out := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := out.AddSink(output.NewConsoleSink(os.Stdout, cfg.Output.ConsoleFormat)); err != nil {
			return nil, err
		}
	}

	for _, format := range cfg.Output.Emit {
		sink, err := output.NewEmitSink(os.Stdout, format)
		if err != nil {
			return nil, err
		}
		if err := out.AddSink(sink); err != nil {
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		sink, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			return nil, err
		}
		if err := out.AddSink(sink); err != nil {
			return nil, err
		}
	}

	if cfg.Output.Report != "" {
		sink, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			return nil, err
		}
		if err := out.AddSink(sink); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func init() {
	rootCmd.AddCommand(importCmd)

	// Source
	importCmd.Flags().StringVar(&cfg.Source.Endpoint, flags.FlagEndpoint, "", "OPC UA server endpoint URL, e.g. opc.tcp://deltav-edge:4840")
	importCmd.Flags().StringVar(&cfg.Source.BaseNode, flags.FlagBaseNode, "", "Node ID to start browsing from (passed to the server verbatim)")
	importCmd.Flags().StringSliceVar(&cfg.Source.SearchNames, flags.FlagSearch, nil, "Leaf name(s) to import, exact and case-sensitive (repeatable; comma-separated accepted; empty = all leaves)")
	importCmd.Flags().StringVar(&cfg.Source.DataType, flags.FlagDataType, cfg.Source.DataType, "Data type assigned to created tags (default: Float8)")
	importCmd.Flags().StringVar(&profilePath, flags.FlagProfile, "", "TOML profile describing the import, including multiple roots")

	// Target
	importCmd.Flags().StringVar(&cfg.Target.Provider, flags.FlagProvider, cfg.Target.Provider, "Tag provider namespace to create entities in (default: default)")
	importCmd.Flags().StringVar(&cfg.Target.RootPath, flags.FlagRoot, "", "Local root folder the mirrored hierarchy is created under (may be nested)")
	importCmd.Flags().StringVar(&cfg.Target.StorePath, flags.FlagStore, cfg.Target.StorePath, "SQLite database file backing the tag store (default: tags.db)")
	importCmd.Flags().BoolVar(&cfg.Target.DryRun, flags.FlagDryRun, false, "Discover and plan without creating anything")

	// Limits
	importCmd.Flags().IntVar(&cfg.Limits.ChunkSize, flags.FlagChunkSize, cfg.Limits.ChunkSize, "Entities committed per store call (default: 50)")
	importCmd.Flags().IntVar(&cfg.Limits.MaxVisits, flags.FlagMaxVisits, cfg.Limits.MaxVisits, "Maximum nodes the traversal expands (default: 2000)")
	importCmd.Flags().IntVar(&cfg.Limits.MaxDepth, flags.FlagMaxDepth, cfg.Limits.MaxDepth, "Maximum traversal depth below the base node (default: 50)")
	importCmd.Flags().IntVar(&cfg.Limits.RetryAttempts, flags.FlagRetryAttempts, cfg.Limits.RetryAttempts, "Browse attempts per node before giving up (default: 3)")
	importCmd.Flags().DurationVar(&cfg.Limits.RetryDelay, flags.FlagRetryDelay, cfg.Limits.RetryDelay, "Fixed delay between browse attempts (default: 2s)")

	// Output
	importCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, cfg.Output.ConsoleFormat, "Console output format: text|json|ndjson (default: text)")
	importCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	importCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	importCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	importCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	importCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")

	// Runtime
	importCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Roots imported in parallel (default: 1)")
	importCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout (default: 30m)")
}
