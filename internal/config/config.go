package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect
	// import behavior, keep these in sync:
	// - CLI flags in internal/cli/import.go
	// - TOML profile keys in internal/config/profile.go
	Source  Source
	Target  Target
	Limits  Limits
	Output  Output
	Runtime Runtime
}

type Source struct {
	// Endpoint is the OPC UA server endpoint URL (see --endpoint).
	// Example: opc.tcp://deltav-edge:4840
	Endpoint string

	// BaseNode is the node ID where browsing starts (see --base-node).
	// The value is passed to the server verbatim; it is an opaque token.
	BaseNode string

	// SearchNames are the leaf names to import (see --search).
	// Exact, case-sensitive matches. Empty means import every leaf.
	// Values may be provided as repeated flags and/or comma-separated lists.
	SearchNames []string

	// DataType is the data type assigned to created tags (see --data-type).
	DataType string

	// Roots lists additional base-node/root-path pairs, normally loaded
	// from a TOML profile (see --profile). When empty, the single
	// BaseNode/Target.RootPath pair is used.
	Roots []RootSpec
}

// RootSpec pairs a remote base node with the local root path its subtree
// is mirrored under. Each RootSpec is an independent import run.
type RootSpec struct {
	BaseNode string
	RootPath string
}

type Target struct {
	// Provider is the tag provider namespace tags are created in (see --provider).
	Provider string

	// RootPath is the local root folder the mirrored hierarchy is created
	// under (see --root). May be nested, e.g. "DELTAV/BIOREACTOR/BRX001".
	RootPath string

	// StorePath is the SQLite database file backing the tag store (see --store).
	StorePath string

	// DryRun discovers and plans without creating anything (see --dry-run).
	DryRun bool
}

type Limits struct {
	// ChunkSize is the number of entities committed per store call (see --chunk-size).
	ChunkSize int

	// MaxVisits caps how many nodes the traversal expands (see --max-visits).
	// The hard backstop against runaway cost regardless of depth.
	MaxVisits int

	// MaxDepth caps how deep the traversal descends (see --max-depth).
	MaxDepth int

	// RetryAttempts is the fixed browse retry budget (see --retry-attempts).
	RetryAttempts int

	// RetryDelay is the fixed delay between browse attempts (see --retry-delay).
	RetryDelay time.Duration
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// Report writes a Markdown run report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	// Use with --emit/--out/--report for machine-readable output.
	NoConsole bool
}

type Runtime struct {
	// Concurrency controls how many roots are imported in parallel (see --concurrency).
	// Must be >= 1. Distinct roots never share target paths.
	Concurrency int

	// Timeout is the global timeout for the whole invocation (see --timeout).
	// Must be > 0.
	Timeout time.Duration

	// Verbose enables detailed diagnostics (per-attempt browse failures,
	// store statements).
	Verbose bool
}

func New() *Config {
	return &Config{
		Source: Source{
			DataType: "Float8",
		},
		Target: Target{
			Provider:  "default",
			StorePath: "tags.db",
		},
		Limits: Limits{
			ChunkSize:     50,
			MaxVisits:     2000,
			MaxDepth:      50,
			RetryAttempts: 3,
			RetryDelay:    2 * time.Second,
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: 1,
			Timeout:     30 * time.Minute,
		},
	}
}

// Validate normalizes and checks the configuration. Any error returned here
// is fatal: it is surfaced before traversal starts, while no partial work
// has been done.
func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Source.SearchNames = splitCommaList(c.Source.SearchNames)

	for _, name := range c.Source.SearchNames {
		if strings.TrimSpace(name) == "" {
			return errors.New("--search values must not be blank")
		}
	}

	if c.Source.Endpoint == "" {
		return errors.New("--endpoint is required")
	}

	if len(c.Source.Roots) == 0 {
		if c.Source.BaseNode == "" {
			return errors.New("--base-node is required (or supply roots via --profile)")
		}
		if c.Target.RootPath == "" {
			return errors.New("--root is required (or supply roots via --profile)")
		}
	}

	for i := range c.Source.Roots {
		r := &c.Source.Roots[i]
		r.RootPath = normalizePath(r.RootPath)
		if r.BaseNode == "" {
			return fmt.Errorf("profile root %d: base_node is required", i+1)
		}
		if r.RootPath == "" {
			return fmt.Errorf("profile root %d: root_path is required", i+1)
		}
		if err := checkPath(r.RootPath); err != nil {
			return fmt.Errorf("profile root %d: %w", i+1, err)
		}
	}

	c.Target.RootPath = normalizePath(c.Target.RootPath)
	if c.Target.RootPath != "" {
		if err := checkPath(c.Target.RootPath); err != nil {
			return fmt.Errorf("invalid --root value: %w", err)
		}
	}
	if c.Target.Provider == "" {
		return errors.New("--provider must not be empty")
	}
	if strings.ContainsAny(c.Target.Provider, "[]/") {
		return fmt.Errorf("invalid --provider value %q: must be a bare provider name", c.Target.Provider)
	}

	// Limits validation
	if c.Limits.ChunkSize < 1 {
		return fmt.Errorf("--chunk-size must be >= 1, got %d", c.Limits.ChunkSize)
	}
	if c.Limits.MaxVisits < 1 {
		return fmt.Errorf("--max-visits must be >= 1, got %d", c.Limits.MaxVisits)
	}
	if c.Limits.MaxDepth < 1 {
		return fmt.Errorf("--max-depth must be >= 1, got %d", c.Limits.MaxDepth)
	}
	if c.Limits.RetryAttempts < 1 {
		return fmt.Errorf("--retry-attempts must be >= 1, got %d", c.Limits.RetryAttempts)
	}
	if c.Limits.RetryDelay < 0 {
		return fmt.Errorf("--retry-delay must be >= 0, got %s", c.Limits.RetryDelay)
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for _, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
	}

	if c.Output.OutFormat != "" {
		v := normalizeEnumValue(c.Output.OutFormat)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --out-format: %s (must be one of: json, ndjson)", c.Output.OutFormat)
		}
		c.Output.OutFormat = v
	}
	if c.Output.OutFormat != "" && c.Output.Out == "" {
		return errors.New("--out-format requires --out")
	}

	// Runtime validation
	if c.Runtime.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be >= 1, got %d", c.Runtime.Concurrency)
	}
	if c.Runtime.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0, got %s", c.Runtime.Timeout)
	}

	return nil
}

// Roots returns the effective list of import runs: profile roots when
// present, otherwise the single base-node/root pair from flags.
func (c *Config) Roots() []RootSpec {
	if len(c.Source.Roots) > 0 {
		return c.Source.Roots
	}
	return []RootSpec{{BaseNode: c.Source.BaseNode, RootPath: c.Target.RootPath}}
}

// splitCommaList expands entries like "CV,PV" into separate values while
// preserving order and trimming whitespace.
func splitCommaList(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !strings.Contains(v, ",") {
			out = append(out, strings.TrimSpace(v))
			continue
		}
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func normalizeEnumValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// normalizePath trims surrounding whitespace and slashes so "BRX001/" and
// "/BRX001" both mean "BRX001".
func normalizePath(p string) string {
	return strings.Trim(strings.TrimSpace(p), "/")
}

func checkPath(p string) error {
	for _, seg := range strings.Split(p, "/") {
		if strings.TrimSpace(seg) == "" {
			return fmt.Errorf("path %q contains an empty segment", p)
		}
		if strings.ContainsAny(seg, "[]") {
			return fmt.Errorf("path segment %q contains reserved characters", seg)
		}
	}
	return nil
}
