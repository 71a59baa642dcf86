package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// engine. Keeping these as constants helps avoid drift between Cobra flag
// wiring and other code paths that need to reference flags (e.g. error
// messages that tell the user which flag to fix).
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Source.Endpoint, flags.FlagEndpoint, "", "...")
//	arg := "--" + flags.FlagEndpoint
const (
	// Source
	FlagEndpoint = "endpoint"
	FlagBaseNode = "base-node"
	FlagSearch   = "search"
	FlagDataType = "data-type"
	FlagProfile  = "profile"

	// Target
	FlagProvider = "provider"
	FlagRoot     = "root"
	FlagStore    = "store"
	FlagDryRun   = "dry-run"

	// Limits
	FlagChunkSize     = "chunk-size"
	FlagMaxVisits     = "max-visits"
	FlagMaxDepth      = "max-depth"
	FlagRetryAttempts = "retry-attempts"
	FlagRetryDelay    = "retry-delay"

	// Output
	FlagConsoleFormat = "console-format"
	FlagReport        = "report"
	FlagOut           = "out"
	FlagOutFormat     = "out-format"
	FlagEmit          = "emit"
	FlagNoConsole     = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
)
