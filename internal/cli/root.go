package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "opcmirror",
	Short: "Mirror OPC UA namespace subtrees into a local tag hierarchy",
	Long: `OpcMirror browses an OPC UA server's address space and recreates matching
subtrees as folders and tags in a local tag store.

OpcMirror is create-only: it adds folders and tags that are missing and
never modifies or deletes existing entities.

Examples:
	# Show available commands and global flags
	opcmirror --help

	# Import every CV parameter under a module
	opcmirror import --endpoint opc.tcp://deltav-edge:4840 \
		--base-node "ns=2;s=0:/BRX001" --root BRX001 --search CV

	# Preview without creating anything
	opcmirror import --profile bioreactors.toml --dry-run

	# Print build info
	opcmirror version

Output:
	By default, commands write human-readable output to stdout.
	Some commands support structured output via emitter flags (see each command's --help).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfg.Runtime.Verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints every browse attempt and store statement)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
