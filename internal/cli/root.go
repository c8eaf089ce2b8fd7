package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags. debug, verbose and quiet are parsed but no command reads
	// them; they do not change logging or console output.
	configFile string
	debug      bool
	verbose    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deedd",
	Short: "deedd - tokenized real-estate settlement engine",
	Long: `deedd settles tokenized real-estate primary issuance and secondary
trading: property listings, investor subscriptions, the lawyer-approval
two-phase commit, and the relisting/offer market, over JSON-RPC, a
websocket event feed, and gRPC.`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

// initConfig is a cobra.OnInitialize hook; actual config loading happens in
// runServer via internal/config.Load, since it needs the parsed --conf flag.
func initConfig() {}