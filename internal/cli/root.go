package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pmguard",
	Short: "Pre-install risk gate for npm, npx, yarn and pnpm",
	Long: "Transparently wraps package-manager invocations, checks the packages about\n" +
		"to be installed or executed against a threat-intelligence service, and blocks\n" +
		"the operation before it reaches the real package manager when policy-violating\n" +
		"risk is found. Clean invocations delegate to the real binary with its exit\n" +
		"code or fatal signal forwarded exactly.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
