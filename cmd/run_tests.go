package cmd

import (
	"github.com/spf13/cobra"
)

var runTestsCmd = &cobra.Command{
	Use:   "run-tests",
	Short: "Run all tests",
	Long: `Run all tests.

Unit tests are run without cassettes, to make sure the recorded cassettes
still match what the API returns. Cassettes are restored afterwards, even
when tests fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rel.RunTests(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runTestsCmd)
}
