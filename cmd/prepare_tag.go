package cmd

import (
	"github.com/spf13/cobra"
)

var prepareTagCmd = &cobra.Command{
	Use:   "prepare-tag",
	Short: "Bump the version, commit it and create the release tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rel.PrepareTag(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(prepareTagCmd)
}
