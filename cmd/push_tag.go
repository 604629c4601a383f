package cmd

import (
	"github.com/spf13/cobra"
)

var pushTagCmd = &cobra.Command{
	Use:   "push-tag",
	Short: "Push the release commit and tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rel.PushTag(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(pushTagCmd)
}
