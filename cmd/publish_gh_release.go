package cmd

import (
	"github.com/spf13/cobra"
)

var publishGHReleaseCmd = &cobra.Command{
	Use:   "publish-gh-release NOTES_FILE",
	Short: "Set the GitHub release notes and publish the release",
	Long: `Set the notes of the GitHub release for the tag from NOTES_FILE and
take the release out of draft. The release itself is created by CI when the
tag is pushed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rel.PublishGHRelease(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(publishGHReleaseCmd)
}
