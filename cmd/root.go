package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gitguardian/ggrelease/internal/config"
	"github.com/gitguardian/ggrelease/internal/ghcli"
	"github.com/gitguardian/ggrelease/internal/gitrepo"
	"github.com/gitguardian/ggrelease/internal/logger"
	"github.com/gitguardian/ggrelease/internal/release"
	"github.com/gitguardian/ggrelease/internal/runner"
)

var (
	allowDirty bool
	configFile string
	verbose    bool

	// rel is set up by PersistentPreRunE for every subcommand
	rel *release.Releaser

	// newExecutor is replaced in tests
	newExecutor = func() runner.Executor { return runner.NewExecExecutor() }
)

var rootCmd = &cobra.Command{
	Use:   "release",
	Short: "Release tooling: run tests, tag, push and publish a version",
	Long: `release cuts a release from the release branch.

Required environment variables:
  VERSION               version to release, e.g. 1.34.0
  GITGUARDIAN_API_KEY   API key used by the test suites

Optional:
  RELEASE_BRANCH        branch releases are cut from (default: main)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE validates the environment and the repository state
	// before ANY subcommand gets a chance to modify something.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(cmd.ErrOrStderr(), verbose)
		if cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		exec := newExecutor()
		repo, err := gitrepo.Open(wd, exec)
		if err != nil {
			return err
		}

		r, err := release.New(cfg, repo, ghcli.NewClient(exec, repo.Root()), exec, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := r.Preflight(cmd.Context(), allowDirty); err != nil {
			return err
		}
		logger.Log.Debug("preflight ok", "version", r.Version().String(), "branch", cfg.ReleaseBranch)

		rel = r
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() == "help" {
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("%s: done", cmd.Name()))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().BoolVar(&allowDirty, "allow-dirty", false, "Don't abort if the working tree contains uncommitted changes")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "release.yaml", "Optional config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every command that is run")
}
