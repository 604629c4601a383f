package config

import "github.com/gitguardian/ggrelease/internal/bump"

// Config holds everything a release run needs
type Config struct {
	// Version and APIKey only come from the environment (VERSION and
	// GITGUARDIAN_API_KEY), never from the config file.
	Version string `mapstructure:"-"`
	APIKey  string `mapstructure:"-"`

	ReleaseBranch string `mapstructure:"release_branch"` // RELEASE_BRANCH overrides it
	Remote        string `mapstructure:"remote"`         // e.g. "origin"
	CommitMessage string `mapstructure:"commit_message"` // {version} and {tag} are expanded
	CassettesDir  string `mapstructure:"cassettes_dir"`  // recorded HTTP fixtures, relative to the repo root

	// TestSuites are argv lists. The first one runs without cassettes.
	TestSuites    [][]string          `mapstructure:"test_suites"`
	Substitutions []bump.Substitution `mapstructure:"substitutions"`
}

// DefaultTestSuites runs unit tests then functional tests with pytest
func DefaultTestSuites() [][]string {
	return [][]string{
		{"pytest", "tests/unit"},
		{"pytest", "tests/functional"},
	}
}

// DefaultSubstitutions lists the version markers of the ggshield repository
func DefaultSubstitutions() []bump.Substitution {
	subs := []bump.Substitution{
		{
			Path:        "ggshield/__init__.py",
			Pattern:     `^__version__ = .*$`,
			Replacement: `__version__ = "{version}"`,
		},
	}
	for _, action := range []string{"secret", "iac", "sca"} {
		subs = append(subs, bump.Substitution{
			Path:        "actions/" + action + "/action.yml",
			Pattern:     `image: 'docker://gitguardian/ggshield:.*'`,
			Replacement: `image: 'docker://gitguardian/ggshield:{tag}'`,
		})
	}
	return subs
}
