package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	"github.com/gitguardian/ggrelease/internal/bump"
	"github.com/gitguardian/ggrelease/internal/version"
)

// ErrInvalidConfig is wrapped by every validation error
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	EnvVersion       = "VERSION"
	EnvAPIKey        = "GITGUARDIAN_API_KEY"
	EnvReleaseBranch = "RELEASE_BRANCH"
)

// Load reads the configuration from the given filename (e.g., "release.yaml")
// and the environment. A missing file is not an error: defaults apply.
func Load(filename string) (*Config, error) {
	v := viper.New()

	v.SetDefault("release_branch", "main")
	v.SetDefault("remote", "origin")
	v.SetDefault("commit_message", "chore(release): {version}")
	v.SetDefault("cassettes_dir", "tests/unit/cassettes")

	if err := v.BindEnv("release_branch", EnvReleaseBranch); err != nil {
		return nil, err
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file %s: %w", filename, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if len(cfg.TestSuites) == 0 {
		cfg.TestSuites = DefaultTestSuites()
	}
	if len(cfg.Substitutions) == 0 {
		cfg.Substitutions = DefaultSubstitutions()
	}

	cfg.Version = os.Getenv(EnvVersion)
	cfg.APIKey = os.Getenv(EnvAPIKey)

	return &cfg, nil
}

// Validate checks the configuration before anything touches the repository.
func (c *Config) Validate() error {
	if _, err := version.Parse(c.Version); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%w: %s is not set", ErrInvalidConfig, EnvAPIKey)
	}
	if c.ReleaseBranch == "" {
		return fmt.Errorf("%w: release branch is empty", ErrInvalidConfig)
	}
	if c.Remote == "" {
		return fmt.Errorf("%w: remote is empty", ErrInvalidConfig)
	}
	for i, suite := range c.TestSuites {
		if len(suite) == 0 || suite[0] == "" {
			return fmt.Errorf("%w: test suite #%d has no command", ErrInvalidConfig, i+1)
		}
	}
	for i, s := range c.Substitutions {
		if s.Path == "" || s.Pattern == "" {
			return fmt.Errorf("%w: substitution #%d needs a path and a pattern", ErrInvalidConfig, i+1)
		}
		if _, err := bump.Compile(s.Pattern); err != nil {
			return fmt.Errorf("%w: substitution #%d (%s): %w", ErrInvalidConfig, i+1, s.Path, err)
		}
	}
	return nil
}

// ReleaseVersion returns the validated version. Call Validate first.
func (c *Config) ReleaseVersion() version.Version {
	return version.Version(c.Version)
}
