// Package bump rewrites the version markers spread across the repository.
//
// Every marker is described by a regular expression that must match exactly
// once in its file. A pattern matching zero or several times means the file
// layout changed and the release must stop rather than guess.
package bump

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/gitguardian/ggrelease/internal/logger"
	"github.com/gitguardian/ggrelease/internal/version"
)

// ErrNotMatchedOnce is wrapped by MatchError
var ErrNotMatchedOnce = errors.New("pattern must match exactly once")

// Substitution describes one version marker.
type Substitution struct {
	Path        string `mapstructure:"path"`
	Pattern     string `mapstructure:"pattern"`
	Replacement string `mapstructure:"replacement"`
}

// MatchError reports a pattern that did not match exactly once.
type MatchError struct {
	Path    string
	Pattern string
	Count   int
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%s: expected exactly one match for %q, found %d", e.Path, e.Pattern, e.Count)
}

func (e *MatchError) Unwrap() error {
	return ErrNotMatchedOnce
}

// Compile compiles pattern in multi-line mode, so ^ and $ anchor on lines.
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?m)" + pattern)
}

// Expand fills the {version} and {tag} placeholders of a replacement.
func Expand(replacement string, v version.Version) string {
	return strings.NewReplacer("{version}", v.String(), "{tag}", v.Tag()).Replace(replacement)
}

// ReplaceOnce replaces the single match of pattern in the file at path with
// replacement, taken literally. The file is left untouched unless the
// pattern matches exactly once.
func ReplaceOnce(path, pattern, replacement string) error {
	re, err := Compile(pattern)
	if err != nil {
		return fmt.Errorf("%s: invalid pattern %q: %w", path, pattern, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	matches := re.FindAllIndex(content, -1)
	if len(matches) != 1 {
		return &MatchError{Path: path, Pattern: pattern, Count: len(matches)}
	}

	start, end := matches[0][0], matches[0][1]
	updated := make([]byte, 0, len(content)-(end-start)+len(replacement))
	updated = append(updated, content[:start]...)
	updated = append(updated, replacement...)
	updated = append(updated, content[end:]...)

	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Log.Debug("version marker updated", "path", path)
	return nil
}

// Apply runs the substitutions in order for version v and stops at the
// first failure. Files processed before the failure keep their new content.
func Apply(subs []Substitution, v version.Version) error {
	for _, s := range subs {
		if err := ReplaceOnce(s.Path, s.Pattern, Expand(s.Replacement, v)); err != nil {
			return err
		}
	}
	return nil
}
