package version

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidVersion is returned when a version string is not of the form X.Y.Z
var ErrInvalidVersion = errors.New("invalid version")

var versionRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Version is a release version made of three dot-separated integers (e.g. "1.34.0")
type Version string

// Parse validates s and returns it as a Version.
func Parse(s string) (Version, error) {
	if s == "" {
		return "", fmt.Errorf("%w: VERSION is not set", ErrInvalidVersion)
	}
	if !versionRe.MatchString(s) {
		return "", fmt.Errorf("%w: %q does not match X.Y.Z", ErrInvalidVersion, s)
	}
	return Version(s), nil
}

func (v Version) String() string {
	return string(v)
}

// Tag returns the git tag name for the version, e.g. "v1.34.0"
func (v Version) Tag() string {
	return "v" + string(v)
}
