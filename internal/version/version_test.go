package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse("1.34.0")
	require.NoError(t, err)
	assert.Equal(t, "1.34.0", v.String())
	assert.Equal(t, "v1.34.0", v.Tag())
}

func TestParseRejectsMalformedVersions(t *testing.T) {
	for _, s := range []string{
		"",
		"1.2",
		"v1.2.3",
		"1.2.3-rc1",
		"1.2.3.4",
		"a.b.c",
		" 1.2.3",
		"1.2.3\n",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := Parse(s)
			assert.ErrorIs(t, err, ErrInvalidVersion)
		})
	}
}
