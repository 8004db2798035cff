package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	defer func(v, h string) { Version, GitHash = v, h }(Version, GitHash)

	Version, GitHash = "v0.3.0", "0123456789abcdef"
	assert.Equal(t, "v0.3.0-0123456", GetVersion())

	GitHash = ""
	assert.Equal(t, "v0.3.0", GetVersion())
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	Printer(&buf)

	assert.Contains(t, buf.String(), "Git Branch:")
	assert.Contains(t, buf.String(), "Build Time (UTC):")
}
