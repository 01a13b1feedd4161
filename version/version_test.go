package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	defer func(v, b, tag string) { version, build, travisTag = v, b, tag }(version, build, travisTag)

	version, build, travisTag = "", "", ""
	assert.Equal(t, "dev", String())

	version, build = "1.2.0", "0123456789abcdef"
	assert.Equal(t, "1.2.0-01234567", String())
	assert.Equal(t, "proxybench/1.2.0-01234567", UserAgent())

	travisTag = "v1.2.0"
	assert.Equal(t, "v1.2.0", String())
}
