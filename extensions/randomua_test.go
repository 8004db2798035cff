package extensions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomUA(t *testing.T) {
	for i := 0; i < 50; i++ {
		ua := GenerateRandomUA()
		assert.Contains(t, userAgents, ua)
		assert.Contains(t, ua, "Mozilla/5.0")
	}
}
