package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForName(t *testing.T) {
	for _, name := range []string{"ada", "lovelace", "ada@example.com", "", "Ünïcode"} {
		assert.Regexp(t, hexColor, ForName(name))
	}

	// Deterministic per name, distinct across names.
	assert.Equal(t, ForName("ada"), ForName("ada"))
	assert.NotEqual(t, ForName("ada"), ForName("grace"))
}
