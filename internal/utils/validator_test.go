// internal/utils/validator_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePromptID(t *testing.T) {
	assert.True(t, ValidatePromptID("my-prompt_01"))
	assert.True(t, ValidatePromptID("a"))
	assert.True(t, ValidatePromptID(strings.Repeat("x", 64)))

	assert.False(t, ValidatePromptID(""))
	assert.False(t, ValidatePromptID(strings.Repeat("x", 65)))
	assert.False(t, ValidatePromptID("has space"))
	assert.False(t, ValidatePromptID("dot.dot"))
}

func TestValidateTagName(t *testing.T) {
	assert.True(t, ValidateTagName("nlp"))
	assert.True(t, ValidateTagName("code-gen_2"))

	assert.False(t, ValidateTagName(""))
	assert.False(t, ValidateTagName(strings.Repeat("t", 33)))
	assert.False(t, ValidateTagName("bad tag"))
}

func TestValidateVersionFormat(t *testing.T) {
	assert.True(t, ValidateVersionFormat("1.0.0"))
	assert.True(t, ValidateVersionFormat("0.12.345"))

	assert.False(t, ValidateVersionFormat("1.0"))
	assert.False(t, ValidateVersionFormat("1.0.0.0"))
	assert.False(t, ValidateVersionFormat("v1.0.0"))
	assert.False(t, ValidateVersionFormat("1.0.x"))
}

func TestAreVersionsCompatible(t *testing.T) {
	assert.True(t, AreVersionsCompatible("1.0.0", "1.9.3"))
	assert.False(t, AreVersionsCompatible("1.0.0", "2.0.0"))
}

func TestHexValidators(t *testing.T) {
	assert.True(t, isHexOfLen(strings.Repeat("ab", 32), 32))
	assert.False(t, isHexOfLen(strings.Repeat("ab", 31), 32))
	assert.False(t, isHexOfLen(strings.Repeat("zz", 32), 32))
}
