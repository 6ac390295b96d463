package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotBlank(t *testing.T) {
	rule := NotBlank("requerido")
	assert.EqualError(t, rule("  "), "requerido")
	assert.EqualError(t, rule((*string)(nil)), "requerido")
	assert.NoError(t, rule("Drama"))
	assert.NoError(t, rule(Ptr("x")))
}

func TestTrimPtr(t *testing.T) {
	assert.Nil(t, TrimPtr(nil))
	assert.Nil(t, TrimPtr(Ptr("   ")))
	assert.Equal(t, "Rosario", *TrimPtr(Ptr(" Rosario ")))
}
