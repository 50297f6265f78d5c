package authorship

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCharSubset(t *testing.T) {
	assert.True(t, IsCharSubset("", ""))
	assert.True(t, IsCharSubset("", "abc"))
	assert.False(t, IsCharSubset("a", ""))
	assert.True(t, IsCharSubset("jsmith", "janeasmith"))
	assert.True(t, IsCharSubset("aa", "janeasmith"))
	assert.False(t, IsCharSubset("aaa", "janeasmith"))
	assert.False(t, IsCharSubset("boblee", "janesmith"))
}

func TestIsCharSubsetIgnoresOrder(t *testing.T) {
	ref := "janeasmith"
	for _, perm := range []string{"smith", "htims", "mitsh", "ihtsm"} {
		assert.True(t, IsCharSubset(perm, ref), perm)
	}
	for _, perm := range []string{"smithz", "zhtims"} {
		assert.False(t, IsCharSubset(perm, ref), perm)
	}
}
