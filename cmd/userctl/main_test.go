package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentOutUser(t *testing.T) {
	lines := []string{
		"users:",
		"  alice:",
		"    hash: abc",
		"    salt: s",
		"  bob:",
		"    hash: def",
	}
	out, found := commentOutUser(lines, "alice")
	assert.True(t, found)
	assert.Equal(t, []string{
		"users:",
		"#   alice:",
		"#     hash: abc",
		"#     salt: s",
		"  bob:",
		"    hash: def",
	}, out)

	_, found = commentOutUser(out, "alice")
	assert.False(t, found)
}
