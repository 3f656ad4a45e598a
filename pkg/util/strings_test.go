package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, UniqueStrings([]string{"a", "b", "a", "c", "b"}))
}

func TestUniqueStringsDropsEmpties(t *testing.T) {
	assert.Equal(t, []string{"a"}, UniqueStrings([]string{"", "a", ""}))
}

func TestUniqueStringsNil(t *testing.T) {
	assert.Empty(t, UniqueStrings(nil))
}
