package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterDeviceTokens(t *testing.T) {
	plausible := strings.Repeat("a", 80) + ":APA91b" + strings.Repeat("b", 70)
	alsoPlausible := strings.Repeat("c", 152)

	filtered := FilterDeviceTokens([]string{
		plausible,
		"null",
		"undefined",
		"short-token",
		"",
		"  " + alsoPlausible + "  ",
	})

	assert.Equal(t, []string{plausible, alsoPlausible}, filtered)
}

func TestFilterDeviceTokensDropsPlaceholders(t *testing.T) {
	filtered := FilterDeviceTokens([]string{"NULL", "Test", "unknown"})

	assert.Empty(t, filtered)
}

func TestFilterDeviceTokensEmptyInput(t *testing.T) {
	assert.Empty(t, FilterDeviceTokens(nil))
}
