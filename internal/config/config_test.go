package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategories(t *testing.T) {
	got := parseCategories("Mixing:3, Recording:4,Gear: 5")
	assert.Equal(t, map[string]int{
		"Mixing":    3,
		"Recording": 4,
		"Gear":      5,
	}, got)
}

func TestParseCategoriesEmpty(t *testing.T) {
	assert.Empty(t, parseCategories(""))
}

func TestParseCategoriesSkipsMalformedEntries(t *testing.T) {
	got := parseCategories("Mixing:3,broken,Gear:notanumber,Recording:4")
	assert.Equal(t, map[string]int{
		"Mixing":    3,
		"Recording": 4,
	}, got)
}
