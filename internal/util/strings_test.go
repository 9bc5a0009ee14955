package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAnyPrefix(t *testing.T) {
	assert.True(t, HasAnyPrefix("soc-gemsec-HR", "rec-", "soc-gemsec-"))
	assert.False(t, HasAnyPrefix("soc-BlogCatalog", "rec-", "soc-gemsec-"))
	assert.False(t, HasAnyPrefix("anything"))
}

func TestHasAnySuffix(t *testing.T) {
	assert.True(t, HasAnySuffix("aves-wildbird-trapping", "-trapping", "-ratings"))
	assert.False(t, HasAnySuffix("road-minnesota", "-trapping", "-ratings"))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("data from CAIDA Skitter", "WHOIS", "Skitter"))
	assert.False(t, ContainsAny("plain text", "WHOIS", "Skitter"))
}

func TestPtr(t *testing.T) {
	p := Ptr(3)
	assert.Equal(t, 3, *p)
	*p = 4
	assert.NotEqual(t, Ptr(3), p)
}
