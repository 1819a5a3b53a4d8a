package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveProrationPolicy(t *testing.T) {
	assert.Equal(t, ProrationSecondMonth, ResolveProrationPolicy(ProrationSecondMonth, ProrationFirstMonth))
	assert.Equal(t, ProrationSecondMonth, ResolveProrationPolicy("", ProrationSecondMonth))
	assert.Equal(t, ProrationFirstMonth, ResolveProrationPolicy("", ""))
	assert.Equal(t, ProrationFirstMonth, ResolveProrationPolicy("bogus", "also-bogus"))
}
