package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentTierIndex(t *testing.T) {
	p := testPolicy()

	assert.Equal(t, -1, p.CurrentTierIndex(nil))
	assert.Equal(t, -1, p.CurrentTierIndex([]string{"unrelated-role"}))
	assert.Equal(t, 0, p.CurrentTierIndex([]string{"r-bronze"}))
	assert.Equal(t, 1, p.CurrentTierIndex([]string{"unrelated-role", "r-silver"}))

	// The highest held tier wins even when lower rungs are also held.
	assert.Equal(t, 2, p.CurrentTierIndex([]string{"r-bronze", "r-silver", "r-gold"}))
}

func TestNextTier(t *testing.T) {
	p := testPolicy()

	next, ok := p.NextTier(-1)
	assert.True(t, ok)
	assert.Equal(t, "bronze", next.Name)

	next, ok = p.NextTier(1)
	assert.True(t, ok)
	assert.Equal(t, "gold", next.Name)

	_, ok = p.NextTier(2)
	assert.False(t, ok)
}

func TestTierByName(t *testing.T) {
	p := testPolicy()

	assert.Equal(t, 1, p.TierByName("silver"))
	assert.Equal(t, -1, p.TierByName("platinum"))
}
