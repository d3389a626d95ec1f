package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferDrain(t *testing.T) {
	b := NewBuffer(10)
	b.Success("Article created successfully")
	b.Error("Failed to upload manuscript")

	snap := b.Snapshot()
	assert.Len(t, snap, 2)

	got := b.Drain()
	assert.Len(t, got, 2)
	assert.Equal(t, LevelSuccess, got[0].Level)
	assert.Equal(t, "Failed to upload manuscript", got[1].Message)
	assert.Empty(t, b.Drain())
}

func TestBufferDropsOldest(t *testing.T) {
	b := NewBuffer(2)
	b.Info("one")
	b.Info("two")
	b.Info("three")

	got := b.Drain()
	assert.Equal(t, []string{"two", "three"}, []string{got[0].Message, got[1].Message})
}
