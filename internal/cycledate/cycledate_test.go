package cycledate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStart(t *testing.T) {
	// До часа открытия — сегодняшняя дата с часом открытия.
	early := time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)
	start := SessionStart(early)
	assert.Equal(t, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), start)

	// После часа открытия — сам момент открытия.
	late := time.Date(2026, 9, 1, 14, 45, 0, 0, time.UTC)
	assert.Equal(t, late, SessionStart(late))
}
