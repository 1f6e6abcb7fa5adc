package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedAlwaysReturnsSameInstant(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Fixed{At: at}
	assert.Equal(t, at, c.Now())
	assert.Equal(t, at, c.Now())
}

func TestSteppedAdvancesEachCall(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewStepped(start, time.Second)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Second), c.Now())
	assert.Equal(t, start.Add(2*time.Second), c.Now())
}

func TestSystemReturnsCurrentTime(t *testing.T) {
	before := time.Now()
	got := System{}.Now()
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
