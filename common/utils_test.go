package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, time.Second, Coalesce(0, time.Second))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp(float32(3), 0, 1))
	assert.Equal(t, float32(0), Clamp(float32(-3), 0, 1))
	assert.Equal(t, 5, Clamp(5, 1, 10))
}
