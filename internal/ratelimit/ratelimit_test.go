package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinBurst(t *testing.T) {
	limiter := NewInMemoryLimiter(1, time.Hour, 2)

	assert.True(t, limiter.Allow("cdn.example.com"))
	assert.True(t, limiter.Allow("cdn.example.com"))
	assert.False(t, limiter.Allow("cdn.example.com"))
}

func TestKeysAreIndependent(t *testing.T) {
	limiter := NewInMemoryLimiter(1, time.Hour, 1)

	assert.True(t, limiter.Allow("a.example.com"))
	assert.False(t, limiter.Allow("a.example.com"))
	assert.True(t, limiter.Allow("b.example.com"))
}
