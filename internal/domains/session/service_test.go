package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minthotspot/hotspot-agent/internal/entities"
)

func TestRegisterClientSample(t *testing.T) {
	t.Parallel()

	t.Run("idle time accumulates to the threshold", func(t *testing.T) {
		t.Parallel()

		session := &entities.RuntimeSession{AutoOffMinutes: 1}

		// 12 empty samples of 5 seconds each reach the 60s threshold
		for i := range 11 {
			assert.False(t, registerClientSample(session, 0), "sample %d", i)
		}
		assert.True(t, registerClientSample(session, 0))
		assert.Equal(t, 60, session.IdleSeconds)
	})

	t.Run("any client resets the accumulator", func(t *testing.T) {
		t.Parallel()

		session := &entities.RuntimeSession{AutoOffMinutes: 1, IdleSeconds: 55}

		assert.False(t, registerClientSample(session, 2))
		assert.Equal(t, 0, session.IdleSeconds)

		// the countdown restarts from scratch
		assert.False(t, registerClientSample(session, 0))
		assert.Equal(t, 5, session.IdleSeconds)
	})

	t.Run("longer timeout", func(t *testing.T) {
		t.Parallel()

		session := &entities.RuntimeSession{AutoOffMinutes: 10, IdleSeconds: 590}

		assert.False(t, registerClientSample(session, 1))
		assert.Equal(t, 0, session.IdleSeconds)

		session.IdleSeconds = 595
		assert.True(t, registerClientSample(session, 0))
	})
}

func TestJoinLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", joinLines(nil))
	assert.Equal(t, "one", joinLines([]string{"one"}))
	assert.Equal(t, "one\ntwo", joinLines([]string{"one", "two"}))
}
