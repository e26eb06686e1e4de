package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func virtualNow(t *testing.T) (*Clock, *int64) {
	c := New()
	var ms int64
	c.SetClock(func() int64 { return ms })
	return c, &ms
}

func TestClock_FrozenWhenNotPlaying(t *testing.T) {
	c, ms := virtualNow(t)
	c.OnPosition(10)
	*ms += 5000
	assert.Equal(t, 10.0, c.CurrentTime())
}

func TestClock_AdvancesWithWallTimeWhenPlaying(t *testing.T) {
	c, ms := virtualNow(t)
	c.OnPosition(10)
	require.NoError(t, c.OnRate(1))
	c.OnState(StatePlaying)
	*ms += 2000
	assert.InDelta(t, 12.0, c.CurrentTime(), 1e-9)
}

func TestClock_RateScalesAdvance(t *testing.T) {
	c, ms := virtualNow(t)
	c.OnPosition(0)
	c.OnState(StatePlaying)
	require.NoError(t, c.OnRate(2))
	*ms += 1000
	assert.InDelta(t, 2.0, c.CurrentTime(), 1e-9)
}

func TestClock_StateTransitionDoesNotLeakPauseTime(t *testing.T) {
	c, ms := virtualNow(t)
	c.OnPosition(0)
	require.NoError(t, c.OnRate(1))
	c.OnState(StatePlaying)
	*ms += 3000 // 3s elapsed while playing
	c.OnState(StatePaused)
	assert.InDelta(t, 3.0, c.CurrentTime(), 1e-9)
	*ms += 10000 // 10s elapsed while paused, must not count
	assert.InDelta(t, 3.0, c.CurrentTime(), 1e-9)
	c.OnState(StatePlaying)
	*ms += 1000
	assert.InDelta(t, 4.0, c.CurrentTime(), 1e-9)
}

func TestClock_SwitchingFreezesAndResumes(t *testing.T) {
	c, ms := virtualNow(t)
	c.OnPosition(5)
	require.NoError(t, c.OnRate(1))
	c.OnState(StatePlaying)
	*ms += 1000
	c.OnSwitchingStarted()
	frozen := c.CurrentTime()
	*ms += 5000
	assert.Equal(t, frozen, c.CurrentTime())
	c.OnSwitchingEnded()
	*ms += 2000
	assert.InDelta(t, frozen+2.0, c.CurrentTime(), 1e-9)
}

func TestClock_InvalidRateRejected(t *testing.T) {
	c, _ := virtualNow(t)
	assert.Error(t, c.OnRate(0))
	assert.Error(t, c.OnRate(-1))
}

func TestClock_SourceResetsToDefaults(t *testing.T) {
	c, ms := virtualNow(t)
	c.OnPosition(42)
	require.NoError(t, c.OnRate(3))
	c.OnState(StatePlaying)
	*ms += 1000
	c.OnSource()
	assert.Equal(t, 0.0, c.CurrentTime())
	assert.Equal(t, StateOpenPending, c.State())
}
