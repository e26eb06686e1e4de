// Package clock implements the Playback Clock (C5): it tracks the host
// player's reported position/rate/state and exposes an interpolated
// currentTime so the renderer can sample a single consistent value per
// tick without polling the host on every frame.
package clock

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// PlayState mirrors the host player's playback state notification.
type PlayState int

const (
	StateOpenPending PlayState = iota
	StatePlaying
	StatePaused
	StateStopped
	StateClosed
)

// nowFunc returns monotonic milliseconds; overridable for tests via
// SetClock, per the Design Note "isolate wall-clock reads behind a single
// abstraction".
type nowFunc func() int64

func defaultNow() int64 {
	return time.Now().UnixMilli()
}

// Clock is the Playback Clock. All reads/writes are serialized by a mutex
// since notifications and tick reads can originate from different parts
// of the event loop depending on the host integration.
type Clock struct {
	mu sync.Mutex

	lastPos     float64
	lastPosWall int64

	lastTimestamp    float64
	hasTimestamp     bool
	lastTimestampWall int64

	rate        float64
	state       PlayState
	isSwitching bool
	duration    float64

	now nowFunc
}

// New returns a Clock in its default (source-reset) state.
func New() *Clock {
	c := &Clock{now: defaultNow}
	c.resetLocked()
	return c
}

// SetClock injects a virtual monotonic-ms clock, for deterministic tests.
func (c *Clock) SetClock(fn func() int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = fn
}

func (c *Clock) resetLocked() {
	c.lastPos = 0
	c.lastPosWall = c.now()
	c.lastTimestamp = 0
	c.hasTimestamp = false
	c.lastTimestampWall = c.lastPosWall
	c.rate = 1
	c.state = StateOpenPending
	c.isSwitching = false
	c.duration = math.NaN()
}

// OnSource resets every field to its default, per §4.1's "source resets
// all fields to defaults".
func (c *Clock) OnSource() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// OnDuration updates the known stream duration.
func (c *Clock) OnDuration(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = d
}

// OnPosition handles a position notification: the timestamp is advanced
// by the same delta as the position before rebasing wall times.
func (c *Clock) OnPosition(pos float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	cur := c.currentTimeLocked(now)
	delta := pos - cur
	if c.hasTimestamp {
		c.lastTimestamp = c.currentTimestampLocked(now) + delta
		c.lastTimestampWall = now
	}
	c.lastPos = pos
	c.lastPosWall = now
}

// OnState handles a playback-state transition. lastPos (and
// lastTimestamp) take the interpolated value at the transition and
// lastPosWall is rebased, so currentTime stays continuous and a
// paused→playing transition does not leak elapsed pause time into
// currentTime.
func (c *Clock) OnState(s PlayState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.lastPos = c.currentTimeLocked(now)
	if c.hasTimestamp {
		c.lastTimestamp = c.currentTimestampLocked(now)
	}
	c.state = s
	c.lastPosWall = now
	c.lastTimestampWall = now
}

// OnRate handles a rate change: currentTime/timestamp are sampled into
// lastPos/lastTimestamp first, wall times rebased, then the new rate is
// stored — matching §4.1's ordering.
func (c *Clock) OnRate(rate float64) error {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("clock: invalid rate %v", rate)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.lastPos = c.currentTimeLocked(now)
	if c.hasTimestamp {
		c.lastTimestamp = c.currentTimestampLocked(now)
	}
	c.lastPosWall = now
	c.lastTimestampWall = now
	c.rate = rate
	return nil
}

// OnTimestamp handles a raw timestamp notification (ms since epoch).
func (c *Clock) OnTimestamp(ts float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.lastTimestamp = ts
	c.hasTimestamp = true
	c.lastTimestampWall = now
}

// OnSwitchingStarted snapshots the interpolated values so currentTime
// freezes during a service/stream switch.
func (c *Clock) OnSwitchingStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.lastPos = c.currentTimeLocked(now)
	if c.hasTimestamp {
		c.lastTimestamp = c.currentTimestampLocked(now)
	}
	c.lastPosWall = now
	c.lastTimestampWall = now
	c.isSwitching = true
}

// OnSwitchingEnded resumes interpolation from the current wall time.
func (c *Clock) OnSwitchingEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.lastPosWall = now
	c.lastTimestampWall = now
	c.isSwitching = false
}

func (c *Clock) currentTimeLocked(now int64) float64 {
	if c.isSwitching || c.state != StatePlaying {
		return c.lastPos
	}
	return c.lastPos + float64(now-c.lastPosWall)/1000*c.rate
}

func (c *Clock) currentTimestampLocked(now int64) float64 {
	if !c.hasTimestamp {
		return 0
	}
	if c.isSwitching || c.state != StatePlaying {
		return c.lastTimestamp
	}
	return c.lastTimestamp + float64(now-c.lastTimestampWall)*c.rate
}

// CurrentTime returns the interpolated playback position in seconds.
func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTimeLocked(c.now())
}

// Snapshot returns (currentTime, timestamp, hasTimestamp, duration) sampled atomically
// from a single wall-clock read, so a renderer tick reuses one consistent
// value per §5's ordering guarantee instead of racing multiple reads.
func (c *Clock) Snapshot() (currentTime float64, timestamp float64, hasTimestamp bool, duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	return c.currentTimeLocked(now), c.currentTimestampLocked(now), c.hasTimestamp, c.duration
}

// State returns the current playback state.
func (c *Clock) State() PlayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsSwitching reports whether a switch is in progress.
func (c *Clock) IsSwitching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isSwitching
}
