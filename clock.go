package danmu

// PlaybackState is the per-frame report from the media backend.
type PlaybackState struct {
	// Time is the current playback position in seconds. Backends often
	// report this at a coarser cadence than the render frame rate.
	Time float64

	// Speed is the playback speed multiplier.
	Speed float64

	// Playing is false while playback is paused.
	Playing bool
}

// Clock converts wall-clock frame deltas into virtual elapsed playback
// time for animation. Reported playback time alone is too coarse to drive
// smooth motion (it stutters at the backend's property-update cadence),
// and wall time alone drifts away from actual playback, so the clock
// extrapolates from wall time scaled by the playback speed and a damping
// factor that is nudged toward the reported position every frame.
//
// The nudge is a fixed increment per frame, not a PID loop: proportional
// correction of this form does not overshoot in practice and keeps the
// factor glued near 1. When the reported position jumps further than
// driftSnap (a seek, or a long stall), smoothing is bypassed and the
// raw reported delta is used directly.
type Clock struct {
	reported float64 // last reported playback time
	virtual  float64 // extrapolated playback time
	factor   float64 // wall-time damping factor
	started  bool
}

const (
	// driftSnap is the extrapolation error in seconds beyond which the
	// clock resynchronizes to the reported time instead of smoothing.
	driftSnap = 1.0

	// factorStep is the per-frame damping factor adjustment.
	factorStep = 0.002

	factorMin = 0.9
	factorMax = 1.1
)

// Elapsed returns the virtual playback seconds to advance animation by
// this frame, given the playback report and the wall-clock delta since the
// previous frame. Returns 0 while paused.
func (c *Clock) Elapsed(p PlaybackState, wallDelta float64) float64 {
	if !c.started {
		c.started = true
		c.reported = p.Time
		c.virtual = p.Time
		c.factor = 1
		return 0
	}

	if !p.Playing {
		c.reported = p.Time
		c.virtual = p.Time
		return 0
	}

	predicted := c.virtual + wallDelta*p.Speed*c.factor
	drift := p.Time - predicted

	if drift > driftSnap || drift < -driftSnap {
		// Seek or stall: resynchronize, no smoothing.
		elapsed := p.Time - c.reported
		c.reported = p.Time
		c.virtual = p.Time
		c.factor = 1
		if elapsed < 0 {
			return 0
		}
		return elapsed
	}

	switch {
	case drift > 0:
		c.factor += factorStep
	case drift < 0:
		c.factor -= factorStep
	}
	c.factor = clampf(c.factor, factorMin, factorMax)

	elapsed := wallDelta * p.Speed * c.factor
	c.virtual += elapsed
	c.reported = p.Time
	return elapsed
}

// Reset forgets all state. Call on seek so the next frame resynchronizes
// instead of smoothing across the discontinuity.
func (c *Clock) Reset() {
	*c = Clock{}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
