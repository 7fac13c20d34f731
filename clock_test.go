package danmu_test

import (
	"math"
	"testing"

	"github.com/go-danmu/danmu"
)

func playing(t float64) danmu.PlaybackState {
	return danmu.PlaybackState{Time: t, Speed: 1, Playing: true}
}

func TestClockFirstCallInitializes(t *testing.T) {
	var c danmu.Clock
	if got := c.Elapsed(playing(5), 0.016); got != 0 {
		t.Errorf("first Elapsed = %v, want 0", got)
	}
}

func TestClockPausedReturnsZero(t *testing.T) {
	var c danmu.Clock
	c.Elapsed(playing(0), 0.016)

	p := danmu.PlaybackState{Time: 1, Speed: 1, Playing: false}
	if got := c.Elapsed(p, 0.016); got != 0 {
		t.Errorf("paused Elapsed = %v, want 0", got)
	}
}

func TestClockSmoothSteadyPlayback(t *testing.T) {
	var c danmu.Clock
	c.Elapsed(playing(0), 0.016)

	// Reported time advances in lockstep with wall time. Elapsed should
	// track the wall delta closely; the damping factor stays near 1.
	reported := 0.0
	total := 0.0
	for i := 0; i < 100; i++ {
		reported += 0.016
		e := c.Elapsed(playing(reported), 0.016)
		if e <= 0 {
			t.Fatalf("frame %d: Elapsed = %v, want > 0", i, e)
		}
		if e < 0.016*0.9 || e > 0.016*1.1 {
			t.Fatalf("frame %d: Elapsed = %v outside damped range", i, e)
		}
		total += e
	}
	if math.Abs(total-1.6) > 0.1 {
		t.Errorf("total elapsed over 100 frames = %v, want about 1.6", total)
	}
}

func TestClockSmoothCoarseReports(t *testing.T) {
	var c danmu.Clock
	c.Elapsed(playing(0), 0.016)

	// The backend reports position only four times a second; even so the
	// per-frame elapsed must never be zero or jump to the report stride.
	reported := 0.0
	for i := 1; i <= 60; i++ {
		if i%15 == 0 {
			reported = float64(i) * 0.016
		}
		e := c.Elapsed(playing(reported), 0.016)
		if e < 0.016*0.9 || e > 0.016*1.1 {
			t.Fatalf("frame %d: Elapsed = %v, want smooth wall-scaled delta", i, e)
		}
	}
}

func TestClockSeekSnapsToReportedDelta(t *testing.T) {
	var c danmu.Clock
	c.Elapsed(playing(5), 0.016)

	// A jump beyond the drift threshold bypasses smoothing entirely.
	if got := c.Elapsed(playing(30), 0.016); got != 25 {
		t.Errorf("Elapsed after forward seek = %v, want 25", got)
	}
}

func TestClockBackwardSeekClampsToZero(t *testing.T) {
	var c danmu.Clock
	c.Elapsed(playing(30), 0.016)

	if got := c.Elapsed(playing(5), 0.016); got != 0 {
		t.Errorf("Elapsed after backward seek = %v, want 0", got)
	}
	// Subsequent frames proceed from the new position.
	if got := c.Elapsed(playing(5.016), 0.016); got <= 0 {
		t.Errorf("Elapsed after resync = %v, want > 0", got)
	}
}

func TestClockResetForgetsState(t *testing.T) {
	var c danmu.Clock
	c.Elapsed(playing(10), 0.016)
	c.Elapsed(playing(10.016), 0.016)

	c.Reset()
	if got := c.Elapsed(playing(500), 0.016); got != 0 {
		t.Errorf("first Elapsed after Reset = %v, want 0", got)
	}
}

func TestClockHonorsPlaybackSpeed(t *testing.T) {
	var c danmu.Clock
	c.Elapsed(playing(0), 0.016)

	p := danmu.PlaybackState{Time: 0.032, Speed: 2, Playing: true}
	e := c.Elapsed(p, 0.016)
	if e < 0.016*2*0.9 || e > 0.016*2*1.1 {
		t.Errorf("Elapsed at 2x speed = %v, want about 0.032", e)
	}
}
