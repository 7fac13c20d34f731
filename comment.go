package danmu

// DisplayMode describes how a comment moves across the view.
type DisplayMode uint8

const (
	// ModeScrolling comments enter at the right edge and scroll left at
	// constant speed until they leave the view.
	ModeScrolling DisplayMode = iota
	// ModeTop comments are horizontally centered near the top of the view
	// and stay put for a fixed lifetime.
	ModeTop
	// ModeBottom comments are horizontally centered near the bottom of
	// the view and stay put for a fixed lifetime.
	ModeBottom
)

func (m DisplayMode) String() string {
	switch m {
	case ModeScrolling:
		return "scrolling"
	case ModeTop:
		return "top"
	case ModeBottom:
		return "bottom"
	}
	return "unknown"
}

// centered reports whether the mode is one of the fixed, centered modes.
func (m DisplayMode) centered() bool {
	return m == ModeTop || m == ModeBottom
}

// PlacementState is a comment's lifecycle state. It only ever advances
// (Unscheduled → Pending → Active → Retired); Reset is the single
// operation that moves comments backward, and it moves them all the way
// to Unscheduled.
type PlacementState uint8

const (
	// StateUnscheduled comments have not yet entered a processed time window.
	StateUnscheduled PlacementState = iota
	// StatePending comments are due and queued for lane allocation.
	StatePending
	// StateActive comments hold a screen rectangle and an occupancy-map slot.
	StateActive
	// StateRetired comments have scrolled off-screen or expired.
	StateRetired
)

func (s PlacementState) String() string {
	switch s {
	case StateUnscheduled:
		return "unscheduled"
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateRetired:
		return "retired"
	}
	return "unknown"
}

// MeasureState tracks whether a pending comment's pixel size is known.
type MeasureState uint8

const (
	// NotMeasured comments still need a glyph-cache measurement pass.
	NotMeasured MeasureState = iota
	// Measured comments have a concrete rectangle size and speed.
	Measured
	// Unmeasurable comments produced no glyphs at all. This is terminal:
	// the comment is silently dropped from allocation and never becomes
	// Active.
	Unmeasurable
)

// Placement holds the transient screen-space data of a Pending or Active
// comment. It is nil while a comment is Unscheduled or Retired.
type Placement struct {
	// Rect is the comment's bounding rectangle in view coordinates.
	// Before allocation only the size is meaningful.
	Rect Rect

	// Lifetime is the remaining display time in seconds. Only used by
	// centered (Top/Bottom) comments.
	Lifetime float64

	// Speed is the horizontal scroll speed in px/sec. Only used by
	// scrolling comments.
	Speed float32

	// Measure is the readiness of the size measurement.
	Measure MeasureState
}

// Comment is one timed overlay text item. The Manager owns all comments
// for the lifetime of a loaded source; Text, ScheduledTime and Color are
// immutable after load.
type Comment struct {
	// Mode is how the comment is shown.
	Mode DisplayMode

	// ScheduledTime is the raw timestamp from the source in seconds.
	ScheduledTime float64

	// EffectiveTime is ScheduledTime plus the global delay, floored at
	// zero. Recomputed whenever the delay changes.
	EffectiveTime float64

	// Text is the comment content.
	Text string

	// Color is the fill color.
	Color Color

	state     PlacementState
	placement *Placement
}

// State returns the comment's current lifecycle state.
func (c *Comment) State() PlacementState { return c.state }

// Placement returns the comment's transient placement data, or nil if the
// comment is Unscheduled or Retired.
func (c *Comment) Placement() *Placement { return c.placement }
