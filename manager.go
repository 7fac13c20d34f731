package danmu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
)

// Manager owns the comment store and orchestrates scheduling, lane
// allocation and frame rendering. All methods must be called from the
// render thread; nothing here blocks or suspends.
type Manager struct {
	comments []Comment

	// active holds arena indices of comments that currently own a
	// screen rectangle and an occupancy-map slot.
	active map[int]struct{}

	// Pending queues, FIFO ordered by effective time.
	centeredPending []int
	rollingPending  []int

	centeredLanes centeredLaneMap
	rollingLanes  scrollingLaneMap

	cache *GlyphCache
	clock Clock

	sink     TextureSink
	atlasTex uint32

	rollingSpeed    float32
	lifetime        float64
	alpha           uint8
	visibleFraction float32
	delay           float64

	// consumed by New only
	initFontSize    float32
	initStrokeWidth float32
	maxTexSize      int
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithRollingSpeed sets the baseline scroll speed in px/sec. The actual
// speed of each comment scales with its width, clamped to ±25% of the
// baseline. Default 180.
func WithRollingSpeed(pxPerSec float32) Option {
	return func(m *Manager) {
		if pxPerSec > 0 {
			m.rollingSpeed = pxPerSec
		}
	}
}

// WithCenteredLifetime sets how long Top/Bottom comments stay on screen,
// in seconds. Default 5.
func WithCenteredLifetime(sec float64) Option {
	return func(m *Manager) {
		if sec > 0 {
			m.lifetime = sec
		}
	}
}

// WithAlpha sets the overlay opacity (0-255). Default 240.
func WithAlpha(a uint8) Option {
	return func(m *Manager) { m.alpha = a }
}

// WithVisibleFraction limits how much of the view height comments may
// occupy, clamped to [0.25, 1]. Default 0.5.
func WithVisibleFraction(f float32) Option {
	return func(m *Manager) { m.visibleFraction = clamp32(f, 0.25, 1.0) }
}

// WithDelay sets the global delay added to every comment's scheduled
// time, in seconds. May be negative. Default 0.
func WithDelay(sec float64) Option {
	return func(m *Manager) { m.delay = sec }
}

// WithFontSize sets the glyph rendering size in pixels, clamped to
// [16, 32]. Default 28.
func WithFontSize(px float32) Option {
	return func(m *Manager) { m.initFontSize = px }
}

// WithStrokeWidth sets the glyph stroke width in pixels, clamped to
// [0.1, 4]. Default 1.
func WithStrokeWidth(px float32) Option {
	return func(m *Manager) { m.initStrokeWidth = px }
}

// WithMaxTextureSize bounds the glyph atlas dimensions. Pass the GPU's
// maximum texture size. Default 2048.
func WithMaxTextureSize(n int) Option {
	return func(m *Manager) { m.maxTexSize = n }
}

// WithTextureSink sets the GPU upload sink for the glyph atlas. Without a
// sink the engine still runs (placement, retirement, mesh building) but
// emits no texture uploads, which is useful for tests.
func WithTextureSink(sink TextureSink) Option {
	return func(m *Manager) { m.sink = sink }
}

// New creates a Manager using the given font backend for glyph
// rasterization.
func New(backend FontBackend, opts ...Option) *Manager {
	m := &Manager{
		active:          make(map[int]struct{}),
		rollingSpeed:    180,
		lifetime:        5,
		alpha:           240,
		visibleFraction: 0.5,
		initFontSize:    defaultFontSize,
		initStrokeWidth: defaultStrokeWidth,
		maxTexSize:      2048,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.cache = NewGlyphCache(backend, m.maxTexSize)
	sizeChanged := m.cache.SetFontSize(m.initFontSize)
	strokeChanged := m.cache.SetStrokeWidth(m.initStrokeWidth)
	if sizeChanged || strokeChanged {
		m.cache.Recreate()
	}
	return m
}

// rawRecord mirrors one entry of the JSON comment source. Text and pos
// are required; layout and color are lenient and fall back to defaults
// when missing or unparsable.
type rawRecord struct {
	Text   *string         `json:"text"`
	Pos    *string         `json:"pos"`
	Layout json.RawMessage `json:"layout"`
	Color  json.RawMessage `json:"color"`
}

// Load parses a JSON comment source and replaces the comment store.
// The load is atomic: on any error the previously loaded comments are
// kept untouched. A successful load resets all lifecycle state.
func (m *Manager) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("danmu: read comment source: %w", err)
	}

	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) == 0 || trimmed[0] != '[' {
		return ErrNotArray
	}

	var raw []rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("danmu: parse comment source: %w", err)
	}

	comments := make([]Comment, 0, len(raw))
	for i, rec := range raw {
		if rec.Text == nil {
			return &ParseError{Index: i, Field: "text"}
		}
		if rec.Pos == nil {
			return &ParseError{Index: i, Field: "pos"}
		}
		t, err := strconv.ParseFloat(*rec.Pos, 64)
		if err != nil {
			return &ParseError{Index: i, Field: "pos", Err: err}
		}

		mode := ModeScrolling
		if len(rec.Layout) > 0 {
			var n int64
			if json.Unmarshal(rec.Layout, &n) == nil && n >= 0 && n <= 2 {
				mode = DisplayMode(n)
			}
		}

		color := Color{R: 255, G: 255, B: 255}
		if len(rec.Color) > 0 {
			var v uint32
			if json.Unmarshal(rec.Color, &v) == nil {
				color = colorFromInt(v)
			}
		}

		comments = append(comments, Comment{
			Mode:          mode,
			ScheduledTime: t,
			EffectiveTime: effectiveTime(t, m.delay),
			Text:          *rec.Text,
			Color:         color,
		})
	}

	// Scheduled times order effective times for any delay (the delay
	// shift is monotone), so one stable sort serves both.
	sort.SliceStable(comments, func(a, b int) bool {
		return comments[a].ScheduledTime < comments[b].ScheduledTime
	})

	m.comments = comments
	m.Reset()
	return nil
}

// LoadFile loads a JSON comment source from a file.
func (m *Manager) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("danmu: open comment source: %w", err)
	}
	defer f.Close()
	return m.Load(f)
}

func effectiveTime(scheduled, delay float64) float64 {
	t := scheduled + delay
	if t < 0 {
		return 0
	}
	return t
}

// SetDelay sets the global delay offset and rewrites every comment's
// effective time. This forces a full reset: scheduled-state tracking is
// keyed by effective time and would otherwise go stale.
func (m *Manager) SetDelay(sec float64) {
	m.delay = sec
	for i := range m.comments {
		m.comments[i].EffectiveTime = effectiveTime(m.comments[i].ScheduledTime, sec)
	}
	m.Reset()
}

// Delay returns the current global delay in seconds.
func (m *Manager) Delay() float64 { return m.delay }

// ScheduleDue advances comments whose effective time falls in
// [start, end) from Unscheduled to Pending, appending them to the
// allocation queues in effective-time order. Comments matching the
// optional filter are skipped and stay Unscheduled.
//
// The window must be non-empty (start < end); an empty window is a caller
// programming error and panics.
func (m *Manager) ScheduleDue(start, end float64, filter *regexp.Regexp) {
	if start >= end {
		panic("danmu: ScheduleDue requires start < end")
	}

	i := sort.Search(len(m.comments), func(i int) bool {
		return m.comments[i].EffectiveTime >= start
	})
	for ; i < len(m.comments); i++ {
		c := &m.comments[i]
		if c.EffectiveTime >= end {
			return
		}
		if c.state != StateUnscheduled {
			continue
		}
		if filter != nil && filter.MatchString(c.Text) {
			continue
		}

		c.state = StatePending
		c.placement = &Placement{}
		if c.Mode.centered() {
			m.centeredPending = append(m.centeredPending, i)
		} else {
			m.rollingPending = append(m.rollingPending, i)
		}
	}
}

// Reset forces every comment back to Unscheduled, clears all placement
// data, and empties the pending queues and occupancy maps. Must be
// called on any seek or delay change before the next frame is processed.
func (m *Manager) Reset() {
	for i := range m.comments {
		m.comments[i].state = StateUnscheduled
		m.comments[i].placement = nil
	}
	m.centeredPending = m.centeredPending[:0]
	m.rollingPending = m.rollingPending[:0]
	m.centeredLanes = m.centeredLanes.clear()
	m.rollingLanes = m.rollingLanes.clear()
	clear(m.active)
}

// Seek resets comment state and the playback clock after a seek.
func (m *Manager) Seek() {
	m.Reset()
	m.clock.Reset()
}

// SetFontSize changes the glyph rendering size. A change invalidates the
// glyph cache and resets comment state, since active rectangles were
// measured at the old size.
func (m *Manager) SetFontSize(px float32) {
	if m.cache.SetFontSize(px) {
		m.Reset()
	}
}

// SetStrokeWidth changes the glyph stroke width. A change invalidates the
// glyph cache and resets comment state.
func (m *Manager) SetStrokeWidth(px float32) {
	if m.cache.SetStrokeWidth(px) {
		m.Reset()
	}
}

// SetAlpha sets the overlay opacity (0-255).
func (m *Manager) SetAlpha(a uint8) { m.alpha = a }

// SetRollingSpeed sets the baseline scroll speed in px/sec. Applies to
// comments measured after the call.
func (m *Manager) SetRollingSpeed(pxPerSec float32) {
	if pxPerSec > 0 {
		m.rollingSpeed = pxPerSec
	}
}

// SetCenteredLifetime sets the display time of Top/Bottom comments in
// seconds. Active comments are clamped down to the new value as they age.
func (m *Manager) SetCenteredLifetime(sec float64) {
	if sec > 0 {
		m.lifetime = sec
	}
}

// SetVisibleFraction limits how much of the view height comments may
// occupy, clamped to [0.25, 1].
func (m *Manager) SetVisibleFraction(f float32) {
	m.visibleFraction = clamp32(f, 0.25, 1.0)
}

// Len returns the number of loaded comments.
func (m *Manager) Len() int { return len(m.comments) }

// At returns the i-th comment in effective-time order. The returned
// pointer stays valid until the next Load.
func (m *Manager) At(i int) *Comment { return &m.comments[i] }

// ActiveCount returns the number of comments currently on screen.
func (m *Manager) ActiveCount() int { return len(m.active) }

// PendingCount returns the number of comments queued for lane allocation.
func (m *Manager) PendingCount() int {
	return len(m.centeredPending) + len(m.rollingPending)
}

// GlyphCache exposes the glyph cache for font management.
func (m *Manager) GlyphCache() *GlyphCache { return m.cache }

// Clock returns the playback clock used to derive virtual elapsed time.
func (m *Manager) Clock() *Clock { return &m.clock }

// Close releases the atlas texture, if one was created.
func (m *Manager) Close() {
	if m.sink != nil && m.atlasTex != 0 {
		m.sink.DeleteTexture(m.atlasTex)
		m.atlasTex = 0
	}
}
