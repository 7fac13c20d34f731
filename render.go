package danmu

import (
	"fmt"
	"sort"
)

// strokeLuminanceThreshold decides the outline color: bright comment
// colors get a black outline, dark ones a white outline, so text stays
// legible on any background.
const strokeLuminanceThreshold = 70

// Render runs one frame: it places pending comments into free lanes,
// advances active comments by elapsed virtual seconds, retires expired
// ones and appends their glyph meshes to dl. Scheduling is the caller's
// half of the loop; call ScheduleDue for the frame's time window first.
//
// view is the overlay area in screen coordinates. Comments occupy only
// the upper fraction of it as configured by WithVisibleFraction. Passing
// a nil dl skips mesh building but still advances all comment state.
//
// Render must run on the thread owning the GPU context; atlas texture
// uploads happen inline. A texture upload failure is returned as is and
// leaves comment state consistent, so the caller may keep calling Render
// (for example with uploads disabled) or tear the overlay down.
func (m *Manager) Render(dl *DrawList, view Rect, elapsed float64) error {
	band := view
	band.H = view.H * m.visibleFraction

	if m.cache.NeedsRecreate() {
		m.cache.Recreate()
		if m.sink != nil && m.atlasTex != 0 {
			m.sink.DeleteTexture(m.atlasTex)
			m.atlasTex = 0
		}
	}

	m.measurePending()
	m.placePending(band)

	order := make([]int, 0, len(m.active))
	for i := range m.active {
		order = append(order, i)
	}
	sort.Ints(order)

	survivors := make([]int, 0, len(order))
	var retired []int
	for _, i := range order {
		c := &m.comments[i]
		p := c.placement
		if c.Mode == ModeScrolling {
			p.Rect.X -= p.Speed * float32(elapsed)
			if p.Rect.Right() < view.X {
				retired = append(retired, i)
				continue
			}
		} else {
			// Track the current view width; the window may have resized.
			p.Rect.X = view.CenterX() - p.Rect.W/2
			p.Lifetime -= elapsed
			if p.Lifetime > m.lifetime {
				p.Lifetime = m.lifetime
			}
			if p.Lifetime <= 0 {
				retired = append(retired, i)
				continue
			}
		}
		survivors = append(survivors, i)
	}

	// Ensure every survivor's glyphs are packed before any UV math; a
	// lazy render during mesh building could otherwise grow the atlas
	// and invalidate already-computed coordinates.
	for _, i := range survivors {
		m.cache.Glyphs(m.comments[i].Text)
	}

	if err := m.flushAtlas(); err != nil {
		return err
	}

	m.buildMesh(dl, survivors)

	for _, i := range retired {
		c := &m.comments[i]
		p := c.placement
		if c.Mode == ModeScrolling {
			m.rollingLanes.removeIf(p.Rect.Y, i)
		} else {
			m.centeredLanes.remove(p.Rect.Y)
		}
		c.placement = nil
		c.state = StateRetired
		delete(m.active, i)
	}
	return nil
}

// flushAtlas pushes pending atlas changes to the GPU, creating the
// texture on first use. A fresh or recreated atlas arrives with its
// grown flag set, so creation is always followed by a full upload.
func (m *Manager) flushAtlas() error {
	if m.sink == nil {
		return nil
	}
	if m.atlasTex == 0 {
		img := m.cache.Image()
		b := img.Bounds()
		tex, err := m.sink.CreateTexture(b.Dx(), b.Dy())
		if err != nil {
			return fmt.Errorf("danmu: create atlas texture: %w", err)
		}
		m.atlasTex = tex
	}
	if err := m.cache.flush(m.sink, m.atlasTex); err != nil {
		return fmt.Errorf("danmu: upload atlas: %w", err)
	}
	return nil
}

func (m *Manager) buildMesh(dl *DrawList, survivors []int) {
	if dl == nil || len(survivors) == 0 {
		return
	}

	b := m.cache.Image().Bounds()
	invW := 1 / float32(b.Dx())
	invH := 1 / float32(b.Dy())

	dl.SetTexture(m.atlasTex)

	// Strokes first so fills paint over them.
	for _, i := range survivors {
		c := &m.comments[i]
		m.appendGlyphQuads(dl, c, strokeColor(c.Color, m.alpha), invW, invH, StyleStroke)
	}
	for _, i := range survivors {
		c := &m.comments[i]
		m.appendGlyphQuads(dl, c, c.Color.packed(m.alpha), invW, invH, StyleFill)
	}
}

func (m *Manager) appendGlyphQuads(dl *DrawList, c *Comment, color uint32, invW, invH float32, style GlyphStyle) {
	p := c.placement
	pen := p.Rect.X + padHorizontal/2
	baseline := p.Rect.Y + padVertical/2 + m.cache.FontSize()

	for _, sg := range m.cache.Glyphs(c.Text) {
		if sg == nil {
			continue
		}
		g := sg.Fill
		if style == StyleStroke {
			g = sg.Stroke
		}
		if g.Width > 0 && g.Height > 0 {
			x0 := pen + float32(g.Left)
			y0 := baseline - float32(g.Top)
			dl.AddGlyphQuad(GlyphQuad{
				X0: x0, Y0: y0,
				X1: x0 + float32(g.Width), Y1: y0 + float32(g.Height),
				U0: float32(g.AtlasMin.X) * invW, V0: float32(g.AtlasMin.Y) * invH,
				U1: float32(g.AtlasMax.X) * invW, V1: float32(g.AtlasMax.Y) * invH,
			}, color)
		}
		pen += sg.Fill.Advance
	}
}

func strokeColor(c Color, alpha uint8) uint32 {
	if c.luminance() > strokeLuminanceThreshold {
		return RGBA(0, 0, 0, alpha)
	}
	return RGBA(255, 255, 255, alpha)
}
