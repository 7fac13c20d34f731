package danmu

// Padding added around measured text so neighboring comments never touch
// edge to edge.
const (
	padHorizontal = 8.0
	padVertical   = 4.0
)

// measurePending resolves the pixel size, speed and lifetime of every
// queued comment that has not been measured yet. Comments that produce no
// glyphs are marked Unmeasurable and dropped from the queues for good.
func (m *Manager) measurePending() {
	m.centeredPending = m.measureQueue(m.centeredPending)
	m.rollingPending = m.measureQueue(m.rollingPending)
}

func (m *Manager) measureQueue(queue []int) []int {
	kept := queue[:0]
	for _, idx := range queue {
		c := &m.comments[idx]
		p := c.placement
		if p.Measure == Measured {
			kept = append(kept, idx)
			continue
		}
		w, h, ok := m.cache.Measure(c.Text)
		if !ok {
			p.Measure = Unmeasurable
			continue
		}
		p.Rect = Rect{W: w + padHorizontal, H: h + padVertical}
		p.Speed = clamp32(m.rollingSpeed*p.Rect.W/160,
			m.rollingSpeed*0.75, m.rollingSpeed*1.25)
		p.Lifetime = m.lifetime
		p.Measure = Measured
		kept = append(kept, idx)
	}
	return kept
}

// placePending moves comments from the pending queues into lanes inside
// the visible band. Each queue processes in FIFO order and stops at the
// first comment that does not fit; later arrivals wait their turn, which
// throttles bursts.
func (m *Manager) placePending(band Rect) {
	for len(m.centeredPending) > 0 {
		idx := m.centeredPending[0]
		c := &m.comments[idx]
		p := c.placement

		top, ok := m.findCenteredLane(c.Mode, p.Rect.H, band)
		if !ok {
			break
		}
		p.Rect.X = band.CenterX() - p.Rect.W/2
		p.Rect.Y = top
		m.centeredLanes.insert(top, p.Rect.H)
		c.state = StateActive
		m.active[idx] = struct{}{}
		m.centeredPending = m.centeredPending[1:]
	}

	for len(m.rollingPending) > 0 {
		idx := m.rollingPending[0]
		c := &m.comments[idx]
		p := c.placement

		top, ok := m.findScrollingLane(p.Speed, p.Rect.H, band)
		if !ok {
			break
		}
		// Spawn right-aligned: the comment's trailing edge sits exactly
		// at the view edge, which is also what the merge rule's gap
		// computation assumes for a freshly placed occupant.
		p.Rect.X = band.Right() - p.Rect.W
		p.Rect.Y = top
		m.rollingLanes.insert(top, p.Rect.H, idx)
		c.state = StateActive
		m.active[idx] = struct{}{}
		m.rollingPending = m.rollingPending[1:]
	}
}

// findCenteredLane scans the centered occupancy map for a free vertical
// slot of the given height. Top comments fill downward from the band top,
// Bottom comments upward from the band bottom.
func (m *Manager) findCenteredLane(mode DisplayMode, height float32, band Rect) (float32, bool) {
	switch mode {
	case ModeTop:
		lastBottom := band.Y
		for _, ln := range m.centeredLanes {
			if ln.top-lastBottom >= height {
				return lastBottom, true
			}
			lastBottom = ln.top + ln.height
			if lastBottom+height > band.Bottom() {
				break
			}
		}
		if lastBottom+height <= band.Bottom() {
			return lastBottom, true
		}
	case ModeBottom:
		lastTop := band.Bottom()
		for i := len(m.centeredLanes) - 1; i >= 0; i-- {
			ln := m.centeredLanes[i]
			if lastTop-(ln.top+ln.height) >= height {
				return lastTop - height, true
			}
			lastTop = ln.top
			if lastTop-height < band.Y {
				break
			}
		}
		if lastTop-height >= band.Y {
			return lastTop - height, true
		}
	}
	return 0, false
}

// findScrollingLane scans the scrolling occupancy map top to bottom. A
// lane already occupied may still admit the new comment when the new
// comment cannot catch up to the occupant before the occupant exits the
// view: the gap the occupant has already opened must cover the relative
// closing distance over the occupant's remaining travel.
func (m *Manager) findScrollingLane(speed, height float32, band Rect) (float32, bool) {
	lastBottom := band.Y
	for _, ln := range m.rollingLanes {
		if ln.top-lastBottom >= height {
			return lastBottom, true
		}

		if cp := m.comments[ln.occupant].placement; cp != nil {
			required := (speed - cp.Speed) * (cp.Rect.Right() - band.X) / cp.Speed
			if required < 0 {
				required = 0
			}
			current := band.Right() - cp.Rect.Right()
			if current >= required {
				return ln.top, true
			}
		}

		lastBottom = ln.top + ln.height
		if lastBottom+height > band.Bottom() {
			break
		}
	}
	if lastBottom+height <= band.Bottom() {
		return lastBottom, true
	}
	return 0, false
}
