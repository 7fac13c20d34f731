// Package danmu implements a collision-avoiding overlay engine for timed
// scrolling comments ("danmu") over media playback.
//
// The engine is built from four cooperating parts, all driven synchronously
// from the render thread once per frame:
//
//   - the comment store and scheduler, which owns every loaded comment
//     sorted by effective display time and advances a window of due
//     comments into pending queues as playback progresses
//   - the lane allocator, which assigns each pending comment a
//     non-overlapping vertical lane (and, for scrolling comments, a safe
//     horizontal timing slot based on relative speed)
//   - the glyph cache and atlas packer, which rasterizes text on demand
//     through a pluggable font backend and packs fill and stroke coverage
//     bitmaps into a growable texture atlas
//   - the frame renderer, which advances active comments by virtual
//     elapsed time, retires expired ones, and emits textured quads into a
//     DrawList for GPU submission
//
// External collaborators are injected, not implemented here: a FontBackend
// rasterizes glyphs (see backend/opentype), a TextureSink uploads atlas
// pixels, and a Renderer consumes DrawLists (see backend/opengl). Playback
// time arrives as a PlaybackState each frame; the Clock type converts it
// into a smoothed virtual elapsed time that tracks stuttering or
// speed-changing playback.
//
// Typical frame loop:
//
//	t := player.CurrentTime()
//	m.ScheduleDue(t, t+0.1, nil)
//	dl := danmu.AcquireDrawList()
//	err := m.Render(dl, view, m.Clock().Elapsed(playback, wallDelta))
//	renderer.Render(dl)
//	danmu.ReleaseDrawList(dl)
//
// All comment state lives in an arena owned by the Manager; occupancy
// bookkeeping refers to comments by arena index and is validated against
// the current occupant before removal, so no cross-structure pointers can
// go stale.
package danmu
