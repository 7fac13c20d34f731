// Example renders a scrolling comment overlay over a plain background.
//
// Usage:
//
//	go run ./example/ -font /path/to/font.ttf [-comments comments.json]
//
// Without -comments a small built-in set of comments is used. The overlay
// runs against a synthetic playback clock that starts when the window
// opens; press space to toggle play/pause, left/right arrows to seek.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-danmu/danmu"
	"github.com/go-danmu/danmu/backend/opengl"
	"github.com/go-danmu/danmu/backend/opentype"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	windowTitle  = "danmu example"

	// Scheduling window length per frame, in seconds of playback time.
	scheduleAhead = 0.1
)

var (
	fontPath     = flag.String("font", "", "path to a TTF/OTF font file (required)")
	commentsPath = flag.String("comments", "", "path to a JSON comment source")
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	if *fontPath == "" {
		fmt.Fprintln(os.Stderr, "missing -font flag")
		flag.Usage()
		os.Exit(2)
	}
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// builtinComments is used when no -comments file is given.
const builtinComments = `[
  {"text": "hello, danmu", "pos": "0.5"},
  {"text": "scrolling comment", "pos": "1.0", "color": 16744272},
  {"text": "pinned to the top", "pos": "1.5", "layout": 1},
  {"text": "pinned to the bottom", "pos": "2.0", "layout": 2},
  {"text": "another one", "pos": "2.2"},
  {"text": "and another", "pos": "2.4", "color": 5025616},
  {"text": "short", "pos": "3.0"},
  {"text": "a somewhat longer comment scrolls slower", "pos": "3.1"},
  {"text": "bye", "pos": "6.0", "color": 2201331}
]`

func run() error {
	win, err := opengl.NewWindow(windowWidth, windowHeight, windowTitle)
	if err != nil {
		return err
	}
	defer win.Close()

	backend := opentype.New()
	mgr := danmu.New(backend,
		danmu.WithTextureSink(win.Sink()),
		danmu.WithMaxTextureSize(win.MaxTextureSize()),
	)
	defer mgr.Close()

	if err := mgr.GlyphCache().AddFontFile(*fontPath); err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	if *commentsPath != "" {
		if err := mgr.LoadFile(*commentsPath); err != nil {
			return err
		}
	} else {
		if err := mgr.Load(strings.NewReader(builtinComments)); err != nil {
			return err
		}
	}

	// Synthetic playback: position advances with wall time while playing.
	playback := danmu.PlaybackState{Speed: 1, Playing: true}

	win.GLFW().SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeySpace:
			playback.Playing = !playback.Playing
		case glfw.KeyLeft:
			playback.Time -= 5
			if playback.Time < 0 {
				playback.Time = 0
			}
			mgr.Seek()
		case glfw.KeyRight:
			playback.Time += 5
			mgr.Seek()
		case glfw.KeyEscape:
			win.GLFW().SetShouldClose(true)
		}
	})

	dl := danmu.AcquireDrawList()
	defer danmu.ReleaseDrawList(dl)

	lastFrame := glfw.GetTime()

	for !win.GLFW().ShouldClose() {
		glfw.PollEvents()

		now := glfw.GetTime()
		wallDelta := now - lastFrame
		lastFrame = now
		if playback.Playing {
			playback.Time += wallDelta * playback.Speed
		}

		elapsed := mgr.Clock().Elapsed(playback, wallDelta)

		// Schedule the window just ahead of the playback position.
		// Overlapping windows across frames are harmless; scheduling is
		// idempotent.
		mgr.ScheduleDue(playback.Time, playback.Time+scheduleAhead, nil)

		w, h := win.Size()
		view := danmu.Rect{W: float32(w), H: float32(h)}

		dl.Clear()
		dl.PushClipRect(0, 0, view.W, view.H)
		if err := mgr.Render(dl, view, elapsed); err != nil {
			return err
		}
		dl.PopClipRect()

		gl.ClearColor(0.08, 0.08, 0.10, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		if err := win.Renderer().Render(dl); err != nil {
			return err
		}

		win.GLFW().SwapBuffers()
	}
	return nil
}
