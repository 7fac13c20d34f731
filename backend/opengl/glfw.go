package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window bundles a GLFW window with an initialized GL 4.1 core context,
// a Renderer and a TextureSink. It exists so overlay hosts do not repeat
// the context bootstrap; anything beyond that (input, video surface)
// stays with the caller.
type Window struct {
	win      *glfw.Window
	renderer *Renderer
	sink     *TextureSink
}

// NewWindow initializes GLFW, opens a window with a current GL 4.1 core
// context and creates the renderer. Must be called from the main thread
// with runtime.LockOSThread in effect.
func NewWindow(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	fbW, fbH := win.GetFramebufferSize()
	renderer, err := NewRenderer(fbW, fbH)
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}

	w := &Window{
		win:      win,
		renderer: renderer,
		sink:     NewTextureSink(),
	}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		renderer.Resize(width, height)
	})
	return w, nil
}

// GLFW returns the underlying window for event polling and buffer swaps.
func (w *Window) GLFW() *glfw.Window { return w.win }

// Renderer returns the DrawList renderer bound to this window's context.
func (w *Window) Renderer() *Renderer { return w.renderer }

// Sink returns the atlas texture sink bound to this window's context.
func (w *Window) Sink() *TextureSink { return w.sink }

// Size returns the current framebuffer size in pixels.
func (w *Window) Size() (int, int) { return w.win.GetFramebufferSize() }

// MaxTextureSize queries the GL implementation's texture size limit.
func (w *Window) MaxTextureSize() int {
	var n int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &n)
	return int(n)
}

// Close destroys the renderer, the window and the GLFW state.
func (w *Window) Close() {
	w.renderer.Delete()
	w.win.Destroy()
	glfw.Terminate()
}
