package opengl

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"hypersurface/rendering"
	"hypersurface/rendering/opengl/shaders"
)

const placeholderRadius = 0.6

// glGeometry is one VAO with its vertex and (optional) index buffers.
type glGeometry struct {
	vao   uint32
	vbo   uint32
	ebo   uint32
	count int32
}

func (g *glGeometry) release() {
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	*g = glGeometry{}
}

// SurfaceRenderer draws a rendering.Surface into a glfw window.
type SurfaceRenderer struct {
	window  *glfw.Window
	surface *rendering.Surface
	camera  rendering.Camera

	meshProgram  uint32
	pointProgram uint32

	mesh        glGeometry
	points      glGeometry
	placeholder glGeometry

	// builds of the Surface whose geometry is on the GPU
	uploaded int

	width, height int

	mouseDown  bool
	lastMouseX float64
	lastMouseY float64
}

// NewSurfaceRenderer opens a window with an OpenGL 4.1 core context. It must
// be called from the main goroutine.
func NewSurfaceRenderer(width, height int, surface *rendering.Surface) (*SurfaceRenderer, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(width, height, "Hypersphere Surface", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Printf("[RENDER] OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))

	r := &SurfaceRenderer{
		window:  window,
		surface: surface,
		camera:  rendering.NewCamera(),
		width:   width,
		height:  height,
	}

	// Framebuffer can differ from window size on HiDPI displays
	fbw, fbh := window.GetFramebufferSize()
	r.onResize(fbw, fbh)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	bg := glColor(background)
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])

	if r.meshProgram, err = shaders.NewProgram(shaders.MeshVertex, shaders.MeshFragment); err != nil {
		r.Terminate()
		return nil, fmt.Errorf("mesh shaders: %w", err)
	}
	if r.pointProgram, err = shaders.NewProgram(shaders.PointVertex, shaders.PointFragment); err != nil {
		r.Terminate()
		return nil, fmt.Errorf("point shaders: %w", err)
	}

	vertices, indices := rendering.PackPlaceholder(placeholderRadius)
	r.placeholder = uploadMesh(vertices, indices)

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.onResize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		r.onKey(key, action)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		r.camera.Zoom(yoff)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		r.onMouseButton(button, action)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		r.onMouseMove(xpos, ypos)
	})

	return r, nil
}

// uploadMesh creates a VAO for MeshStride-interleaved vertices.
func uploadMesh(vertices []float32, indices []uint32) glGeometry {
	var g glGeometry
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	stride := int32(rendering.MeshStride * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(6*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	g.count = int32(len(indices))
	return g
}

// uploadPoints creates a VAO for PointStride-interleaved vertices.
func uploadPoints(vertices []float32) glGeometry {
	var g glGeometry
	if len(vertices) == 0 {
		return g
	}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	stride := int32(rendering.PointStride * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 1, gl.FLOAT, false, stride, gl.PtrOffset(6*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	g.count = int32(len(vertices) / rendering.PointStride)
	return g
}

// syncGeometry uploads the surface's geometry if it was rebuilt since the
// last upload. Frames in between reuse the GPU buffers.
func (r *SurfaceRenderer) syncGeometry() {
	if r.surface.Builds() == r.uploaded {
		return
	}
	r.mesh.release()
	r.points.release()

	if grid := r.surface.Grid(); grid != nil {
		vertices, indices := rendering.PackMesh(grid)
		r.mesh = uploadMesh(vertices, indices)
		r.points = uploadPoints(rendering.PackPoints(r.surface.Cloud()))
		log.Printf("[RENDER] uploaded %d nodes, %d points (version %d)",
			len(grid.Nodes), r.points.count, r.surface.Version())
	}
	r.uploaded = r.surface.Builds()
}

// Render draws one frame at the given elapsed time.
func (r *SurfaceRenderer) Render(elapsed time.Duration) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.syncGeometry()
	frame := r.surface.Frame(elapsed)
	view := r.camera.View()
	proj := r.camera.Projection(r.width, r.height)

	wireframe := frame.Mode == rendering.Wireframe
	if wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		gl.Enable(gl.CULL_FACE)
	}

	mesh := r.mesh
	if frame.Placeholder {
		mesh = r.placeholder
	}
	r.drawMesh(mesh, frame.Model, view, proj, wireframe)

	if !frame.Placeholder && r.points.count > 0 {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		r.drawPoints(frame.Model, view, proj)
	}

	if err := gl.GetError(); err != gl.NO_ERROR {
		log.Printf("[RENDER] OpenGL error 0x%x", err)
	}
	r.window.SwapBuffers()
}

func (r *SurfaceRenderer) drawMesh(g glGeometry, model, view, proj mgl32.Mat4, wireframe bool) {
	if g.count == 0 {
		return
	}
	program := r.meshProgram
	gl.UseProgram(program)
	setMatrices(program, model, view, proj)
	mode := int32(0)
	if wireframe {
		mode = 1
	}
	gl.Uniform1i(gl.GetUniformLocation(program, gl.Str("wireframe\x00")), mode)

	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (r *SurfaceRenderer) drawPoints(model, view, proj mgl32.Mat4) {
	program := r.pointProgram
	gl.UseProgram(program)
	setMatrices(program, model, view, proj)
	gl.Uniform1f(gl.GetUniformLocation(program, gl.Str("viewportHeight\x00")), float32(r.height))

	gl.Enable(gl.BLEND)
	gl.BindVertexArray(r.points.vao)
	gl.DrawArrays(gl.POINTS, 0, r.points.count)
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
}

func setMatrices(program uint32, model, view, proj mgl32.Mat4) {
	gl.UniformMatrix4fv(gl.GetUniformLocation(program, gl.Str("model\x00")), 1, false, &model[0])
	gl.UniformMatrix4fv(gl.GetUniformLocation(program, gl.Str("view\x00")), 1, false, &view[0])
	gl.UniformMatrix4fv(gl.GetUniformLocation(program, gl.Str("projection\x00")), 1, false, &proj[0])
}

func (r *SurfaceRenderer) onResize(width, height int) {
	r.width = width
	r.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (r *SurfaceRenderer) onKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press {
		return
	}

	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
	case glfw.KeyW:
		view := r.surface.ToggleMode()
		log.Printf("[RENDER] %s mode", view.Mode)
	}
}

func (r *SurfaceRenderer) onMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		r.mouseDown = true
		r.lastMouseX, r.lastMouseY = r.window.GetCursorPos()
	case glfw.Release:
		r.mouseDown = false
	}
}

func (r *SurfaceRenderer) onMouseMove(xpos, ypos float64) {
	if !r.mouseDown {
		return
	}
	r.camera.Orbit(xpos-r.lastMouseX, ypos-r.lastMouseY)
	r.lastMouseX = xpos
	r.lastMouseY = ypos
}

// ShouldClose returns true if the window should close
func (r *SurfaceRenderer) ShouldClose() bool {
	return r.window.ShouldClose()
}

// PollEvents processes window events
func (r *SurfaceRenderer) PollEvents() {
	glfw.PollEvents()
}

// Terminate releases GPU resources and closes the window.
func (r *SurfaceRenderer) Terminate() {
	r.mesh.release()
	r.points.release()
	r.placeholder.release()
	if r.meshProgram != 0 {
		gl.DeleteProgram(r.meshProgram)
	}
	if r.pointProgram != 0 {
		gl.DeleteProgram(r.pointProgram)
	}
	r.window.Destroy()
	glfw.Terminate()
}
