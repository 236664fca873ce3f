package main

import (
	"unsafe"

	"point-shadows/libgl"
	"point-shadows/libutil"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
)

type ImGui struct {
	Context   *imgui.Context
	IO        imgui.IO
	FrameTime float32
	ctx       *glfw.Window
	vao       libgl.UnboundVertexArray
	vbo       libgl.UnboundBuffer
	ebo       libgl.UnboundBuffer
	atlas     libgl.UnboundTexture
	shader    *libgl.Shader
}

var Gui *ImGui

// NewImGui installs its glfw callbacks in front of the ones already set on win,
// so the input manager still sees scroll events.
func NewImGui(win *glfw.Window, shader *libgl.Shader) *ImGui {
	imguiContext := imgui.CreateContext(nil)

	io := imgui.CurrentIO()
	dispWidth, dispHeight := win.GetSize()
	io.SetDisplaySize(imgui.Vec2{X: float32(dispWidth), Y: float32(dispHeight)})
	io.SetConfigFlags(imgui.ConfigFlagsNoMouse)
	imgui.StyleColorsDark()

	vao := libgl.NewVertexArray()
	vao.SetDebugLabel("imgui")
	_, vertexOffsetPos, vertexOffsetUv, vertexOffsetCol := imgui.VertexBufferLayout()
	vao.Layout(0, 0, 2, gl.FLOAT, false, vertexOffsetPos)
	vao.Layout(0, 1, 2, gl.FLOAT, false, vertexOffsetUv)
	vao.Layout(0, 2, 4, gl.UNSIGNED_BYTE, true, vertexOffsetCol)

	image := io.Fonts().TextureDataRGBA32()
	atlas := libgl.NewTexture(gl.TEXTURE_2D)
	atlas.Allocate(1, gl.RGBA8, image.Width, image.Height, 0)
	atlas.Load(0, image.Width, image.Height, 0, gl.RGBA, unsafe.Slice((*byte)(image.Pixels), image.Width*image.Height*4))
	atlas.FilterMode(gl.LINEAR, gl.LINEAR)
	atlas.SetDebugLabel("imgui font atlas")
	io.Fonts().SetTextureID(imgui.TextureID(atlas.Id()))

	prevCursorPos := win.SetCursorPosCallback(nil)
	win.SetCursorPosCallback(func(w *glfw.Window, mx, my float64) {
		io.SetMousePosition(imgui.Vec2{X: float32(mx), Y: float32(my)})
		if prevCursorPos != nil {
			prevCursorPos(w, mx, my)
		}
	})
	prevMouseButton := win.SetMouseButtonCallback(nil)
	win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		io.SetMouseButtonDown(int(button), action == glfw.Press)
		if prevMouseButton != nil {
			prevMouseButton(w, button, action, mods)
		}
	})
	prevScroll := win.SetScrollCallback(nil)
	win.SetScrollCallback(func(w *glfw.Window, x, y float64) {
		io.AddMouseWheelDelta(float32(x), float32(y))
		if prevScroll != nil {
			prevScroll(w, x, y)
		}
	})
	win.SetCharCallback(func(w *glfw.Window, char rune) {
		io.AddInputCharacters(string(char))
	})
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Press {
			io.KeyPress(int(key))
		}
		if action == glfw.Release {
			io.KeyRelease(int(key))
		}

		// Modifiers are not reliable across systems
		io.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
		io.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
		io.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
		io.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))
	})

	io.KeyMap(imgui.KeyTab, int(glfw.KeyTab))
	io.KeyMap(imgui.KeyLeftArrow, int(glfw.KeyLeft))
	io.KeyMap(imgui.KeyRightArrow, int(glfw.KeyRight))
	io.KeyMap(imgui.KeyUpArrow, int(glfw.KeyUp))
	io.KeyMap(imgui.KeyDownArrow, int(glfw.KeyDown))
	io.KeyMap(imgui.KeyPageUp, int(glfw.KeyPageUp))
	io.KeyMap(imgui.KeyPageDown, int(glfw.KeyPageDown))
	io.KeyMap(imgui.KeyHome, int(glfw.KeyHome))
	io.KeyMap(imgui.KeyEnd, int(glfw.KeyEnd))
	io.KeyMap(imgui.KeyInsert, int(glfw.KeyInsert))
	io.KeyMap(imgui.KeyDelete, int(glfw.KeyDelete))
	io.KeyMap(imgui.KeyBackspace, int(glfw.KeyBackspace))
	io.KeyMap(imgui.KeySpace, int(glfw.KeySpace))
	io.KeyMap(imgui.KeyEnter, int(glfw.KeyEnter))
	io.KeyMap(imgui.KeyEscape, int(glfw.KeyEscape))
	io.KeyMap(imgui.KeyA, int(glfw.KeyA))
	io.KeyMap(imgui.KeyC, int(glfw.KeyC))
	io.KeyMap(imgui.KeyV, int(glfw.KeyV))
	io.KeyMap(imgui.KeyX, int(glfw.KeyX))
	io.KeyMap(imgui.KeyY, int(glfw.KeyY))
	io.KeyMap(imgui.KeyZ, int(glfw.KeyZ))

	return &ImGui{
		Context:   imguiContext,
		IO:        io,
		FrameTime: float32(glfw.GetTime()),
		ctx:       win,
		vao:       vao,
		atlas:     atlas,
		shader:    shader,
	}
}

// grow replaces buf with a larger one when size does not fit. Storage is immutable.
func grow(buf libgl.UnboundBuffer, size int, label string) (libgl.UnboundBuffer, bool) {
	if buf != nil && buf.Size() >= size {
		return buf, false
	}
	if buf != nil {
		buf.Delete()
	}
	buf = libgl.NewBuffer()
	buf.AllocateEmpty(size, gl.DYNAMIC_STORAGE_BIT)
	buf.SetDebugLabel(label)
	return buf, true
}

func (gui *ImGui) Draw() {
	defer libgl.PushGroup("Draw ImGui")()

	io := imgui.CurrentIO()

	dispWidth, dispHeight := gui.ctx.GetSize()
	fbWidth, fbHeight := gui.ctx.GetFramebufferSize()
	if dispWidth == 0 || dispHeight == 0 {
		imgui.Render()
		return
	}
	libgl.State.BindFramebuffer(gl.FRAMEBUFFER, 0)
	libgl.State.Viewport(0, 0, fbWidth, fbHeight)
	io.SetDisplaySize(imgui.Vec2{X: float32(dispWidth), Y: float32(dispHeight)})
	ortho := mgl32.Ortho2D(0, float32(dispWidth), float32(dispHeight), 0)

	time := float32(glfw.GetTime())
	io.SetDeltaTime(time - gui.FrameTime)
	gui.FrameTime = time

	gui.vao.Bind()
	gui.shader.Use()
	gui.shader.SetMat4("u_proj_mat", ortho)

	libgl.State.SetEnabled(libgl.Blend, libgl.ScissorTest)
	libgl.State.BlendFunc(libgl.BlendSrcAlpha, libgl.BlendOneMinusSrcAlpha)
	libgl.State.ActiveTexture(0)
	libgl.State.BindSampler(0, 0)

	imgui.Render()
	drawData := imgui.RenderedDrawData()
	drawData.ScaleClipRects(imgui.Vec2{
		X: float32(fbWidth) / float32(dispWidth),
		Y: float32(fbHeight) / float32(dispHeight),
	})

	vertexSize, _, _, _ := imgui.VertexBufferLayout()
	indexSize := imgui.IndexBufferLayout()
	var indexType uint32
	switch indexSize {
	case 1:
		indexType = gl.UNSIGNED_BYTE
	case 2:
		indexType = gl.UNSIGNED_SHORT
	case 4:
		indexType = gl.UNSIGNED_INT
	}

	for _, list := range drawData.CommandLists() {
		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		if vertexBufferSize > 0 {
			var replaced bool
			if gui.vbo, replaced = grow(gui.vbo, vertexBufferSize, "imgui vertices"); replaced {
				gui.vao.BindBuffer(0, gui.vbo, 0, vertexSize)
			}
			gui.vbo.WriteRange(0, vertexBufferSize, vertexBuffer)
		}

		indexBuffer, indexBufferSize := list.IndexBuffer()
		if indexBufferSize > 0 {
			var replaced bool
			if gui.ebo, replaced = grow(gui.ebo, indexBufferSize, "imgui indices"); replaced {
				gui.vao.BindElementBuffer(gui.ebo)
			}
			gui.ebo.WriteRange(0, indexBufferSize, indexBuffer)
		}

		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
				continue
			}
			libgl.State.BindTextureUnit(0, uint32(cmd.TextureID()))
			clipRect := cmd.ClipRect()
			x, y := int(clipRect.X), fbHeight-int(clipRect.W)
			if y <= 0 {
				y = 0
			}
			libgl.State.Scissor(x, y, int(clipRect.Z-clipRect.X), int(clipRect.W-clipRect.Y))
			gl.DrawElementsBaseVertexWithOffset(gl.TRIANGLES, int32(cmd.ElementCount()), indexType, uintptr(cmd.IndexOffset()*indexSize), int32(cmd.VertexOffset()))
		}
	}

	libgl.State.SetEnabled(libgl.DepthTest, libgl.CullFace)
}

func (gui *ImGui) Delete() {
	libutil.Release([]libutil.Deleter{gui.atlas, gui.vbo, gui.ebo, gui.vao})
	gui.Context.Destroy()
}
