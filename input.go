package main

import (
	"point-shadows/libscn"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

type InputManager interface {
	CursorDelta() mgl32.Vec2
	ScrollDelta() mgl32.Vec2
	TimeDelta() float32
	IsKeyDown(key glfw.Key) bool
	IsKeyTap(key glfw.Key) bool
	IsMouseDown(button glfw.MouseButton) bool
	IsMouseTap(button glfw.MouseButton) bool
	Update(context *glfw.Window)
	GetMovement(forward, backward, left, right glfw.Key) []libscn.CameraMovement
	ResetCursor()
}

type input struct {
	curr inputState
	prev inputState
	// scroll is accumulated by the callback between updates
	scroll     mgl32.Vec2
	firstMouse bool
}

type inputState struct {
	time         float32
	cursorPos    mgl32.Vec2
	scroll       mgl32.Vec2
	keys         []bool
	mousebuttons []bool
}

var Input InputManager

func newInput() *input {
	return &input{
		curr: inputState{
			keys:         make([]bool, glfw.KeyLast+1),
			mousebuttons: make([]bool, glfw.MouseButtonLast+1),
		},
		prev: inputState{
			keys:         make([]bool, glfw.KeyLast+1),
			mousebuttons: make([]bool, glfw.MouseButtonLast+1),
		},
		firstMouse: true,
	}
}

func NewInputManager(ctx *glfw.Window) *input {
	i := newInput()
	ctx.SetScrollCallback(func(w *glfw.Window, x, y float64) {
		i.OnScroll(x, y)
	})

	i.Update(ctx)
	// Make sure dTime != 0 to avoid possible errors
	i.prev.time = i.curr.time - 1./60.
	copy(i.prev.keys[:], i.curr.keys[:])
	copy(i.prev.mousebuttons[:], i.curr.mousebuttons[:])

	return i
}

func (i *input) OnScroll(x, y float64) {
	i.scroll = i.scroll.Add(mgl32.Vec2{float32(x), float32(y)})
}

// CursorDelta is the cursor movement since the last update. The y axis points down.
func (i *input) CursorDelta() mgl32.Vec2 {
	return i.curr.cursorPos.Sub(i.prev.cursorPos)
}

func (i *input) CursorPos() mgl32.Vec2 {
	return i.curr.cursorPos
}

func (i *input) ScrollDelta() mgl32.Vec2 {
	return i.curr.scroll
}

func (i *input) TimeDelta() float32 {
	return i.curr.time - i.prev.time
}

func (i *input) IsKeyDown(key glfw.Key) bool {
	return i.curr.keys[key]
}

func (i *input) IsKeyTap(key glfw.Key) bool {
	return i.curr.keys[key] && !i.prev.keys[key]
}

func (i *input) IsMouseDown(button glfw.MouseButton) bool {
	return i.curr.mousebuttons[button]
}

func (i *input) IsMouseTap(button glfw.MouseButton) bool {
	return i.curr.mousebuttons[button] && !i.prev.mousebuttons[button]
}

func (i *input) GetMovement(forward, backward, left, right glfw.Key) []libscn.CameraMovement {
	var moves []libscn.CameraMovement
	if forward != 0 && i.IsKeyDown(forward) {
		moves = append(moves, libscn.Forward)
	}
	if backward != 0 && i.IsKeyDown(backward) {
		moves = append(moves, libscn.Backward)
	}
	if left != 0 && i.IsKeyDown(left) {
		moves = append(moves, libscn.Left)
	}
	if right != 0 && i.IsKeyDown(right) {
		moves = append(moves, libscn.Right)
	}
	return moves
}

// ResetCursor swallows the cursor jump of the next update, e.g. after the cursor was captured again.
func (i *input) ResetCursor() {
	i.firstMouse = true
}

func (i *input) Update(ctx *glfw.Window) {
	cursorX, cursorY := ctx.GetCursorPos()
	keys := i.prev.keys
	mousebuttons := i.prev.mousebuttons

	for key := 32; key <= int(glfw.KeyLast); key++ {
		keys[key] = ctx.GetKey(glfw.Key(key)) != glfw.Release
	}

	for button := 0; button <= int(glfw.MouseButtonLast); button++ {
		mousebuttons[button] = ctx.GetMouseButton(glfw.MouseButton(button)) != glfw.Release
	}

	i.advance(inputState{
		time:         float32(glfw.GetTime()),
		cursorPos:    mgl32.Vec2{float32(cursorX), float32(cursorY)},
		keys:         keys,
		mousebuttons: mousebuttons,
	})
}

// advance makes next the current state. The key and button slices of next must be the
// ones of the previous state, they are recycled.
func (i *input) advance(next inputState) {
	i.prev = i.curr
	next.scroll = i.scroll
	i.scroll = mgl32.Vec2{}
	if i.firstMouse {
		i.prev.cursorPos = next.cursorPos
		i.firstMouse = false
	}
	i.curr = next
}
