package main

import (
	"testing"

	"point-shadows/libscn"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// step feeds a state into the manager the way Update does, recycling the previous key slices.
func step(in *input, time float32, cursor mgl32.Vec2, down ...glfw.Key) {
	keys := in.prev.keys
	for k := range keys {
		keys[k] = false
	}
	for _, k := range down {
		keys[k] = true
	}
	in.advance(inputState{
		time:         time,
		cursorPos:    cursor,
		keys:         keys,
		mousebuttons: in.prev.mousebuttons,
	})
}

func TestKeyTapFiresOncePerPress(t *testing.T) {
	in := newInput()

	step(in, 0.1, mgl32.Vec2{}, glfw.KeySpace)
	assert.True(t, in.IsKeyTap(glfw.KeySpace))
	assert.True(t, in.IsKeyDown(glfw.KeySpace))

	step(in, 0.2, mgl32.Vec2{}, glfw.KeySpace)
	assert.False(t, in.IsKeyTap(glfw.KeySpace))
	assert.True(t, in.IsKeyDown(glfw.KeySpace))

	step(in, 0.3, mgl32.Vec2{})
	assert.False(t, in.IsKeyTap(glfw.KeySpace))
	assert.False(t, in.IsKeyDown(glfw.KeySpace))

	step(in, 0.4, mgl32.Vec2{}, glfw.KeySpace)
	assert.True(t, in.IsKeyTap(glfw.KeySpace))
}

func TestFirstCursorUpdateHasNoDelta(t *testing.T) {
	in := newInput()

	step(in, 0.1, mgl32.Vec2{640, 480})
	assert.Equal(t, mgl32.Vec2{}, in.CursorDelta())

	step(in, 0.2, mgl32.Vec2{650, 470})
	assert.Equal(t, mgl32.Vec2{10, -10}, in.CursorDelta())

	in.ResetCursor()
	step(in, 0.3, mgl32.Vec2{100, 100})
	assert.Equal(t, mgl32.Vec2{}, in.CursorDelta())
	assert.InDelta(t, 0.1, in.TimeDelta(), 1e-6)
}

func TestScrollIsConsumedPerUpdate(t *testing.T) {
	in := newInput()

	in.OnScroll(0, 1)
	in.OnScroll(0, 2)
	step(in, 0.1, mgl32.Vec2{})
	assert.Equal(t, mgl32.Vec2{0, 3}, in.ScrollDelta())

	step(in, 0.2, mgl32.Vec2{})
	assert.Equal(t, mgl32.Vec2{}, in.ScrollDelta())
}

func TestGetMovement(t *testing.T) {
	in := newInput()

	step(in, 0.1, mgl32.Vec2{}, glfw.KeyW, glfw.KeyD)
	assert.Equal(t, []libscn.CameraMovement{libscn.Forward, libscn.Right}, in.GetMovement(glfw.KeyW, glfw.KeyS, glfw.KeyA, glfw.KeyD))

	step(in, 0.2, mgl32.Vec2{})
	assert.Empty(t, in.GetMovement(glfw.KeyW, glfw.KeyS, glfw.KeyA, glfw.KeyD))
}

func TestSmoothFrameTime(t *testing.T) {
	assert.Equal(t, float32(0.016), smoothFrameTime(0, 0.016))
	assert.InDelta(t, 0.0165, smoothFrameTime(0.016, 0.026), 1e-6)
}
