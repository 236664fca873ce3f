package libscn_test

import (
	"testing"

	"point-shadows/libscn"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestDefaultCameraLooksDownNegativeZ(t *testing.T) {
	cam := libscn.DefaultCamera(mgl32.Vec3{0, 0, 3})

	assertVec3InDelta(t, mgl32.Vec3{0, 0, -1}, cam.Front, 1e-6)
	assertVec3InDelta(t, mgl32.Vec3{1, 0, 0}, cam.Right, 1e-6)
	assertVec3InDelta(t, mgl32.Vec3{0, 1, 0}, cam.Up, 1e-6)
	assert.Equal(t, float32(45), cam.Zoom)
	assert.Equal(t, float32(2.5), cam.MovementSpeed)
	assert.Equal(t, float32(0.1), cam.MouseSensitivity)
}

func TestProcessKeyboard(t *testing.T) {
	cam := libscn.DefaultCamera(mgl32.Vec3{0, 0, 3})

	cam.ProcessKeyboard(libscn.Forward, 0.4)
	assertVec3InDelta(t, mgl32.Vec3{0, 0, 2}, cam.Position, 1e-5)

	cam.ProcessKeyboard(libscn.Right, 0.4)
	assertVec3InDelta(t, mgl32.Vec3{1, 0, 2}, cam.Position, 1e-5)

	cam.ProcessKeyboard(libscn.Backward, 0.4)
	cam.ProcessKeyboard(libscn.Left, 0.4)
	assertVec3InDelta(t, mgl32.Vec3{0, 0, 3}, cam.Position, 1e-5)
}

func TestProcessMouseMovementClampsPitch(t *testing.T) {
	cam := libscn.DefaultCamera(mgl32.Vec3{})

	cam.ProcessMouseMovement(0, 5000, true)
	assert.Equal(t, float32(89), cam.Pitch)

	cam.ProcessMouseMovement(0, -5000, true)
	assert.Equal(t, float32(-89), cam.Pitch)

	cam.ProcessMouseMovement(0, -5000, false)
	assert.InDelta(t, -589, cam.Pitch, 1e-3)
}

func TestProcessMouseMovementTurnsRight(t *testing.T) {
	cam := libscn.DefaultCamera(mgl32.Vec3{})

	cam.ProcessMouseMovement(900, 0, true)
	assert.InDelta(t, 0, cam.Yaw, 1e-4)
	assertVec3InDelta(t, mgl32.Vec3{1, 0, 0}, cam.Front, 1e-5)
}

func TestProcessMouseScrollClampsZoom(t *testing.T) {
	cam := libscn.DefaultCamera(mgl32.Vec3{})

	cam.ProcessMouseScroll(10)
	assert.Equal(t, float32(35), cam.Zoom)
	cam.ProcessMouseScroll(100)
	assert.Equal(t, float32(1), cam.Zoom)
	cam.ProcessMouseScroll(-100)
	assert.Equal(t, float32(45), cam.Zoom)
}

func TestViewMatrixMovesWorldOpposite(t *testing.T) {
	cam := libscn.DefaultCamera(mgl32.Vec3{0, 0, 3})

	p := cam.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertVec3InDelta(t, mgl32.Vec3{0, 0, -3}, p.Vec3(), 1e-5)
}

func TestProjectionMatrixUsesZoom(t *testing.T) {
	cam := libscn.DefaultCamera(mgl32.Vec3{})
	cam.Zoom = 90

	proj := cam.ProjectionMatrix(1, 0.1, 100)
	assert.InDelta(t, 1, proj.At(0, 0), 1e-5)
	assert.InDelta(t, 1, proj.At(1, 1), 1e-5)
}

func assertVec3InDelta(t *testing.T, expected, actual mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], delta, "component %d of %v", i, actual)
	}
}
