package libscn

import (
	"point-shadows/libutil"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraMovement int

const (
	Forward = CameraMovement(iota)
	Backward
	Left
	Right
)

const (
	DefaultYaw         = -90
	DefaultPitch       = 0
	DefaultSpeed       = 2.5
	DefaultSensitivity = 0.1
	DefaultZoom        = 45
)

// Camera is a fly camera driven by euler angles in degrees.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3
	WorldUp  mgl32.Vec3

	Yaw   float32
	Pitch float32

	MovementSpeed    float32
	MouseSensitivity float32
	// vertical field of view in degrees
	Zoom float32
}

func NewCamera(position, up mgl32.Vec3, yaw, pitch float32) *Camera {
	cam := &Camera{
		Position:         position,
		WorldUp:          up,
		Yaw:              yaw,
		Pitch:            pitch,
		Front:            mgl32.Vec3{0, 0, -1},
		MovementSpeed:    DefaultSpeed,
		MouseSensitivity: DefaultSensitivity,
		Zoom:             DefaultZoom,
	}
	cam.updateVectors()
	return cam
}

func DefaultCamera(position mgl32.Vec3) *Camera {
	return NewCamera(position, mgl32.Vec3{0, 1, 0}, DefaultYaw, DefaultPitch)
}

func (cam *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(cam.Position, cam.Position.Add(cam.Front), cam.Up)
}

func (cam *Camera) ProjectionMatrix(aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(cam.Zoom*libutil.Deg2Rad, aspect, near, far)
}

func (cam *Camera) ProcessKeyboard(direction CameraMovement, dt float32) {
	velocity := cam.MovementSpeed * dt
	switch direction {
	case Forward:
		cam.Position = cam.Position.Add(cam.Front.Mul(velocity))
	case Backward:
		cam.Position = cam.Position.Sub(cam.Front.Mul(velocity))
	case Left:
		cam.Position = cam.Position.Sub(cam.Right.Mul(velocity))
	case Right:
		cam.Position = cam.Position.Add(cam.Right.Mul(velocity))
	}
}

func (cam *Camera) ProcessMouseMovement(dx, dy float32, constrainPitch bool) {
	cam.Yaw += dx * cam.MouseSensitivity
	cam.Pitch += dy * cam.MouseSensitivity

	if constrainPitch {
		cam.Pitch = libutil.Clamp(cam.Pitch, -89, 89)
	}

	cam.updateVectors()
}

func (cam *Camera) ProcessMouseScroll(dy float32) {
	cam.Zoom = libutil.Clamp(cam.Zoom-dy, 1, 45)
}

// SetOrientation sets yaw and pitch directly, e.g. from the overlay.
func (cam *Camera) SetOrientation(yaw, pitch float32) {
	cam.Yaw = yaw
	cam.Pitch = libutil.Clamp(pitch, -89, 89)
	cam.updateVectors()
}

func (cam *Camera) updateVectors() {
	yaw, pitch := cam.Yaw*libutil.Deg2Rad, cam.Pitch*libutil.Deg2Rad
	front := mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}
	cam.Front = front.Normalize()
	cam.Right = cam.Front.Cross(cam.WorldUp).Normalize()
	cam.Up = cam.Right.Cross(cam.Front).Normalize()
}
