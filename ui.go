package main

import (
	"fmt"
	"log"

	"point-shadows/libscn"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	i "github.com/inkyblackness/imgui-go/v4"
)

type uiscene struct {
	initialized   bool
	cursorVisible bool

	frameTime float32
	diskScale float32
	farPlane  float32
}

var ui = &uiscene{}

// smoothFrameTime is an exponential moving average of the frame time in seconds.
func smoothFrameTime(avg, dt float32) float32 {
	if avg == 0 {
		return dt
	}
	return avg + (dt-avg)*0.05
}

func DrawUi(s *Scene) {
	i.NewFrame()
	if Input.IsKeyTap(glfw.KeyLeftAlt) {
		ui.cursorVisible = !ui.cursorVisible
		if ui.cursorVisible {
			glfw.GetCurrentContext().SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			i.CurrentIO().SetConfigFlags(i.ConfigFlagsNone)
		} else {
			glfw.GetCurrentContext().SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
			i.CurrentIO().SetConfigFlags(i.ConfigFlagsNoMouse)
			Input.ResetCursor()
		}
	}
	if !ui.initialized {
		ui.diskScale = s.cfg.Shadow.DiskScale
		ui.farPlane = s.caster.Far
		ui.initialized = true
	}
	ui.frameTime = smoothFrameTime(ui.frameTime, Input.TimeDelta())

	i.Begin("Point Shadows")
	i.Text("Press Left Alt to release the cursor.")
	i.Text(fmt.Sprintf("Frame time: %.2f ms (%.0f fps)", ui.frameTime*1000, 1/ui.frameTime))
	if i.Button("Dump Depth Cubemap (Ctrl+F11)") {
		s.DumpShadows()
	}
	if Input.IsKeyDown(glfw.KeyLeftControl) && Input.IsKeyTap(glfw.KeyF11) {
		s.DumpShadows()
	}
	i.SameLine()
	if i.Button("Reload Shaders (F5)") || Input.IsKeyTap(glfw.KeyF5) {
		s.ReloadAll()
	}

	if i.CollapsingHeaderV("Shadows", i.TreeNodeFlagsDefaultOpen) {
		i.PushID("shadows")
		i.Indent()
		i.Checkbox("Enable (Space)", &s.shadows)
		if i.SliderFloat("Far Plane", &ui.farPlane, s.caster.Near+1, 100) {
			s.SetFarPlane(ui.farPlane)
		}
		if i.SliderFloatV("Disk Scale", &ui.diskScale, 5, 100, "%.1f", i.SliderFlagsNone) {
			if err := s.SetDiskScale(ui.diskScale); err != nil {
				log.Printf("Could not apply disk scale: %v\n", err)
			}
		}
		i.Text(fmt.Sprintf("Resolution: %d x %d x 6", s.caster.Resolution, s.caster.Resolution))
		i.Unindent()
		i.PopID()
	}
	if i.CollapsingHeaderV("Light", i.TreeNodeFlagsDefaultOpen) {
		i.PushID("light")
		i.Indent()
		i.Checkbox("Paused", &s.cfg.Light.Paused)
		i.SliderFloat("Amplitude", &s.cfg.Light.Amplitude, 0, 4.5)
		i.SliderFloat("Rate", &s.cfg.Light.Rate, 0, 4)
		i.Text(fmt.Sprintf("Position: %.2f %.2f %.2f", s.lightPos[0], s.lightPos[1], s.lightPos[2]))
		i.Unindent()
		i.PopID()
	}
	if i.CollapsingHeaderV("Camera", 0) {
		i.PushID("camera")
		i.Indent()
		cam := s.camera
		i.Text(fmt.Sprintf("Position: %.2f %.2f %.2f", cam.Position[0], cam.Position[1], cam.Position[2]))
		yaw, pitch := cam.Yaw, cam.Pitch
		changed := i.SliderFloat("Yaw", &yaw, -360, 360)
		changed = i.SliderFloat("Pitch", &pitch, -89, 89) || changed
		if changed {
			cam.SetOrientation(yaw, pitch)
		}
		i.SliderFloat("Zoom", &cam.Zoom, 1, 45)
		if i.Button("Reset") {
			cam.Position = mgl32.Vec3(s.cfg.Camera.Position)
			cam.Zoom = libscn.DefaultZoom
			cam.SetOrientation(s.cfg.Camera.Yaw, s.cfg.Camera.Pitch)
		}
		i.Unindent()
		i.PopID()
	}
	i.End()
}
