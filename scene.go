package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"point-shadows/effects"
	"point-shadows/libcfg"
	"point-shadows/libfs"
	"point-shadows/libgl"
	"point-shadows/libscn"
	"point-shadows/libutil"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	cameraNear = 0.1
	cameraFar  = 100.0
	roomScale  = 5.0
)

type cubePlacement struct {
	Translate mgl32.Vec3
	Scale     float32
}

var cubePlacements = []cubePlacement{
	{mgl32.Vec3{4, -3.5, 0}, 0.5},
	{mgl32.Vec3{2, 3, 1}, 0.75},
	{mgl32.Vec3{-3, -1, 0}, 0.5},
	{mgl32.Vec3{-1.5, 1, 1.5}, 0.5},
	{mgl32.Vec3{-1.5, 2, -3}, 0.75},
}

// CubeTransforms returns the model matrices of the cubes inside the room.
func CubeTransforms() []mgl32.Mat4 {
	transforms := make([]mgl32.Mat4, len(cubePlacements))
	for i, c := range cubePlacements {
		transforms[i] = mgl32.Translate3D(c.Translate[0], c.Translate[1], c.Translate[2]).
			Mul4(mgl32.Scale3D(c.Scale, c.Scale, c.Scale))
	}
	return transforms
}

func RoomTransform() mgl32.Mat4 {
	return mgl32.Scale3D(roomScale, roomScale, roomScale)
}

// ModelTransform places a model: scale, then rotate around x, y and z (degrees), then translate.
func ModelTransform(m libcfg.Model) mgl32.Mat4 {
	rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(m.Rotate[2])).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(m.Rotate[1]))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(m.Rotate[0])))
	return mgl32.Translate3D(m.Translate[0], m.Translate[1], m.Translate[2]).
		Mul4(rot).
		Mul4(mgl32.Scale3D(m.Scale, m.Scale, m.Scale))
}

// LightPosition moves the light along z around its start position.
func LightPosition(light libcfg.Light, t float32) mgl32.Vec3 {
	pos := mgl32.Vec3(light.Start)
	pos[2] += math32.Sin(t*light.Rate) * light.Amplitude
	return pos
}

func DumpFilename(t time.Time) string {
	return fmt.Sprintf("dump/point_shadow_%s.dcube", t.Format("20060102_150405"))
}

// FormatFloatDefine renders a float as a glsl literal, always with a decimal point.
func FormatFloatDefine(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	for _, c := range s {
		if c == '.' {
			return s
		}
	}
	return s + ".0"
}

type placedModel struct {
	model     *libscn.Model
	transform mgl32.Mat4
}

type Scene struct {
	cfg     *libcfg.Scene
	pack    *libscn.DirPack
	watcher *libscn.Watcher

	camera  *libscn.Camera
	lit     *libgl.Shader
	depth   *libgl.Shader
	shaders map[string]*libgl.Shader
	diffuse libgl.UnboundTexture
	caster  *effects.PointShadowCaster
	models  []placedModel

	shadows   bool
	lightPos  mgl32.Vec3
	lightTime float32
}

func NewScene(cfg *libcfg.Scene, pack *libscn.DirPack) (scene *Scene, err error) {
	var cleanup []libutil.Deleter
	defer func() {
		if err != nil {
			libutil.Release(cleanup)
		}
	}()

	lit, err := pack.LoadShader("point_shadows")
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, lit)
	if err = compileDiskScale(lit, cfg.Shadow.DiskScale); err != nil {
		return nil, err
	}
	depth, err := pack.LoadShader("point_shadows_depth")
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, depth)

	diffuse, err := libscn.LoadTexture(libfs.GetPath(cfg.Assets.Texture))
	if err != nil {
		log.Printf("Using fallback texture %q\n", cfg.Assets.Fallback)
		diffuse, err = pack.LoadTexture(cfg.Assets.Fallback)
		if err != nil {
			return nil, err
		}
	}
	cleanup = append(cleanup, diffuse)

	caster, err := effects.NewPointShadowCaster(cfg.Shadow.Resolution, cfg.Shadow.Near, cfg.Shadow.Far)
	if err != nil {
		return nil, err
	}

	scene = &Scene{
		cfg:     cfg,
		pack:    pack,
		camera:  libscn.NewCamera(mgl32.Vec3(cfg.Camera.Position), mgl32.Vec3{0, 1, 0}, cfg.Camera.Yaw, cfg.Camera.Pitch),
		lit:     lit,
		depth:   depth,
		shaders: map[string]*libgl.Shader{},
		diffuse: diffuse,
		caster:  caster,
		shadows: cfg.Shadow.Enabled,
	}
	scene.Track(lit)
	scene.Track(depth)

	for _, m := range cfg.Models {
		model, err := libscn.LoadModel(m.Path, m.Gamma)
		if err != nil {
			log.Printf("Skipping model %q: %v\n", m.Path, err)
			continue
		}
		scene.models = append(scene.models, placedModel{model: model, transform: ModelTransform(m)})
	}

	scene.setupLit()

	libgl.State.Enable(libgl.DepthTest)
	libgl.State.Enable(libgl.CullFace)
	libgl.State.ClearColor(0.1, 0.1, 0.1, 1.0)

	return scene, nil
}

// Track registers a shader for reloading.
func (s *Scene) Track(shader *libgl.Shader) {
	s.shaders[shader.Name()] = shader
}

func (s *Scene) setupLit() {
	s.lit.Use()
	s.lit.SetInt("diffuseTexture", 0)
	s.lit.SetInt("depthMap", 1)
}

// compileDiskScale recompiles the lit shader when the PCF disk scale differs from the compiled one.
func compileDiskScale(lit *libgl.Shader, scale float32) error {
	value := FormatFloatDefine(scale)
	if lit.Defines()["DISK_SCALE"] == value {
		return nil
	}
	prev := lit.Overrides()
	lit.SetOverrides(diskScaleOverrides(prev, value))
	if err := lit.Compile(); err != nil {
		lit.SetOverrides(prev)
		return err
	}
	return nil
}

func diskScaleOverrides(overrides map[string]string, value string) map[string]string {
	return libgl.MergeDefines(overrides, map[string]string{"DISK_SCALE": value})
}

func (s *Scene) SetDiskScale(scale float32) error {
	if err := compileDiskScale(s.lit, scale); err != nil {
		return err
	}
	s.cfg.Shadow.DiskScale = scale
	s.setupLit()
	return nil
}

// Reload recompiles the shaders whose files changed on disk.
func (s *Scene) Reload() {
	if s.watcher == nil {
		return
	}
	s.reload(s.watcher.Drain())
}

// ReloadAll recompiles every tracked shader.
func (s *Scene) ReloadAll() {
	names := make([]string, 0, len(s.shaders))
	for name := range s.shaders {
		names = append(names, name)
	}
	s.reload(names)
}

func (s *Scene) reload(names []string) {
	for _, name := range names {
		shader, ok := s.shaders[name]
		if !ok {
			continue
		}
		if err := s.pack.ReloadShader(shader); err != nil {
			log.Printf("Could not reload %v shader: %v\n", name, err)
			continue
		}
		log.Printf("Reloaded %v shader\n", name)
		libgl.DebugNotice(fmt.Sprintf("reloaded %v shader", name))
		if shader == s.lit {
			s.setupLit()
		}
	}
}

func (s *Scene) ProcessInput(ctx *glfw.Window) {
	if Input.IsKeyDown(glfw.KeyEscape) {
		ctx.SetShouldClose(true)
	}

	dt := Input.TimeDelta()
	if ui.cursorVisible {
		return
	}
	for _, move := range Input.GetMovement(glfw.KeyW, glfw.KeyS, glfw.KeyA, glfw.KeyD) {
		s.camera.ProcessKeyboard(move, dt)
	}
	if Input.IsKeyTap(glfw.KeySpace) {
		s.shadows = !s.shadows
	}
	delta := Input.CursorDelta()
	if delta[0] != 0 || delta[1] != 0 {
		s.camera.ProcessMouseMovement(delta[0], -delta[1], true)
	}
	if scroll := Input.ScrollDelta(); scroll[1] != 0 {
		s.camera.ProcessMouseScroll(scroll[1])
	}
}

func (s *Scene) Draw() {
	if !s.cfg.Light.Paused {
		s.lightTime += Input.TimeDelta()
	}
	s.lightPos = LightPosition(s.cfg.Light, s.lightTime)

	libgl.State.SetEnabled(libgl.DepthTest, libgl.CullFace)
	libgl.State.DepthMask(true)
	libgl.State.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	s.caster.Render(s.depth, s.lightPos, s.renderScene)

	if ViewportWidth == 0 || ViewportHeight == 0 {
		return
	}

	pop := libgl.PushGroup("Lit Pass")
	libgl.State.Viewport(0, 0, ViewportWidth, ViewportHeight)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	s.lit.Use()
	aspect := float32(ViewportWidth) / float32(ViewportHeight)
	s.lit.SetMat4("projection", s.camera.ProjectionMatrix(aspect, cameraNear, cameraFar))
	s.lit.SetMat4("view", s.camera.ViewMatrix())
	s.lit.SetVec3("lightPos", s.lightPos)
	s.lit.SetVec3("viewPos", s.camera.Position)
	s.lit.SetBool("shadows", s.shadows)
	s.lit.SetFloat("far_plane", s.caster.Far)
	s.diffuse.Bind(0)
	s.caster.Bind(1)
	s.renderScene(s.lit)
	pop()
}

func (s *Scene) renderScene(shader *libgl.Shader) {
	lit := shader == s.lit
	shader.SetMat4("model", RoomTransform())
	// the camera is inside the room, so its back faces are the visible ones
	libgl.State.CullFront()
	if lit {
		shader.SetInt("reverse_normals", 1)
	}
	libutil.DrawCube()
	if lit {
		shader.SetInt("reverse_normals", 0)
	}
	libgl.State.CullBack()

	for _, model := range CubeTransforms() {
		shader.SetMat4("model", model)
		libutil.DrawCube()
	}

	for _, placed := range s.models {
		shader.SetMat4("model", placed.transform)
		if lit {
			placed.model.DrawDiffuse(0, s.diffuse)
		} else {
			placed.model.DrawGeometry()
		}
	}
	if len(s.models) > 0 && lit {
		s.diffuse.Bind(0)
	}
}

// DumpShadows writes the current depth cube map to the dump directory.
func (s *Scene) DumpShadows() {
	filename := DumpFilename(time.Now())
	if err := s.caster.Dump(filename); err != nil {
		log.Printf("Could not dump depth cube map: %v\n", err)
		return
	}
	log.Printf("Dumped depth cube map to %v\n", filename)
	libgl.DebugNotice("dumped depth cube map to " + filename)
}

// SetFarPlane moves the far plane of the shadow projection.
func (s *Scene) SetFarPlane(far float32) {
	s.caster.Far = far
	s.cfg.Shadow.Far = far
}

func (s *Scene) Release() {
	for _, placed := range s.models {
		placed.model.Delete()
	}
	s.models = nil
	if s.caster != nil {
		s.caster.Release()
	}
	libutil.Release([]libutil.Deleter{s.lit, s.depth, s.diffuse})
}
