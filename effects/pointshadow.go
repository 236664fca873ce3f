package effects

import (
	"fmt"
	"os"
	"path/filepath"

	"point-shadows/libgl"
	"point-shadows/libio"
	"point-shadows/libutil"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// CubeFaces lists the look direction and up vector of every cube map face in GL layer order.
var CubeFaces = [6]struct {
	Dir, Up mgl32.Vec3
}{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

// ShadowTransforms returns the light space view projection of every cube map face.
func ShadowTransforms(light mgl32.Vec3, near, far float32) [6]mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, near, far)
	var transforms [6]mgl32.Mat4
	for i, face := range CubeFaces {
		transforms[i] = proj.Mul4(mgl32.LookAtV(light, light.Add(face.Dir), face.Up))
	}
	return transforms
}

// PointShadowCaster renders omnidirectional shadows of a point light into a depth cube map.
// The depth shader writes the light distance divided by Far.
type PointShadowCaster struct {
	Resolution int
	Near, Far  float32
	Light      mgl32.Vec3

	cubemap     libgl.UnboundTexture
	framebuffer libgl.UnboundFramebuffer
}

func NewPointShadowCaster(resolution int, near, far float32) (caster *PointShadowCaster, err error) {
	var cleanup []libutil.Deleter
	defer func() {
		if err != nil {
			libutil.Release(cleanup)
		}
	}()

	cubemap := libgl.NewTexture(gl.TEXTURE_CUBE_MAP)
	cleanup = append(cleanup, cubemap)
	cubemap.Allocate(1, gl.DEPTH_COMPONENT32F, resolution, resolution, 0)
	cubemap.FilterMode(gl.NEAREST, gl.NEAREST)
	cubemap.WrapMode(gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE, gl.CLAMP_TO_EDGE)
	cubemap.SetDebugLabel("point shadow depth cube")

	fbo := libgl.NewFramebuffer()
	cleanup = append(cleanup, fbo)
	fbo.AttachTexture(gl.DEPTH_ATTACHMENT, cubemap)
	fbo.DisableColor()
	fbo.SetDebugLabel("point shadow")

	if err = fbo.Check(gl.FRAMEBUFFER); err != nil {
		return nil, fmt.Errorf("point shadow framebuffer incomplete: %w", err)
	}

	return &PointShadowCaster{
		Resolution:  resolution,
		Near:        near,
		Far:         far,
		cubemap:     cubemap,
		framebuffer: fbo,
	}, nil
}

// Render draws the depth of the scene around light into the cube map.
// The viewport and framebuffer are left for the caller to restore.
func (caster *PointShadowCaster) Render(shader *libgl.Shader, light mgl32.Vec3, drawScene func(*libgl.Shader)) {
	defer libgl.PushGroup("Point Shadow")()

	caster.Light = light
	libgl.State.Viewport(0, 0, caster.Resolution, caster.Resolution)
	caster.framebuffer.Bind(gl.FRAMEBUFFER)
	libgl.State.DepthMask(true)
	gl.Clear(gl.DEPTH_BUFFER_BIT)

	shader.Use()
	for i, transform := range ShadowTransforms(light, caster.Near, caster.Far) {
		shader.SetUniformIndexed("shadowMatrices", i, transform)
	}
	shader.SetFloat("far_plane", caster.Far)
	shader.SetVec3("lightPos", light)

	drawScene(shader)

	libgl.State.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (caster *PointShadowCaster) Bind(unit int) {
	caster.cubemap.Bind(unit)
}

func (caster *PointShadowCaster) Cubemap() libgl.UnboundTexture {
	return caster.cubemap
}

// ReadBack copies the six faces of the last rendered cube map to memory.
func (caster *PointShadowCaster) ReadBack() *libio.DepthCube {
	light := [3]float32{caster.Light[0], caster.Light[1], caster.Light[2]}
	cube := libio.NewDepthCube(caster.Resolution, caster.Near, caster.Far, light)
	for i := range cube.Faces {
		caster.cubemap.ReadFace(0, i, gl.DEPTH_COMPONENT, cube.Faces[i])
	}
	return cube
}

// Dump writes the cube map to a .dcube file.
func (caster *PointShadowCaster) Dump(filename string) error {
	cube := caster.ReadBack()

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("could not create dump directory for %q: %w", filename, err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create depth cube dump %q: %w", filename, err)
	}
	defer file.Close()

	if err = libio.EncodeDepthCube(file, cube, libio.CompressionFixedPoint16Lz4); err != nil {
		return fmt.Errorf("could not write depth cube dump %q: %w", filename, err)
	}
	return file.Close()
}

func (caster *PointShadowCaster) Release() {
	libutil.Release([]libutil.Deleter{caster.cubemap, caster.framebuffer})
	caster.cubemap = nil
	caster.framebuffer = nil
}
