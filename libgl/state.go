package libgl

import (
	"strings"

	"github.com/go-gl/gl/v4.5-core/gl"
)

type Capability uint32

const (
	DepthTest         Capability = gl.DEPTH_TEST
	Blend             Capability = gl.BLEND
	ScissorTest       Capability = gl.SCISSOR_TEST
	CullFace          Capability = gl.CULL_FACE
	PolygonOffsetFill Capability = gl.POLYGON_OFFSET_FILL
)

type BlendFactor uint32

const (
	BlendZero             BlendFactor = gl.ZERO
	BlendOne              BlendFactor = gl.ONE
	BlendSrcAlpha         BlendFactor = gl.SRC_ALPHA
	BlendOneMinusSrcAlpha BlendFactor = gl.ONE_MINUS_SRC_ALPHA
)

type DepthFunc uint32

const (
	DepthFuncLess   DepthFunc = gl.LESS
	DepthFuncLEqual DepthFunc = gl.LEQUAL
	DepthFuncAlways DepthFunc = gl.ALWAYS
)

// StateManager caches the bits of global GL state the renderer touches,
// so redundant binds and toggles never reach the driver.
type StateManager struct {
	Caps                             map[Capability]bool
	TextureUnits, SamplerUnits       []uint32
	DrawFramebuffer, ReadFramebuffer uint32
	ArrayBuffer, ElementArrayBuffer  uint32
	Program, VertexArray             uint32
	ActiveTextureUnit                int
	ViewportRect, ScissorRect        [4]int
	BlendFactorSrc, BlendFactorDst   BlendFactor
	DepthFuncFn                      DepthFunc
	DepthWriteMask                   bool
	CullFaceMask                     uint32
	ClearColorRGBA                   [4]float32
	PolygonOffsets                   [2]float32
}

var State *StateManager

func NewStateManager() *StateManager {
	return &StateManager{
		Caps:           map[Capability]bool{},
		TextureUnits:   make([]uint32, 32),
		SamplerUnits:   make([]uint32, 32),
		DepthFuncFn:    DepthFuncLess,
		DepthWriteMask: true,
		CullFaceMask:   gl.BACK,
	}
}

func (s *StateManager) Enable(cap Capability) {
	if s.Caps[cap] {
		return
	}
	gl.Enable(uint32(cap))
	s.Caps[cap] = true
}

func (s *StateManager) Disable(cap Capability) {
	if v, ok := s.Caps[cap]; ok && !v {
		return
	}
	gl.Disable(uint32(cap))
	s.Caps[cap] = false
}

// SetEnabled enables exactly the given capabilities and disables every other known one.
func (s *StateManager) SetEnabled(caps ...Capability) {
	want := map[Capability]bool{}
	for _, c := range caps {
		want[c] = true
	}
	for c, v := range s.Caps {
		if v && !want[c] {
			s.Disable(c)
		}
	}
	for c := range want {
		s.Enable(c)
	}
}

func (s *StateManager) CullBack() {
	if s.CullFaceMask == gl.BACK {
		return
	}
	gl.CullFace(gl.BACK)
	s.CullFaceMask = gl.BACK
}

func (s *StateManager) CullFront() {
	if s.CullFaceMask == gl.FRONT {
		return
	}
	gl.CullFace(gl.FRONT)
	s.CullFaceMask = gl.FRONT
}

func (s *StateManager) BlendFunc(sfactor, dfactor BlendFactor) {
	if s.BlendFactorSrc == sfactor && s.BlendFactorDst == dfactor {
		return
	}
	gl.BlendFunc(uint32(sfactor), uint32(dfactor))
	s.BlendFactorSrc = sfactor
	s.BlendFactorDst = dfactor
}

func (s *StateManager) DepthFunc(fn DepthFunc) {
	if s.DepthFuncFn == fn {
		return
	}
	gl.DepthFunc(uint32(fn))
	s.DepthFuncFn = fn
}

func (s *StateManager) DepthMask(flag bool) {
	if s.DepthWriteMask == flag {
		return
	}
	gl.DepthMask(flag)
	s.DepthWriteMask = flag
}

func (s *StateManager) PolygonOffset(factor, units float32) {
	if s.PolygonOffsets[0] == factor && s.PolygonOffsets[1] == units {
		return
	}
	gl.PolygonOffset(factor, units)
	s.PolygonOffsets = [2]float32{factor, units}
}

func (s *StateManager) BindTextureUnit(unit int, texture uint32) {
	if s.TextureUnits[unit] == texture {
		return
	}
	if Env.UseIntelTextureBindingFix {
		s.ActiveTexture(unit)
		if texture != 0 {
			gl.BindTexture(Env.IntelTextureBindingTargets[texture], texture)
		}
		s.TextureUnits[unit] = texture
		return
	}
	gl.BindTextureUnit(uint32(unit), texture)
	s.TextureUnits[unit] = texture
}

// BindTexture binds to the active unit with the classic non-DSA call.
func (s *StateManager) BindTexture(target uint32, texture uint32) {
	if s.TextureUnits[s.ActiveTextureUnit] == texture {
		return
	}
	gl.BindTexture(target, texture)
	s.TextureUnits[s.ActiveTextureUnit] = texture
}

func (s *StateManager) ActiveTexture(unit int) {
	if s.ActiveTextureUnit == unit {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	s.ActiveTextureUnit = unit
}

func (s *StateManager) BindSampler(unit int, sampler uint32) {
	if s.SamplerUnits[unit] == sampler {
		return
	}
	gl.BindSampler(uint32(unit), sampler)
	s.SamplerUnits[unit] = sampler
}

func (s *StateManager) BindBuffer(target uint32, buffer uint32) {
	switch target {
	case gl.ARRAY_BUFFER:
		if s.ArrayBuffer == buffer {
			return
		}
		s.ArrayBuffer = buffer
	case gl.ELEMENT_ARRAY_BUFFER:
		if s.ElementArrayBuffer == buffer {
			return
		}
		s.ElementArrayBuffer = buffer
	}
	gl.BindBuffer(target, buffer)
}

func (s *StateManager) BindFramebuffer(target, framebuffer uint32) {
	switch target {
	case gl.DRAW_FRAMEBUFFER:
		s.BindDrawFramebuffer(framebuffer)
	case gl.READ_FRAMEBUFFER:
		s.BindReadFramebuffer(framebuffer)
	default:
		if framebuffer == s.DrawFramebuffer && framebuffer == s.ReadFramebuffer {
			return
		}
		gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
		s.DrawFramebuffer = framebuffer
		s.ReadFramebuffer = framebuffer
	}
}

func (s *StateManager) BindDrawFramebuffer(framebuffer uint32) {
	if s.DrawFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, framebuffer)
	s.DrawFramebuffer = framebuffer
}

func (s *StateManager) BindReadFramebuffer(framebuffer uint32) {
	if s.ReadFramebuffer == framebuffer {
		return
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, framebuffer)
	s.ReadFramebuffer = framebuffer
}

func (s *StateManager) UseProgram(program uint32) {
	if s.Program == program {
		return
	}
	gl.UseProgram(program)
	s.Program = program
}

func (s *StateManager) BindVertexArray(array uint32) {
	if s.VertexArray == array {
		return
	}
	gl.BindVertexArray(array)
	s.VertexArray = array
}

func (s *StateManager) Viewport(x, y, w, h int) {
	if s.ViewportRect == [4]int{x, y, w, h} {
		return
	}
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
	s.ViewportRect = [4]int{x, y, w, h}
}

func (s *StateManager) Scissor(x, y, w, h int) {
	if s.ScissorRect == [4]int{x, y, w, h} {
		return
	}
	gl.Scissor(int32(x), int32(y), int32(w), int32(h))
	s.ScissorRect = [4]int{x, y, w, h}
}

func (s *StateManager) ClearColor(r, g, b, a float32) {
	if s.ClearColorRGBA == [4]float32{r, g, b, a} {
		return
	}
	gl.ClearColor(r, g, b, a)
	s.ClearColorRGBA = [4]float32{r, g, b, a}
}

var Env *Environment

type Environment struct {
	Vendor                     string
	Renderer                   string
	Version                    string
	UseIntelTextureBindingFix  bool
	UseIntelCubemapDsaFix      bool
	IntelTextureBindingTargets map[uint32]uint32
}

const (
	VendorIntel   = "intel"
	VendorNvidia  = "nvidia"
	VendorAmd     = "ati"
	VendorUnknown = "unknown"
)

func NewEnvironment() *Environment {
	vendor := ParseVendor(gl.GoStr(gl.GetString(gl.VENDOR)))
	return &Environment{
		Vendor:                     vendor,
		Renderer:                   gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:                    gl.GoStr(gl.GetString(gl.VERSION)),
		UseIntelTextureBindingFix:  vendor == VendorIntel,
		UseIntelCubemapDsaFix:      vendor == VendorIntel,
		IntelTextureBindingTargets: map[uint32]uint32{},
	}
}

// ReadsCubeFacesBound reports whether faces of a texture with the given target have to be
// read through the bound, non-DSA path.
func (env *Environment) ReadsCubeFacesBound(target uint32) bool {
	return env != nil && env.UseIntelCubemapDsaFix && target == gl.TEXTURE_CUBE_MAP
}

func ParseVendor(vendor string) string {
	vendor = strings.ToLower(strings.TrimSuffix(vendor, "\x00"))
	switch {
	case strings.Contains(vendor, "intel"):
		return VendorIntel
	case strings.Contains(vendor, "nvidia"):
		return VendorNvidia
	case strings.Contains(vendor, "ati ") || strings.Contains(vendor, "amd"):
		return VendorAmd
	}
	return VendorUnknown
}
