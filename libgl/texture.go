package libgl

import (
	"fmt"
	"log"
	"math/bits"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type texture struct {
	glId   uint32
	target uint32
	width  int
	height int
	depth  int
}

type UnboundTexture interface {
	LabeledGlObject
	Id() uint32
	Type() uint32
	Size() (width, height, depth int)
	Bind(unit int) BoundTexture
	Allocate(levels int, internalFormat uint32, width, height, depth int)
	Load(level int, width, height, depth int, format uint32, data any)
	ReadFace(level, face int, format uint32, dst []float32)
	FilterMode(min, mag int32)
	WrapMode(s, t, r int32)
	MipmapLevels(base, max int)
	GenerateMipmap()
	Delete()
}

type BoundTexture interface {
	UnboundTexture
}

func NewTexture(target uint32) UnboundTexture {
	var id uint32
	gl.CreateTextures(target, 1, &id)
	if Env.UseIntelTextureBindingFix {
		Env.IntelTextureBindingTargets[id] = target
	}
	return &texture{
		glId:   id,
		target: target,
	}
}

func (tex *texture) Id() uint32 {
	return tex.glId
}

func (tex *texture) Type() uint32 {
	return tex.target
}

func (tex *texture) Size() (width, height, depth int) {
	return tex.width, tex.height, tex.depth
}

func (tex *texture) SetDebugLabel(label string) {
	setObjectLabel(gl.TEXTURE, tex.glId, label)
}

func (tex *texture) Bind(unit int) BoundTexture {
	State.BindTextureUnit(unit, tex.glId)
	return BoundTexture(tex)
}

// MipLevels returns the length of a full mip chain for the given extent.
func MipLevels(width, height, depth int) int {
	max := width
	if height > max {
		max = height
	}
	if depth > max {
		max = depth
	}
	if max <= 0 {
		return 1
	}
	return bits.Len(uint(max))
}

// Allocate creates immutable storage. A level count of 0 allocates the full mip chain.
// Cube maps take a 2D extent; depth is ignored for them.
func (tex *texture) Allocate(levels int, internalFormat uint32, width, height, depth int) {
	tex.width, tex.height, tex.depth = width, height, depth
	switch tex.target {
	case gl.TEXTURE_1D:
		if levels == 0 {
			levels = MipLevels(width, 1, 1)
		}
		gl.TextureStorage1D(tex.glId, int32(levels), internalFormat, int32(width))
	case gl.TEXTURE_2D, gl.TEXTURE_1D_ARRAY, gl.TEXTURE_CUBE_MAP:
		if levels == 0 {
			levels = MipLevels(width, height, 1)
		}
		if tex.target == gl.TEXTURE_CUBE_MAP {
			tex.depth = 6
		}
		gl.TextureStorage2D(tex.glId, int32(levels), internalFormat, int32(width), int32(height))
	case gl.TEXTURE_3D, gl.TEXTURE_2D_ARRAY, gl.TEXTURE_CUBE_MAP_ARRAY:
		if levels == 0 {
			levels = MipLevels(width, height, depth)
		}
		gl.TextureStorage3D(tex.glId, int32(levels), internalFormat, int32(width), int32(height), int32(depth))
	default:
		log.Panicf("cannot allocate texture %d of type 0x%04x", tex.glId, tex.target)
	}
}

// Load uploads pixels to a mip level. For cube maps depth selects how many faces,
// starting at +X, are written.
func (tex *texture) Load(level int, width, height, depth int, format uint32, data any) {
	dataType := getGlType(data)
	switch tex.target {
	case gl.TEXTURE_1D:
		gl.TextureSubImage1D(tex.glId, int32(level), 0, int32(width), format, dataType, Pointer(data))
	case gl.TEXTURE_2D, gl.TEXTURE_1D_ARRAY:
		gl.TextureSubImage2D(tex.glId, int32(level), 0, 0, int32(width), int32(height), format, dataType, Pointer(data))
	default:
		gl.TextureSubImage3D(tex.glId, int32(level), 0, 0, 0, int32(width), int32(height), int32(depth), format, dataType, Pointer(data))
	}
}

// ReadFace reads one layer (or cube face) of a level back into dst as floats.
func (tex *texture) ReadFace(level, face int, format uint32, dst []float32) {
	w, h := tex.width>>level, tex.height>>level
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if len(dst) < w*h {
		log.Panic(fmt.Errorf("read buffer too small: %d < %d", len(dst), w*h))
	}
	// https://community.intel.com/t5/Graphics/glNamedFramebufferTextureLayer-rejects-cubemaps-of-any-kind/td-p/1167643
	if Env.ReadsCubeFacesBound(tex.target) {
		State.BindTexture(gl.TEXTURE_CUBE_MAP, tex.glId)
		gl.GetTexImage(uint32(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face), int32(level), format, gl.FLOAT, Pointer(dst))
		return
	}
	gl.GetTextureSubImage(tex.glId, int32(level), 0, 0, int32(face), int32(w), int32(h), 1, format, gl.FLOAT, int32(len(dst)*4), Pointer(dst))
}

func (tex *texture) FilterMode(min, mag int32) {
	if min != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_MIN_FILTER, min)
	}
	if mag != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_MAG_FILTER, mag)
	}
}

func (tex *texture) WrapMode(s, t, r int32) {
	if s != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_S, s)
	}
	if t != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_T, t)
	}
	if r != 0 {
		gl.TextureParameteri(tex.glId, gl.TEXTURE_WRAP_R, r)
	}
}

func (tex *texture) MipmapLevels(base, max int) {
	gl.TextureParameteri(tex.glId, gl.TEXTURE_BASE_LEVEL, int32(base))
	gl.TextureParameteri(tex.glId, gl.TEXTURE_MAX_LEVEL, int32(max))
}

func (tex *texture) GenerateMipmap() {
	gl.GenerateTextureMipmap(tex.glId)
}

func (tex *texture) Delete() {
	delete(Env.IntelTextureBindingTargets, tex.glId)
	gl.DeleteTextures(1, &tex.glId)
	tex.glId = 0
}

func getGlType(data any) uint32 {
	switch data.(type) {
	case byte, []byte, *byte:
		return gl.UNSIGNED_BYTE
	case int8, []int8, *int8:
		return gl.BYTE
	case int16, []int16, *int16:
		return gl.SHORT
	case uint16, []uint16, *uint16:
		return gl.UNSIGNED_SHORT
	case int32, []int32, *int32:
		return gl.INT
	case uint32, []uint32, *uint32:
		return gl.UNSIGNED_INT
	case float32, []float32, *float32, []mgl32.Vec2, []mgl32.Vec3, []mgl32.Vec4:
		return gl.FLOAT
	}
	log.Panicf("invalid type: %T", data)
	return 0
}
