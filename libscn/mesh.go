package libscn

import (
	"fmt"
	"unsafe"

	"point-shadows/libgl"
	"point-shadows/libutil"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const MaxBoneInfluence = 4

const (
	TextureDiffuse  = "texture_diffuse"
	TextureSpecular = "texture_specular"
	TextureNormal   = "texture_normal"
	TextureHeight   = "texture_height"
)

type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
	BoneIDs   [MaxBoneInfluence]int32
	Weights   [MaxBoneInfluence]float32
}

const VertexSize = int(unsafe.Sizeof(Vertex{}))

type MeshTexture struct {
	Texture libgl.UnboundTexture
	// one of the Texture* constants
	Type string
	Path string
}

type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Textures []MeshTexture

	vao libgl.UnboundVertexArray
	vbo libgl.UnboundBuffer
	ebo libgl.UnboundBuffer
}

// NewMesh uploads the geometry once. The vertex and index slices are kept for inspection.
func NewMesh(name string, vertices []Vertex, indices []uint32, textures []MeshTexture) *Mesh {
	mesh := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
		Textures: textures,
	}

	mesh.vbo = libgl.NewBuffer()
	mesh.vbo.Allocate(vertices, 0)
	mesh.vbo.SetDebugLabel(fmt.Sprintf("%s vertices", name))

	mesh.ebo = libgl.NewBuffer()
	mesh.ebo.Allocate(indices, 0)
	mesh.ebo.SetDebugLabel(fmt.Sprintf("%s indices", name))

	mesh.vao = libgl.NewVertexArray()
	mesh.vao.Layout(0, 0, 3, gl.FLOAT, false, int(unsafe.Offsetof(Vertex{}.Position)))
	mesh.vao.Layout(0, 1, 3, gl.FLOAT, false, int(unsafe.Offsetof(Vertex{}.Normal)))
	mesh.vao.Layout(0, 2, 2, gl.FLOAT, false, int(unsafe.Offsetof(Vertex{}.TexCoords)))
	mesh.vao.Layout(0, 3, 3, gl.FLOAT, false, int(unsafe.Offsetof(Vertex{}.Tangent)))
	mesh.vao.Layout(0, 4, 3, gl.FLOAT, false, int(unsafe.Offsetof(Vertex{}.Bitangent)))
	mesh.vao.LayoutI(0, 5, MaxBoneInfluence, gl.INT, int(unsafe.Offsetof(Vertex{}.BoneIDs)))
	mesh.vao.Layout(0, 6, MaxBoneInfluence, gl.FLOAT, false, int(unsafe.Offsetof(Vertex{}.Weights)))
	mesh.vao.BindBuffer(0, mesh.vbo, 0, VertexSize)
	mesh.vao.BindElementBuffer(mesh.ebo)
	mesh.vao.SetDebugLabel(name)

	return mesh
}

// SamplerNames returns the sampler uniform for every texture, numbered per type from 1,
// e.g. texture_diffuse1, texture_diffuse2, texture_normal1.
func SamplerNames(textures []MeshTexture) []string {
	counts := map[string]int{}
	names := make([]string, len(textures))
	for i, tex := range textures {
		counts[tex.Type]++
		names[i] = fmt.Sprintf("%s%d", tex.Type, counts[tex.Type])
	}
	return names
}

// DiffuseTexture returns the first diffuse texture, if any.
func DiffuseTexture(textures []MeshTexture) (libgl.UnboundTexture, bool) {
	for _, tex := range textures {
		if tex.Type == TextureDiffuse && tex.Texture != nil {
			return tex.Texture, true
		}
	}
	return nil, false
}

// Draw binds every texture to its own unit and sampler uniform, see SamplerNames.
func (mesh *Mesh) Draw(shader *libgl.Shader) {
	for i, name := range SamplerNames(mesh.Textures) {
		shader.SetInt(name, i)
		mesh.Textures[i].Texture.Bind(i)
	}

	mesh.DrawGeometry()
	libgl.State.ActiveTexture(0)
}

// DrawDiffuse binds only the diffuse texture, or fallback when the mesh has none, to unit.
func (mesh *Mesh) DrawDiffuse(unit int, fallback libgl.UnboundTexture) {
	tex, ok := DiffuseTexture(mesh.Textures)
	if !ok {
		tex = fallback
	}
	tex.Bind(unit)
	mesh.DrawGeometry()
}

func (mesh *Mesh) DrawGeometry() {
	mesh.vao.Bind()
	gl.DrawElements(gl.TRIANGLES, int32(len(mesh.Indices)), gl.UNSIGNED_INT, nil)
}

// Delete releases the buffers. Textures are owned by the model that loaded them.
func (mesh *Mesh) Delete() {
	libutil.Release([]libutil.Deleter{mesh.vbo, mesh.ebo, mesh.vao})
}

// ComputeTangents accumulates the tangent and bitangent of every triangle onto its vertices
// and normalizes the sums. Triangles with degenerate uvs are skipped.
func ComputeTangents(vertices []Vertex, indices []uint32) {
	for i := range vertices {
		vertices[i].Tangent = mgl32.Vec3{}
		vertices[i].Bitangent = mgl32.Vec3{}
	}

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i+0], indices[i+1], indices[i+2]
		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		dPos01, dPos02 := v1.Position.Sub(v0.Position), v2.Position.Sub(v0.Position)
		dUV01, dUV02 := v1.TexCoords.Sub(v0.TexCoords), v2.TexCoords.Sub(v0.TexCoords)

		det := dUV01[0]*dUV02[1] - dUV02[0]*dUV01[1]
		if det == 0 {
			continue
		}
		f := 1 / det

		tan := dPos01.Mul(dUV02[1]).Sub(dPos02.Mul(dUV01[1])).Mul(f)
		bitan := dPos02.Mul(dUV01[0]).Sub(dPos01.Mul(dUV02[0])).Mul(f)

		for _, idx := range [3]uint32{i0, i1, i2} {
			vertices[idx].Tangent = vertices[idx].Tangent.Add(tan)
			vertices[idx].Bitangent = vertices[idx].Bitangent.Add(bitan)
		}
	}

	for i := range vertices {
		if vertices[i].Tangent.LenSqr() > 0 {
			vertices[i].Tangent = vertices[i].Tangent.Normalize()
		}
		if vertices[i].Bitangent.LenSqr() > 0 {
			vertices[i].Bitangent = vertices[i].Bitangent.Normalize()
		}
	}
}
