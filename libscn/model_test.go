package libscn_test

import (
	"path/filepath"
	"testing"

	"point-shadows/libscn"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleDocument() (*gltf.Document, *gltf.Primitive) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	prim := &gltf.Primitive{
		Indices: gltf.Index(idx),
		Attributes: map[string]int{
			gltf.POSITION:   pos,
			gltf.TEXCOORD_0: uv,
		},
	}
	return doc, prim
}

func TestReadVerticesDefaults(t *testing.T) {
	doc, prim := triangleDocument()

	vertices, indices, err := libscn.ReadVertices(doc, prim)
	require.NoError(t, err)
	require.Len(t, vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, indices)

	for _, v := range vertices {
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, v.Normal)
		assert.Equal(t, [4]int32{-1, -1, -1, -1}, v.BoneIDs)
		assertVec3InDelta(t, mgl32.Vec3{1, 0, 0}, v.Tangent, 1e-5)
	}
	assert.Equal(t, mgl32.Vec2{1, 0}, vertices[1].TexCoords)
}

func TestReadVerticesWithoutIndices(t *testing.T) {
	doc, prim := triangleDocument()
	prim.Indices = nil

	_, indices, err := libscn.ReadVertices(doc, prim)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, indices)
}

func TestReadVerticesRequiresPositions(t *testing.T) {
	doc, prim := triangleDocument()
	delete(prim.Attributes, gltf.POSITION)

	_, _, err := libscn.ReadVertices(doc, prim)
	assert.ErrorContains(t, err, gltf.POSITION)
}

func TestNodeTransformTRS(t *testing.T) {
	node := &gltf.Node{
		Translation: [3]float64{1, 2, 3},
		Rotation:    gltf.DefaultRotation,
		Scale:       [3]float64{2, 2, 2},
	}

	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, libscn.NodeTransform(node))
	assertVec3InDelta(t, mgl32.Vec3{3, 2, 3}, p, 1e-5)
}

func TestNodeTransformMatrix(t *testing.T) {
	node := &gltf.Node{
		Matrix: [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 5, 0, 0, 1},
	}

	p := mgl32.TransformCoordinate(mgl32.Vec3{}, libscn.NodeTransform(node))
	assertVec3InDelta(t, mgl32.Vec3{5, 0, 0}, p, 1e-5)
}

func TestBakeTransformRotatesNormals(t *testing.T) {
	vertices := []libscn.Vertex{{Position: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{0, 1, 0}}}
	rot := mgl32.HomogRotate3DZ(mgl32.DegToRad(90))

	libscn.BakeTransform(vertices, mgl32.Translate3D(0, 0, 1).Mul4(rot))

	assertVec3InDelta(t, mgl32.Vec3{0, 1, 1}, vertices[0].Position, 1e-5)
	assertVec3InDelta(t, mgl32.Vec3{-1, 0, 0}, vertices[0].Normal, 1e-5)
}

func TestMaterialSlots(t *testing.T) {
	mat := &gltf.Material{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture:         &gltf.TextureInfo{Index: 0},
			MetallicRoughnessTexture: &gltf.TextureInfo{Index: 1},
		},
		NormalTexture:    &gltf.NormalTexture{Index: gltf.Index(2)},
		OcclusionTexture: &gltf.OcclusionTexture{Index: gltf.Index(3)},
	}

	assert.Equal(t, map[string]int{
		libscn.TextureDiffuse:  0,
		libscn.TextureSpecular: 1,
		libscn.TextureNormal:   2,
		libscn.TextureHeight:   3,
	}, libscn.MaterialSlots(mat))

	assert.Empty(t, libscn.MaterialSlots(&gltf.Material{}))
}

func TestReadVerticesRejectsBadAccessor(t *testing.T) {
	doc, prim := triangleDocument()
	prim.Attributes[gltf.NORMAL] = 42

	_, _, err := libscn.ReadVertices(doc, prim)
	assert.ErrorContains(t, err, "accessor index 42")

	doc, prim = triangleDocument()
	prim.Indices = gltf.Index(-1)
	_, _, err = libscn.ReadVertices(doc, prim)
	assert.ErrorContains(t, err, "out of range")
}

func saveDocument(t *testing.T, doc *gltf.Document) string {
	filename := filepath.Join(t.TempDir(), "model.gltf")
	require.NoError(t, gltf.Save(doc, filename))
	return filename
}

func TestLoadModelRejectsNodeCycle(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Children: []int{1}}, {Children: []int{0}}}
	doc.Scenes[0].Nodes = []int{0}

	_, err := libscn.LoadModel(saveDocument(t, doc), false)
	assert.ErrorContains(t, err, "more than once")
}

func TestLoadModelRejectsMissingMesh(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(3)}}
	doc.Scenes[0].Nodes = []int{0}

	_, err := libscn.LoadModel(saveDocument(t, doc), false)
	assert.ErrorContains(t, err, "mesh index 3")
}

func TestLoadModelRejectsMissingMaterial(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{Material: gltf.Index(5)}}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	_, err := libscn.LoadModel(saveDocument(t, doc), false)
	assert.ErrorContains(t, err, "material index 5")
}
