package libutil_test

import (
	"testing"

	"point-shadows/libutil"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func cubeVertex(i int) (pos, normal mgl32.Vec3, uv mgl32.Vec2) {
	v := libutil.CubeVertices[i*libutil.CubeVertexFloats:]
	return mgl32.Vec3{v[0], v[1], v[2]}, mgl32.Vec3{v[3], v[4], v[5]}, mgl32.Vec2{v[6], v[7]}
}

func TestCubeWindingMatchesNormals(t *testing.T) {
	for tri := 0; tri < libutil.CubeVertexCount/3; tri++ {
		p0, n, _ := cubeVertex(tri*3 + 0)
		p1, _, _ := cubeVertex(tri*3 + 1)
		p2, _, _ := cubeVertex(tri*3 + 2)

		face := p1.Sub(p0).Cross(p2.Sub(p0))
		assert.Greater(t, face.Dot(n), float32(0), "triangle %d is wound clockwise", tri)
	}
}

func TestCubeVerticesLieOnTheirFace(t *testing.T) {
	for i := 0; i < libutil.CubeVertexCount; i++ {
		pos, n, uv := cubeVertex(i)
		assert.InDelta(t, 1, n.Len(), 1e-6, "vertex %d", i)
		assert.InDelta(t, 1, pos.Dot(n), 1e-6, "vertex %d", i)
		for c := 0; c < 3; c++ {
			assert.Contains(t, []float32{-1, 1}, pos[c])
		}
		assert.Contains(t, []float32{0, 1}, uv[0])
		assert.Contains(t, []float32{0, 1}, uv[1])
	}
}

func TestReleaseOrder(t *testing.T) {
	var order []int
	objects := []libutil.Deleter{
		deleterFunc(func() { order = append(order, 1) }),
		nil,
		deleterFunc(func() { order = append(order, 2) }),
	}
	libutil.Release(objects)
	assert.Equal(t, []int{2, 1}, order)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), libutil.Clamp(-3, 1, 45))
	assert.Equal(t, float32(45), libutil.Clamp(50, 1, 45))
	assert.Equal(t, float32(20), libutil.Clamp(20, 1, 45))
}

type deleterFunc func()

func (f deleterFunc) Delete() { f() }
