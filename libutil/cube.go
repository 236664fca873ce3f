package libutil

import (
	"point-shadows/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
)

const (
	CubeVertexCount  = 36
	CubeVertexFloats = 8
)

// CubeVertices is a unit cube spanning [-1, 1] with counter-clockwise front faces.
// Each vertex is position (3), normal (3), uv (2).
var CubeVertices = [CubeVertexCount * CubeVertexFloats]float32{
	// back
	-1, -1, -1, 0, 0, -1, 0, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	1, -1, -1, 0, 0, -1, 1, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	-1, -1, -1, 0, 0, -1, 0, 0,
	-1, 1, -1, 0, 0, -1, 0, 1,
	// front
	-1, -1, 1, 0, 0, 1, 0, 0,
	1, -1, 1, 0, 0, 1, 1, 0,
	1, 1, 1, 0, 0, 1, 1, 1,
	1, 1, 1, 0, 0, 1, 1, 1,
	-1, 1, 1, 0, 0, 1, 0, 1,
	-1, -1, 1, 0, 0, 1, 0, 0,
	// left
	-1, 1, 1, -1, 0, 0, 1, 0,
	-1, 1, -1, -1, 0, 0, 1, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, 1, -1, 0, 0, 0, 0,
	-1, 1, 1, -1, 0, 0, 1, 0,
	// right
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, -1, 1, 0, 0, 1, 1,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, 1, 1, 0, 0, 0, 0,
	// bottom
	-1, -1, -1, 0, -1, 0, 0, 1,
	1, -1, -1, 0, -1, 0, 1, 1,
	1, -1, 1, 0, -1, 0, 1, 0,
	1, -1, 1, 0, -1, 0, 1, 0,
	-1, -1, 1, 0, -1, 0, 0, 0,
	-1, -1, -1, 0, -1, 0, 0, 1,
	// top
	-1, 1, -1, 0, 1, 0, 0, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	1, 1, -1, 0, 1, 0, 1, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	-1, 1, -1, 0, 1, 0, 0, 1,
	-1, 1, 1, 0, 1, 0, 0, 0,
}

var sharedCube libgl.UnboundVertexArray

// DrawCube draws CubeVertices as triangles, creating the vertex array on first use.
func DrawCube() {
	if sharedCube == nil {
		vbo := libgl.NewBuffer()
		vbo.Allocate(CubeVertices[:], 0)
		vbo.SetDebugLabel("cube")

		sharedCube = libgl.NewVertexArray()
		sharedCube.Layout(0, 0, 3, gl.FLOAT, false, 0)
		sharedCube.Layout(0, 1, 3, gl.FLOAT, false, 3*4)
		sharedCube.Layout(0, 2, 2, gl.FLOAT, false, 6*4)
		sharedCube.BindBuffer(0, vbo, 0, CubeVertexFloats*4)
	}

	sharedCube.Bind()
	gl.DrawArrays(gl.TRIANGLES, 0, CubeVertexCount)
}
