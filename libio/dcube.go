package libio

import "fmt"

// MagicNumberDepthCube is "dcub" read as a little endian uint32.
const MagicNumberDepthCube = 0x62756364

type DepthCubeVersion uint32

const (
	DepthCubeVersion1_000_000 = DepthCubeVersion(1_000_000)
)

type Compression uint32

const (
	CompressionNone = Compression(iota)
	CompressionFixedPoint16Lz4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionFixedPoint16Lz4:
		return "fp16-lz4"
	}
	return fmt.Sprintf("Compression(%d)", uint32(c))
}

// FaceNames lists the cube faces in storage order.
var FaceNames = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

type DepthCubeHeader struct {
	Check       uint32
	Version     DepthCubeVersion
	Size        uint32
	Near, Far   float32
	Light       [3]float32
	Compression Compression
	Unused      [16]uint8
}

// DepthCube is a read back point light shadow map.
// Each face holds the light distance divided by Far, so Far*value is in world units.
type DepthCube struct {
	Size      int
	Near, Far float32
	Light     [3]float32
	Faces     [6][]float32
}

func NewDepthCube(size int, near, far float32, light [3]float32) *DepthCube {
	cube := &DepthCube{
		Size:  size,
		Near:  near,
		Far:   far,
		Light: light,
	}
	for i := range cube.Faces {
		cube.Faces[i] = make([]float32, size*size)
	}
	return cube
}

func (cube *DepthCube) Face(i int) *FloatImage {
	return NewFloatImage(cube.Faces[i], 1, cube.Size, cube.Size)
}

// Distance returns the world space distance from the light stored at a texel.
func (cube *DepthCube) Distance(face, x, y int) float32 {
	return cube.Faces[face][x+y*cube.Size] * cube.Far
}

type FaceStats struct {
	Min, Max, Mean float32
	// Cleared counts texels still at the clear value, nothing was rendered there.
	Cleared int
}

// Stats reports world space distances of one face.
func (cube *DepthCube) Stats(face int) FaceStats {
	pix := cube.Faces[face]
	if len(pix) == 0 {
		return FaceStats{}
	}
	img := cube.Face(face)
	min, max := img.Range(0)
	var sum float64
	cleared := 0
	for _, v := range pix {
		sum += float64(v)
		if v >= 1 {
			cleared++
		}
	}
	return FaceStats{
		Min:     min * cube.Far,
		Max:     max * cube.Far,
		Mean:    float32(sum/float64(len(pix))) * cube.Far,
		Cleared: cleared,
	}
}
