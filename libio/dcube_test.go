package libio_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"point-shadows/libio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCube(size int) *libio.DepthCube {
	cube := libio.NewDepthCube(size, 1, 25, [3]float32{0, 0, 1.5})
	for f := range cube.Faces {
		for i := range cube.Faces[f] {
			cube.Faces[f][i] = float32(f*size*size+i) / float32(6*size*size)
		}
	}
	return cube
}

func TestDepthCubeRoundtripUncompressed(t *testing.T) {
	cube := testCube(8)
	buf := &bytes.Buffer{}
	require.NoError(t, libio.EncodeDepthCube(buf, cube, libio.CompressionNone))
	assert.Equal(t, 52+6*8*8*4, buf.Len())

	decoded, err := libio.DecodeDepthCube(buf)
	require.NoError(t, err)
	assert.Equal(t, cube, decoded)
}

func TestDepthCubeRoundtripFixedPoint(t *testing.T) {
	cube := testCube(16)
	buf := &bytes.Buffer{}
	require.NoError(t, libio.EncodeDepthCube(buf, cube, libio.CompressionFixedPoint16Lz4))

	decoded, err := libio.DecodeDepthCube(buf)
	require.NoError(t, err)
	assert.Equal(t, cube.Size, decoded.Size)
	assert.Equal(t, cube.Light, decoded.Light)
	assert.Equal(t, cube.Far, decoded.Far)
	for f := range cube.Faces {
		for i := range cube.Faces[f] {
			assert.InDelta(t, cube.Faces[f][i], decoded.Faces[f][i], 1.0/0xffff)
		}
	}
}

func TestDepthCubeConstantFace(t *testing.T) {
	cube := libio.NewDepthCube(4, 1, 25, [3]float32{})
	for f := range cube.Faces {
		for i := range cube.Faces[f] {
			cube.Faces[f][i] = 1
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, libio.EncodeDepthCube(buf, cube, libio.CompressionFixedPoint16Lz4))

	decoded, err := libio.DecodeDepthCube(buf)
	require.NoError(t, err)
	assert.Equal(t, cube.Faces, decoded.Faces)
}

func TestDecodeDepthCubeRejectsBadMagic(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, libio.EncodeDepthCube(buf, testCube(2), libio.CompressionNone))
	data := buf.Bytes()
	binary.LittleEndian.PutUint32(data, 0xdeadbeef)

	_, err := libio.DecodeDepthCube(bytes.NewReader(data))
	assert.ErrorContains(t, err, "corrupt")
}

func TestDecodeDepthCubeTruncated(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, libio.EncodeDepthCube(buf, testCube(4), libio.CompressionNone))
	data := buf.Bytes()

	_, err := libio.DecodeDepthCube(bytes.NewReader(data[:len(data)-3]))
	assert.Error(t, err)

	_, err = libio.DecodeDepthCube(bytes.NewReader(data[:20]))
	assert.ErrorContains(t, err, "header")
}

func TestEncodeDepthCubeRejectsShortFace(t *testing.T) {
	cube := testCube(4)
	cube.Faces[3] = cube.Faces[3][:5]
	err := libio.EncodeDepthCube(&bytes.Buffer{}, cube, libio.CompressionNone)
	assert.ErrorContains(t, err, "ny")
}

func TestEncodeDepthCubeRejectsEmptyCube(t *testing.T) {
	var buf bytes.Buffer
	err := libio.EncodeDepthCube(&buf, libio.NewDepthCube(0, 0.1, 25, [3]float32{}), libio.CompressionNone)
	assert.ErrorContains(t, err, "size 0")
	assert.Zero(t, buf.Len())
}

func TestDepthCubeStats(t *testing.T) {
	cube := libio.NewDepthCube(2, 1, 10, [3]float32{})
	copy(cube.Faces[0], []float32{0.1, 0.2, 0.3, 1})

	stats := cube.Stats(0)
	assert.InDelta(t, 1, stats.Min, 1e-5)
	assert.InDelta(t, 10, stats.Max, 1e-5)
	assert.InDelta(t, 4, stats.Mean, 1e-5)
	assert.Equal(t, 1, stats.Cleared)
	assert.InDelta(t, 3, cube.Distance(0, 0, 1), 1e-5)
}

func TestFloatImageToGray(t *testing.T) {
	img := libio.NewFloatImage([]float32{0, 0.5, 1, 2}, 1, 2, 2)
	gray := img.ToGray(0, 1)

	// bottom row of the float image becomes the top row
	assert.Equal(t, []uint8{255, 255, 0, 128}, gray.Pix)

	lo, hi := img.Range(0)
	assert.Equal(t, float32(0), lo)
	assert.Equal(t, float32(2), hi)
}
