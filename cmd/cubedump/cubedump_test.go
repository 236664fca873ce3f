package main

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"point-shadows/libio"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCube() *libio.DepthCube {
	cube := libio.NewDepthCube(4, 1, 20, [3]float32{0, 0, 1.5})
	for i := range cube.Faces {
		for j := range cube.Faces[i] {
			cube.Faces[i][j] = float32(i+1) * 0.1
		}
	}
	// bottom left texel of +X is the closest, top right is cleared
	cube.Faces[0][0] = 0.05
	cube.Faces[0][15] = 1
	return cube
}

func TestFaceImage(t *testing.T) {
	cube := testCube()

	gray := faceImage(cube, 0, false, 0)
	assert.Equal(t, image.Rect(0, 0, 4, 4), gray.Bounds())
	// origin flips to the top left
	assert.Equal(t, uint8(13), gray.GrayAt(0, 3).Y)
	assert.Equal(t, uint8(255), gray.GrayAt(3, 0).Y)
	assert.Equal(t, uint8(26), gray.GrayAt(1, 1).Y)

	normalized := faceImage(cube, 0, true, 0)
	assert.Equal(t, uint8(0), normalized.GrayAt(0, 3).Y)
	assert.Equal(t, uint8(255), normalized.GrayAt(3, 0).Y)

	// a constant face has no range and maps to black
	constant := faceImage(cube, 2, true, 0)
	assert.Equal(t, uint8(0), constant.GrayAt(2, 2).Y)
}

func TestFaceImageResize(t *testing.T) {
	cube := testCube()

	scaled := faceImage(cube, 3, false, 16)
	assert.Equal(t, image.Rect(0, 0, 16, 16), scaled.Bounds())
	assert.InDelta(t, 102, scaled.GrayAt(8, 8).Y, 1)

	same := faceImage(cube, 3, false, 4)
	assert.Equal(t, image.Rect(0, 0, 4, 4), same.Bounds())
}

func TestStripImage(t *testing.T) {
	cube := testCube()
	faces := make([]*image.Gray, 6)
	for i := range faces {
		faces[i] = faceImage(cube, i, false, 0)
	}

	strip := stripImage(faces)
	assert.Equal(t, image.Rect(0, 0, 24, 4), strip.Bounds())
	for i := 1; i < 6; i++ {
		assert.Equal(t, faces[i].GrayAt(1, 1), strip.GrayAt(i*4+1, 1), "face %d", i)
	}
	assert.Equal(t, image.Rect(0, 0, 0, 0), stripImage(nil).Bounds())
}

func TestOutputName(t *testing.T) {
	out := filepath.Join("out", "dir")
	assert.Equal(t, filepath.Join(out, "point_shadow_1_px.png"), outputName(out, "dump/point_shadow_1.dcube", "_px.png"))
	assert.Equal(t, filepath.Join(out, "cube_strip.png"), outputName(out, "cube", "_strip.png"))
}

func TestCubeStats(t *testing.T) {
	cube := testCube()

	stats := cubeStats(cube, false)
	require.Len(t, stats, 6)
	assert.Equal(t, "px", stats[0].Name)
	assert.InDelta(t, 1, stats[0].Min, 1e-5)
	assert.InDelta(t, 20, stats[0].Max, 1e-5)
	assert.Equal(t, 1, stats[0].Cleared)

	sorted := cubeStats(cube, true)
	assert.Equal(t, "nz", sorted[5].Name)
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, sorted[i-1].Mean, sorted[i].Mean)
	}

	total := totalStats(stats)
	assert.InDelta(t, 1, total.Min, 1e-5)
	assert.InDelta(t, 20, total.Max, 1e-5)
	assert.Equal(t, 1, total.Cleared)
	assert.Equal(t, libio.FaceStats{}, totalStats(nil))
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, testCube(), false)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 9)
	assert.Contains(t, lines[0], "size 4")
	assert.Contains(t, lines[0], "far 20")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[2]), "px"))
	assert.Contains(t, lines[2], "20.000")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[8]), "all"))
}

func TestPngFileWritesFaces(t *testing.T) {
	dir := t.TempDir()
	cargs = &commonArgs{out: dir, quiet: true}

	input := filepath.Join(dir, "shadow.dcube")
	file, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, libio.EncodeDepthCube(file, testCube(), libio.CompressionFixedPoint16Lz4))
	require.NoError(t, file.Close())

	require.NoError(t, pngFile(pngArgs{}, input))
	for _, name := range libio.FaceNames {
		assert.FileExists(t, filepath.Join(dir, "shadow_"+name+".png"))
	}

	require.NoError(t, pngFile(pngArgs{strip: true}, input))
	assert.FileExists(t, filepath.Join(dir, "shadow_strip.png"))

	assert.Error(t, pngFile(pngArgs{}, filepath.Join(dir, "missing.dcube")))
}
