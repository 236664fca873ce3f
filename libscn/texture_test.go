package libscn_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"point-shadows/libscn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func encodePNG(t *testing.T, img image.Image) *bytes.Buffer {
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf
}

func TestDecodeGrayImageIsFlipped(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.Pix = []uint8{1, 2, 3, 4}

	img, err := libscn.DecodeImage(encodePNG(t, src))
	require.NoError(t, err)

	assert.Equal(t, 1, img.Channels)
	assert.Equal(t, []byte{3, 4, 1, 2}, img.Pix)
}

func TestDecodeOpaqueImageDropsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 255})
	src.SetNRGBA(1, 0, color.NRGBA{40, 50, 60, 255})

	img, err := libscn.DecodeImage(encodePNG(t, src))
	require.NoError(t, err)

	assert.Equal(t, 3, img.Channels)
	assert.Equal(t, []byte{10, 20, 30, 40, 50, 60}, img.Pix)
}

func TestDecodeTranslucentImageKeepsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	src.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 128})
	src.SetNRGBA(0, 1, color.NRGBA{40, 50, 60, 255})

	img, err := libscn.DecodeImage(encodePNG(t, src))
	require.NoError(t, err)

	assert.Equal(t, 4, img.Channels)
	assert.Equal(t, []byte{40, 50, 60, 255, 10, 20, 30, 128}, img.Pix)
}

func TestDecodeBitmap(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		src.Set(x, 0, color.RGBA{uint8(x), 0, 0, 255})
	}
	buf := &bytes.Buffer{}
	require.NoError(t, bmp.Encode(buf, src))

	img, err := libscn.DecodeImage(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 3, img.Channels)
	assert.Equal(t, []byte{0, 0, 0, 1, 0, 0, 2, 0, 0}, img.Pix)
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	_, err := libscn.DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestLoadImageMissingFile(t *testing.T) {
	_, err := libscn.LoadImage("does/not/exist.png")
	assert.ErrorContains(t, err, "could not open")
}
