package libscn

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path"

	"point-shadows/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureImage is tightly packed 8 bit pixel data with its first row at the bottom.
type TextureImage struct {
	Width, Height int
	Channels      int
	Pix           []byte
}

// Format returns the GL pixel format matching the channel count.
func (img *TextureImage) Format() uint32 {
	switch img.Channels {
	case 1:
		return gl.RED
	case 3:
		return gl.RGB
	}
	return gl.RGBA
}

func (img *TextureImage) internalFormat(gamma bool) uint32 {
	switch img.Channels {
	case 1:
		return gl.R8
	case 3:
		if gamma {
			return gl.SRGB8
		}
		return gl.RGB8
	}
	if gamma {
		return gl.SRGB8_ALPHA8
	}
	return gl.RGBA8
}

// ImageChannels infers the channel count from the color model of a decoded image.
func ImageChannels(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.YCbCrModel, color.CMYKModel:
		return 3
	}
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return 3
	}
	return 4
}

func DecodeImage(r io.Reader) (*TextureImage, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	channels := ImageChannels(src)
	img := &TextureImage{
		Width:    w,
		Height:   h,
		Channels: channels,
		Pix:      make([]byte, w*h*channels),
	}

	if channels == 1 {
		gray := image.NewGray(image.Rect(0, 0, w, h))
		draw.Draw(gray, gray.Bounds(), src, bounds.Min, draw.Src)
		for y := 0; y < h; y++ {
			copy(img.Pix[(h-y-1)*w:(h-y)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
		}
		return img, nil
	}

	nrgba, ok := src.(*image.NRGBA)
	if !ok || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)
	}
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		dst := img.Pix[(h-y-1)*w*channels:]
		for x := 0; x < w; x++ {
			copy(dst[x*channels:x*channels+channels], row[x*4:x*4+channels])
		}
	}
	return img, nil
}

func LoadImage(filename string) (*TextureImage, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open texture image file %q: %w", filename, err)
	}
	defer file.Close()

	img, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode texture image file %q: %w", filename, err)
	}
	return img, nil
}

// UploadImage creates an immutable 2D texture with a full mip chain.
func UploadImage(img *TextureImage, gamma bool, wrap int32) libgl.UnboundTexture {
	tex := libgl.NewTexture(gl.TEXTURE_2D)
	tex.Allocate(0, img.internalFormat(gamma), img.Width, img.Height, 0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	tex.Load(0, img.Width, img.Height, 0, img.Format(), img.Pix)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	tex.GenerateMipmap()
	tex.WrapMode(wrap, wrap, 0)
	tex.FilterMode(gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR)
	return tex
}

// LoadTexture loads a texture that repeats unless it has an alpha channel.
func LoadTexture(filename string) (libgl.UnboundTexture, error) {
	img, err := LoadImage(filename)
	if err != nil {
		log.Printf("Texture failed to load at path: %s", filename)
		return nil, err
	}

	var wrap int32 = gl.REPEAT
	if img.Channels == 4 {
		wrap = gl.CLAMP_TO_EDGE
	}
	tex := UploadImage(img, false, wrap)
	tex.SetDebugLabel(path.Base(filename))
	return tex, nil
}

// TextureFromFile loads a model texture relative to the model directory.
func TextureFromFile(name, directory string, gamma bool) (libgl.UnboundTexture, error) {
	filename := path.Join(directory, name)
	img, err := LoadImage(filename)
	if err != nil {
		log.Printf("Texture failed to load at path: %s", filename)
		return nil, err
	}

	tex := UploadImage(img, gamma, gl.REPEAT)
	tex.SetDebugLabel(name)
	return tex, nil
}

// TextureFromMemory loads an embedded model texture.
func TextureFromMemory(label string, data []byte, gamma bool) (libgl.UnboundTexture, error) {
	img, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		log.Printf("Texture failed to load at path: %s", label)
		return nil, fmt.Errorf("could not decode embedded texture %q: %w", label, err)
	}

	tex := UploadImage(img, gamma, gl.REPEAT)
	tex.SetDebugLabel(label)
	return tex, nil
}
