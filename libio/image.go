package libio

import (
	goimg "image"

	"github.com/chewxy/math32"
)

// FloatImage is a tightly packed float image with its origin in the bottom left, as GL returns it.
type FloatImage struct {
	Channels      int
	Width, Height int
	Pix           []float32
}

func NewFloatImage(pix []float32, channels int, width, height int) *FloatImage {
	return &FloatImage{
		Pix:      pix,
		Channels: channels,
		Width:    width,
		Height:   height,
	}
}

// Index calculates the tuple index into the image data.
func (img *FloatImage) Index(x, y int) int {
	return (x + y*img.Width) * img.Channels
}

func (img *FloatImage) Count() int {
	return img.Width * img.Height
}

// Range returns the smallest and largest value of a channel.
func (img *FloatImage) Range(ch int) (min, max float32) {
	min, max = math32.Inf(1), math32.Inf(-1)
	for i := 0; i < img.Count(); i++ {
		v := img.Pix[i*img.Channels+ch]
		min = math32.Min(min, v)
		max = math32.Max(max, v)
	}
	return min, max
}

// ToGray maps channel 0 from [lo, hi] onto [0, 255] and flips the image into Go's top-left origin.
// Values outside the range are clamped.
func (img *FloatImage) ToGray(lo, hi float32) *goimg.Gray {
	gray := goimg.NewGray(goimg.Rect(0, 0, img.Width, img.Height))
	r := hi - lo
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			v := img.Pix[img.Index(x, y)]
			var n float32
			if r > 0 {
				n = math32.Min(math32.Max((v-lo)/r, 0), 1)
			}
			gray.Pix[x+(img.Height-y-1)*gray.Stride] = uint8(n*0xff + 0.5)
		}
	}
	return gray
}
