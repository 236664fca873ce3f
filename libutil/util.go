package libutil

import (
	"math"
)

const (
	Rad2Deg = float32(180 / math.Pi)
	Deg2Rad = float32(math.Pi / 180)
)

const InvalidAddress uintptr = 0xffff_ffff_ffff_ffff

type Deleter interface {
	Delete()
}

// Release deletes all objects in reverse order of creation.
func Release(objects []Deleter) {
	for i := len(objects) - 1; i >= 0; i-- {
		if objects[i] != nil {
			objects[i].Delete()
		}
	}
}

func Clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
