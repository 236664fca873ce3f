package libio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/pierrec/lz4/v4"
)

func EncodeDepthCube(w io.Writer, cube *DepthCube, compression Compression) (err error) {
	if cube.Size <= 0 || cube.Size > maxDepthCubeSize {
		return fmt.Errorf("dcube size %d out of range", cube.Size)
	}

	bw, ok := w.(*BinaryWriter)
	if !ok {
		bw = &BinaryWriter{
			Dst:   w,
			Order: binary.LittleEndian,
		}
	}

	for i, face := range cube.Faces {
		if len(face) != cube.Size*cube.Size {
			return fmt.Errorf("face %s has %d texels, expected %d", FaceNames[i], len(face), cube.Size*cube.Size)
		}
	}

	header := DepthCubeHeader{
		Check:       MagicNumberDepthCube,
		Version:     DepthCubeVersion1_000_000,
		Size:        uint32(cube.Size),
		Near:        cube.Near,
		Far:         cube.Far,
		Light:       cube.Light,
		Compression: compression,
	}

	if !bw.WriteRef(header) {
		return fmt.Errorf("could not write dcube header: %w", bw.Err)
	}

	switch compression {
	case CompressionNone:
		for i := range cube.Faces {
			if !bw.WriteRef(cube.Faces[i]) {
				return fmt.Errorf("could not write dcube face %s: %w", FaceNames[i], bw.Err)
			}
		}
	case CompressionFixedPoint16Lz4:
		buf := bytes.NewBuffer(nil)
		fw := &BinaryWriter{Order: binary.LittleEndian, Dst: buf}
		for i := range cube.Faces {
			compressFixedPoint16(fw, cube.Faces[i])
		}
		if fw.Err != nil {
			return fmt.Errorf("could not compress dcube faces: %w", fw.Err)
		}

		lzw := lz4.NewWriter(bw.Dst)
		if err = lzw.Apply(lz4.CompressionLevelOption(lz4.Fast)); err != nil {
			return err
		}
		if _, err = lzw.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("could not compress dcube faces: %w", err)
		}
		if err = lzw.Close(); err != nil {
			return fmt.Errorf("could not compress dcube faces: %w", err)
		}
	default:
		return fmt.Errorf("unsupported dcube compression %v", compression)
	}

	return nil
}

// compressFixedPoint16 writes the value range followed by every value quantized to 16 bits.
func compressFixedPoint16(bw *BinaryWriter, pix []float32) {
	min, max := math32.Inf(1), math32.Inf(-1)
	for _, v := range pix {
		min = math32.Min(min, v)
		max = math32.Max(max, v)
	}

	bw.WriteUInt32(math32.Float32bits(min))
	bw.WriteUInt32(math32.Float32bits(max))

	r := max - min
	fixed := make([]uint16, len(pix))
	if r > 0 {
		for i, v := range pix {
			fixed[i] = uint16(((v-min)/r)*0xffff + 0.5)
		}
	}
	bw.WriteRef(fixed)
}
