package libio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/pierrec/lz4/v4"
)

// maxDepthCubeSize guards allocations against corrupt headers.
const maxDepthCubeSize = 16384

func DecodeDepthCube(r io.Reader) (cube *DepthCube, err error) {
	br, ok := r.(*BinaryReader)
	if !ok {
		br = &BinaryReader{
			Src:   r,
			Order: binary.LittleEndian,
		}
	}

	header := DepthCubeHeader{}
	if !br.ReadRef(&header) {
		return nil, fmt.Errorf("expected dcube header; byte 0x%08x: %w", br.LastIndex, br.Err)
	}

	if header.Check != MagicNumberDepthCube {
		return nil, fmt.Errorf("dcube header is corrupt; byte 0x%08x", br.LastIndex)
	}

	if header.Version != DepthCubeVersion1_000_000 {
		return nil, fmt.Errorf("dcube version %d unsupported; byte 0x%08x", header.Version, br.LastIndex)
	}

	if header.Size == 0 || header.Size > maxDepthCubeSize {
		return nil, fmt.Errorf("dcube size %d out of range; byte 0x%08x", header.Size, br.LastIndex)
	}

	cube = NewDepthCube(int(header.Size), header.Near, header.Far, header.Light)
	count := cube.Size * cube.Size

	switch header.Compression {
	case CompressionNone:
		for i := range cube.Faces {
			if !br.ReadRef(cube.Faces[i]) {
				return nil, fmt.Errorf("expected %d texels of face %s; byte 0x%08x: %w", count, FaceNames[i], br.LastIndex, br.Err)
			}
		}
	case CompressionFixedPoint16Lz4:
		faceBytes := 4*2 + count*2
		buf := make([]byte, 6*faceBytes)
		lzr := lz4.NewReader(br.Src)
		if _, err = io.ReadFull(lzr, buf); err != nil {
			return nil, fmt.Errorf("could not decompress dcube faces: %w", err)
		}
		fr := &BinaryReader{Src: bytes.NewReader(buf), Order: binary.LittleEndian}
		for i := range cube.Faces {
			decompressFixedPoint16(fr, cube.Faces[i])
		}
		if fr.Err != nil {
			return nil, fmt.Errorf("could not decompress dcube faces: %w", fr.Err)
		}
	default:
		return nil, fmt.Errorf("dcube compression %v unsupported", header.Compression)
	}

	return cube, nil
}

func decompressFixedPoint16(br *BinaryReader, pix []float32) {
	var imin, imax uint32
	br.ReadUInt32(&imin)
	br.ReadUInt32(&imax)

	min := math32.Float32frombits(imin)
	max := math32.Float32frombits(imax)

	fixed := make([]uint16, len(pix))
	if !br.ReadRef(fixed) {
		return
	}

	r := max - min
	for i, fix := range fixed {
		pix[i] = (float32(fix)/0xffff)*r + min
	}
}
