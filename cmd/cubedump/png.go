package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"point-shadows/libio"

	"golang.org/x/image/draw"
)

type pngArgs struct {
	commonArgs
	normalize bool
	strip     bool
	size      int
}

func createPngCommand() *command {
	args := pngArgs{}

	flags := flag.NewFlagSet("png", flag.ExitOnError)

	registerCommonFlags(flags, &args.commonArgs)
	flags.BoolVar(&args.normalize, "normalize", args.normalize, "stretch every face to its own distance range instead of [0, far]")
	flags.BoolVar(&args.strip, "strip", args.strip, "write one image with all six faces side by side")
	flags.IntVar(&args.size, "size", args.size, "the output face resolution in px, 0 keeps the dump resolution")

	return &command{
		Name: "png",
		Help: "write depth cube dumps as grayscale png",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.size < 0 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			runPng(args, gatherInputFiles(self.Flags.Args()))
		},
		Flags: flags,
	}
}

func runPng(args pngArgs, inputFiles []string) {
	success := 0
	start := time.Now()
	for i, p := range inputFiles {
		if !cargs.quiet {
			fmt.Printf("Processing file %d/%d %q ...\n", i+1, len(inputFiles), filepath.ToSlash(filepath.Clean(p)))
		}
		err := pngFile(args, p)
		softerr(err)
		if err == nil {
			success++
		}
	}
	if !cargs.quiet {
		took := float32(time.Since(start).Milliseconds()) / 1000
		fmt.Printf("Converted %d/%d files in %.3f seconds\n", success, len(inputFiles), took)
	}
}

func pngFile(args pngArgs, p string) error {
	cube, err := readCube(p)
	if err != nil {
		return err
	}

	faces := make([]*image.Gray, len(cube.Faces))
	for i := range cube.Faces {
		faces[i] = faceImage(cube, i, args.normalize, args.size)
	}

	if args.strip {
		return writePng(outputName(cargs.out, p, "_strip.png"), stripImage(faces))
	}
	for i, face := range faces {
		if err := writePng(outputName(cargs.out, p, "_"+libio.FaceNames[i]+".png"), face); err != nil {
			return err
		}
	}
	return nil
}

// faceImage maps the normalized distances of one face to gray, near is dark.
// With normalize the face is stretched to its own value range. A size > 0 rescales the face.
func faceImage(cube *libio.DepthCube, face int, normalize bool, size int) *image.Gray {
	img := cube.Face(face)
	lo, hi := float32(0), float32(1)
	if normalize {
		lo, hi = img.Range(0)
	}
	gray := img.ToGray(lo, hi)
	if size <= 0 || size == cube.Size {
		return gray
	}
	scaled := image.NewGray(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	return scaled
}

// stripImage puts the faces next to each other in +X, -X, +Y, -Y, +Z, -Z order.
func stripImage(faces []*image.Gray) *image.Gray {
	if len(faces) == 0 {
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
	w, h := faces[0].Bounds().Dx(), faces[0].Bounds().Dy()
	strip := image.NewGray(image.Rect(0, 0, w*len(faces), h))
	for i, face := range faces {
		r := image.Rect(i*w, 0, (i+1)*w, h)
		draw.Draw(strip, r, face, face.Bounds().Min, draw.Src)
	}
	return strip
}

func writePng(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", filename, err)
	}
	defer file.Close()

	if err = png.Encode(file, img); err != nil {
		return fmt.Errorf("could not encode %q: %w", filename, err)
	}
	if !cargs.quiet {
		fmt.Printf("Wrote %q\n", filepath.ToSlash(filename))
	}
	return file.Close()
}
