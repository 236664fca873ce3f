package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"point-shadows/libio"

	"github.com/chewxy/math32"
	"golang.org/x/exp/slices"
)

type statsArgs struct {
	commonArgs
	sort bool
}

func createStatsCommand() *command {
	args := statsArgs{}

	flags := flag.NewFlagSet("stats", flag.ExitOnError)

	registerCommonFlags(flags, &args.commonArgs)
	flags.BoolVar(&args.sort, "sort", args.sort, "order faces by mean distance")

	return &command{
		Name: "stats",
		Help: "print light distance statistics of depth cube dumps",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			for _, p := range gatherInputFiles(self.Flags.Args()) {
				cube, err := readCube(p)
				if softerr(err) {
					continue
				}
				fmt.Printf("%s\n", p)
				printStats(os.Stdout, cube, args.sort)
			}
		},
		Flags: flags,
	}
}

type namedStats struct {
	Name string
	libio.FaceStats
}

func cubeStats(cube *libio.DepthCube, sorted bool) []namedStats {
	stats := make([]namedStats, len(cube.Faces))
	for i := range cube.Faces {
		stats[i] = namedStats{libio.FaceNames[i], cube.Stats(i)}
	}
	if sorted {
		slices.SortStableFunc(stats, func(a, b namedStats) int {
			switch {
			case a.Mean < b.Mean:
				return -1
			case a.Mean > b.Mean:
				return 1
			}
			return 0
		})
	}
	return stats
}

// totalStats combines the per face statistics, faces have equal texel counts.
func totalStats(stats []namedStats) libio.FaceStats {
	total := libio.FaceStats{Min: math32.Inf(1), Max: math32.Inf(-1)}
	if len(stats) == 0 {
		return libio.FaceStats{}
	}
	for _, s := range stats {
		total.Min = math32.Min(total.Min, s.Min)
		total.Max = math32.Max(total.Max, s.Max)
		total.Mean += s.Mean / float32(len(stats))
		total.Cleared += s.Cleared
	}
	return total
}

func printStats(w io.Writer, cube *libio.DepthCube, sorted bool) {
	texels := cube.Size * cube.Size
	fmt.Fprintf(w, "  size %d, near %g, far %g, light (%g, %g, %g)\n", cube.Size, cube.Near, cube.Far, cube.Light[0], cube.Light[1], cube.Light[2])
	fmt.Fprintf(w, "  %-5s %9s %9s %9s %8s\n", "face", "min", "max", "mean", "cleared")
	stats := cubeStats(cube, sorted)
	for _, s := range stats {
		fmt.Fprintf(w, "  %-5s %9.3f %9.3f %9.3f %7.1f%%\n", s.Name, s.Min, s.Max, s.Mean, percent(s.Cleared, texels))
	}
	t := totalStats(stats)
	fmt.Fprintf(w, "  %-5s %9.3f %9.3f %9.3f %7.1f%%\n", "all", t.Min, t.Max, t.Mean, percent(t.Cleared, texels*len(stats)))
}

func percent(n, of int) float32 {
	if of == 0 {
		return 0
	}
	return float32(n) / float32(of) * 100
}
