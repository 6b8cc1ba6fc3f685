// Package main generates the dashboard's PWA icon set from a single
// source image.
//
// Usage:
//
//	genicons -src assets/logo.png -out web/icons
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// iconSizes are the square sizes the web manifest references.
var iconSizes = []int{192, 512}

func main() {
	src := flag.String("src", "assets/logo.png", "source image (png)")
	out := flag.String("out", "web/icons", "output directory")
	flag.Parse()

	if err := run(*src, *out); err != nil {
		fmt.Fprintln(os.Stderr, "genicons:", err)
		os.Exit(1)
	}
}

func run(srcPath, outDir string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", srcPath, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for _, size := range iconSizes {
		icon := scale(src, size)
		name := filepath.Join(outDir, fmt.Sprintf("icon-%dx%d.png", size, size))
		if err := writePNG(name, icon); err != nil {
			return err
		}
		fmt.Println("wrote", name)
	}
	return nil
}

// scale resizes src to a size x size square using Catmull-Rom
// interpolation, which holds up better than nearest-neighbor when
// shrinking the logo.
func scale(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}
