// Derivative generation, built on:
// github.com/fogleman/gg for the crop canvases and
// golang.org/x/image for additional decode support and resampling.
package images

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Metadata is the intrinsic metadata ProcessImage extracts from the
// original: width, height, format.
type Metadata struct {
	Width  int
	Height int
	Format string
}

// Derived is the set of five local derivative files ProcessImage produces,
// plus their byte sizes and the original's intrinsic metadata.
type Derived struct {
	Paths    map[Derivative]string
	Sizes    map[Derivative]int64
	Metadata Metadata
}

// Processor is the image-processing collaborator used in step 2 of the
// pipeline:
// given a source path and output directory, produce five derivatives with
// deterministic suffixes.
type Processor interface {
	Process(srcPath, outputDir, filenameStem string) (Derived, error)
}

type processor struct{}

func NewProcessor() Processor { return processor{} }

// thumbnailMaxDim bounds the thumbnail's longest edge; the three crops are
// the largest centered crops of the original at each fixed aspect ratio.
const thumbnailMaxDim = 320

func (processor) Process(srcPath, outputDir, filenameStem string) (Derived, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return Derived{}, fmt.Errorf("images: open source: %w", err)
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return Derived{}, fmt.Errorf("images: decode source: %w", err)
	}

	bounds := src.Bounds()
	meta := Metadata{Width: bounds.Dx(), Height: bounds.Dy(), Format: format}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Derived{}, fmt.Errorf("images: mkdir output dir: %w", err)
	}

	out := Derived{Paths: make(map[Derivative]string, 5), Sizes: make(map[Derivative]int64, 5), Metadata: meta}

	jobs := []struct {
		d    Derivative
		make func() image.Image
	}{
		{DerivativeOriginal, func() image.Image { return src }},
		{DerivativeThumbnail, func() image.Image { return resizeToFit(src, thumbnailMaxDim, thumbnailMaxDim) }},
		{DerivativeCrop3x2, func() image.Image { return cropToAspect(src, 3, 2) }},
		{DerivativeCrop4x3, func() image.Image { return cropToAspect(src, 4, 3) }},
		{DerivativeCrop16x9, func() image.Image { return cropToAspect(src, 16, 9) }},
	}

	for _, j := range jobs {
		img := j.make()
		path := filepath.Join(outputDir, filenameStem+suffixFor(j.d)+".jpg")
		size, err := writeJPEG(path, img)
		if err != nil {
			return Derived{}, fmt.Errorf("images: write %s: %w", j.d, err)
		}
		out.Paths[j.d] = path
		out.Sizes[j.d] = size
	}

	return out, nil
}

func writeJPEG(path string, img image.Image) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 88}); err != nil {
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// resizeToFit scales src so neither dimension exceeds maxW/maxH, keeping
// aspect ratio, using x/image's high-quality Catmull-Rom scaler.
func resizeToFit(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}
	scale := float64(maxW) / float64(w)
	if hs := float64(maxH) / float64(h); hs < scale {
		scale = hs
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// cropToAspect center-crops src to the given aspect ratio (w:h), drawing
// through a gg.Context.
func cropToAspect(src image.Image, aspectW, aspectH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	targetRatio := float64(aspectW) / float64(aspectH)
	srcRatio := float64(w) / float64(h)

	var cw, ch int
	if srcRatio > targetRatio {
		ch = h
		cw = int(float64(h) * targetRatio)
	} else {
		cw = w
		ch = int(float64(w) / targetRatio)
	}
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}
	x0 := b.Min.X + (w-cw)/2
	y0 := b.Min.Y + (h-ch)/2

	dc := gg.NewContext(cw, ch)
	cropped := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(cropped, cropped.Bounds(), src, image.Pt(x0, y0), draw.Src)
	dc.DrawImage(cropped, 0, 0)
	return dc.Image()
}
