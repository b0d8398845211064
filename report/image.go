package report

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"hypersurface/core"
)

// HeightMap paints one pixel per grid node: x follows phi, y follows theta
// from the top pole down.
func HeightMap(grid *core.SurfaceGrid) *image.NRGBA {
	cols := grid.Columns()
	img := image.NewNRGBA(image.Rect(0, 0, cols, cols))
	for i := 0; i < cols; i++ {
		for j := 0; j < cols; j++ {
			img.SetNRGBA(j, i, grid.Node(i, j).Color.NRGBA())
		}
	}
	return img
}

// WritePNG encodes the height map scaled to width x height.
func WritePNG(w io.Writer, grid *core.SurfaceGrid, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", width, height)
	}
	src := HeightMap(grid)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
