package export

import (
	"image"
	"sync"
)

// imagePool recycles frame buffers of one size between rasterized frames.
type imagePool struct {
	pool          sync.Pool
	width, height int
}

func newImagePool(width, height int) *imagePool {
	return &imagePool{
		width:  width,
		height: height,
		pool: sync.Pool{
			New: func() any {
				return image.NewRGBA(image.Rect(0, 0, width, height))
			},
		},
	}
}

func (p *imagePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put drops buffers of the wrong size; renderInto clears reused ones.
func (p *imagePool) Put(img *image.RGBA) {
	if img.Rect.Dx() == p.width && img.Rect.Dy() == p.height {
		p.pool.Put(img)
	}
}
