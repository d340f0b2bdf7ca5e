package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"sync"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/scene"
)

type GIFOptions struct {
	Width, Height int
	// FrameMs is the display time of one step.
	FrameMs int
	// Workers bounds the frames rasterized at once.
	Workers int
}

func DefaultGIFOptions() GIFOptions {
	return GIFOptions{Width: 640, Height: 480, FrameMs: 500, Workers: 4}
}

// ScenesToGIF writes every scene as one frame of a looping GIF.
func ScenesToGIF(w io.Writer, scenes []scene.Scene, bounds geom.Rect, opts GIFOptions) error {
	if len(scenes) == 0 {
		return fmt.Errorf("gif: no scenes")
	}
	def := DefaultGIFOptions()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = def.Width, def.Height
	}
	if opts.FrameMs <= 0 {
		opts.FrameMs = def.FrameMs
	}
	delay := opts.FrameMs / 10
	if delay < 1 {
		delay = 1
	}

	if opts.Workers < 1 {
		opts.Workers = 1
	}

	anim := gif.GIF{
		LoopCount: 0,
		Image:     rasterizeFrames(scenes, bounds, opts),
		Delay:     make([]int, len(scenes)),
	}
	for i := range anim.Delay {
		anim.Delay[i] = delay
	}
	if err := gif.EncodeAll(w, &anim); err != nil {
		return fmt.Errorf("gif: %w", err)
	}
	return nil
}

// rasterizeFrames renders scenes into paletted frames on opts.Workers
// goroutines. Frame i always lands at index i.
func rasterizeFrames(scenes []scene.Scene, bounds geom.Rect, opts GIFOptions) []*image.Paletted {
	frames := make([]*image.Paletted, len(scenes))
	pool := newImagePool(opts.Width, opts.Height)
	next := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				rgba := pool.Get()
				renderInto(rgba, scenes[i], bounds)
				frame := image.NewPaletted(rgba.Bounds(), palette.Plan9)
				draw.Draw(frame, frame.Rect, rgba, image.Point{}, draw.Src)
				pool.Put(rgba)
				frames[i] = frame
			}
		}()
	}
	for i := range scenes {
		next <- i
	}
	close(next)
	wg.Wait()
	return frames
}
