package gui

import "fmt"

// Playback is the frame clock of the window player.
type Playback struct {
	Steps   int
	Step    int
	Playing bool
	frame   float64
	elapsed float64
}

func NewPlayback(steps, frameMs int) *Playback {
	if frameMs <= 0 {
		frameMs = 500
	}
	return &Playback{Steps: steps, frame: float64(frameMs) / 1000}
}

// Toggle starts or stops playing. Playing from the last step rewinds.
func (p *Playback) Toggle() {
	if p.Playing {
		p.Playing = false
		return
	}
	if p.Steps < 2 {
		return
	}
	if p.Step >= p.Steps-1 {
		p.Step = 0
	}
	p.Playing = true
	p.elapsed = 0
}

// Seek pauses and jumps to step t, clamped to the available steps.
func (p *Playback) Seek(t int) {
	p.Playing = false
	if t > p.Steps-1 {
		t = p.Steps - 1
	}
	if t < 0 {
		t = 0
	}
	p.Step = t
}

// Advance moves the clock by dt seconds, stepping once per elapsed frame and
// stopping on the last step.
func (p *Playback) Advance(dt float64) {
	if !p.Playing {
		return
	}
	p.elapsed += dt
	for p.elapsed >= p.frame {
		p.elapsed -= p.frame
		if p.Step >= p.Steps-1 {
			p.Playing = false
			return
		}
		p.Step++
	}
}

func (p *Playback) Label() string {
	return fmt.Sprintf("t = %d / %d", p.Step, p.Steps)
}
