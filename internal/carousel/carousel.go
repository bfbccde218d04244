// Package carousel drives the slow pan across the active image of the detail
// overlay and advances to the next image when the pan completes.
package carousel

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var ErrSlideOutOfRange = errors.New("slide out of range")

const (
	// Speed is the pan distance in pixels per frame.
	Speed = 0.12
	// MaxOffset is the pan distance after which the slide is finished.
	MaxOffset = 48.0
)

// framesPerSlide counts frames in integers so float drift cannot add a frame.
var framesPerSlide = int(math.Round(MaxOffset / Speed))

type Phase int

const (
	Idle Phase = iota
	Animating
	Finished
)

func (p Phase) String() string {
	switch p {
	case Animating:
		return "animating"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

// State is a point-in-time view of the carousel.
type State struct {
	Phase     string  `json:"phase"`
	Index     int     `json:"index"`
	Slides    int     `json:"slides"`
	Offset    float64 `json:"offset"`
	Transform string  `json:"transform"`
	Completed int     `json:"completed"`
}

// Carousel is the state machine idle -> animating(offset) -> finished. A
// finished slide hands over to the next one (wrapping) on the following
// frame. At most one frame callback is pending at any time.
type Carousel struct {
	sched  Scheduler
	slides int

	mu        sync.Mutex
	phase     Phase
	index     int
	frames    int
	completed int
	frame     FrameID
	pending   bool
	// epoch invalidates callbacks that were already running when the loop
	// was cancelled.
	epoch uint64
}

func New(sched Scheduler, slides int) *Carousel {
	return &Carousel{sched: sched, slides: slides}
}

// Start begins panning the current slide. It is a no-op while a loop runs or
// when there is nothing to show.
func (c *Carousel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slides == 0 || c.phase != Idle {
		return
	}
	c.beginLocked()
}

// Select jumps to slide i, cancelling the running loop first.
func (c *Carousel) Select(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= c.slides {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSlideOutOfRange, i, c.slides)
	}
	c.cancelLocked()
	c.index = i
	c.beginLocked()
	return nil
}

// Cancel stops the loop. No frame callback of the cancelled loop runs
// afterwards.
func (c *Carousel) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Carousel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	offset := float64(c.frames) * Speed
	scale := 1.0
	if c.phase == Animating && c.frames > 0 {
		scale = 1.12
	}
	return State{
		Phase:     c.phase.String(),
		Index:     c.index,
		Slides:    c.slides,
		Offset:    offset,
		Transform: fmt.Sprintf("scale(%.2f) translateX(%.2fpx)", scale, offset),
		Completed: c.completed,
	}
}

func (c *Carousel) beginLocked() {
	c.phase = Animating
	c.frames = 0
	c.scheduleLocked(c.step)
}

func (c *Carousel) cancelLocked() {
	c.epoch++
	if c.pending {
		c.sched.CancelFrame(c.frame)
		c.pending = false
	}
	c.phase = Idle
	c.frames = 0
}

func (c *Carousel) scheduleLocked(fn func()) {
	epoch := c.epoch
	c.pending = true
	c.frame = c.sched.RequestFrame(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if epoch != c.epoch {
			return
		}
		c.pending = false
		fn()
	})
}

// step runs with c.mu held.
func (c *Carousel) step() {
	if c.phase != Animating {
		return
	}
	c.frames++
	if c.frames < framesPerSlide {
		c.scheduleLocked(c.step)
		return
	}
	c.phase = Finished
	c.frames = 0
	c.completed++
	c.scheduleLocked(c.advance)
}

// advance runs with c.mu held.
func (c *Carousel) advance() {
	if c.phase != Finished {
		return
	}
	c.index = (c.index + 1) % c.slides
	c.beginLocked()
}
