package sequencer

import (
	"context"
	"time"
)

// framesPerSecond is the UI/slew update-rate callback frequency (§5
// "a frame callback (≈60 Hz)").
const framesPerSecond = 60

// Clock drives a Project's tick and frame callbacks cooperatively on a
// single goroutine, matching §5's scheduling model: "Single-threaded
// cooperative with two callback rates ... Both run on the same
// executor; no preemption between callbacks."
type Clock struct {
	Project *Project

	tick Tick

	tempoBpm float32

	// OnTick and OnFrame are optional hooks a caller (e.g. a UI or the
	// mixer) can attach to observe each callback; Run invokes them
	// after the Project's own TickAll/UpdateAll.
	OnTick  func(tick Tick)
	OnFrame func(dt float32)
}

// NewClock returns a clock bound to p, with its tick rate derived from
// p.TempoBpm at construction time.
func NewClock(p *Project) *Clock {
	c := &Clock{Project: p}
	c.tempoBpm = p.TempoBpm
	return c
}

// tickInterval returns the wall-clock duration of one tick at bpm,
// PPQN ticks per quarter note (§4.1, §5).
func tickInterval(bpm float32) time.Duration {
	if bpm <= 0 {
		bpm = 120
	}
	ticksPerSecond := float64(PPQN) * float64(bpm) / 60
	return time.Duration(float64(time.Second) / ticksPerSecond)
}

// Run drives tick and frame callbacks until ctx is cancelled. Both
// timers are serviced from the same select loop, so a tick callback
// and a frame callback never run concurrently with each other (§5
// "no preemption between callbacks"). Tempo changes made to
// c.Project.TempoBpm between iterations take effect on the next tick
// period without restarting the frame timer.
func (c *Clock) Run(ctx context.Context) {
	tickTimer := time.NewTicker(tickInterval(c.tempoBpm))
	frameTimer := time.NewTicker(time.Second / framesPerSecond)
	defer tickTimer.Stop()
	defer frameTimer.Stop()

	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tickTimer.C:
			if c.Project.TempoBpm != c.tempoBpm {
				c.tempoBpm = c.Project.TempoBpm
				tickTimer.Reset(tickInterval(c.tempoBpm))
			}
			if !c.Project.Playing {
				continue
			}
			c.tick++
			c.Project.TickAll(c.tick)
			if c.OnTick != nil {
				c.OnTick(c.tick)
			}
		case now := <-frameTimer.C:
			dt := float32(now.Sub(lastFrame).Seconds())
			lastFrame = now
			c.Project.UpdateAll(dt)
			if c.OnFrame != nil {
				c.OnFrame(dt)
			}
		}
	}
}

// Reset zeroes the tick counter and the project's master tick, used on
// transport stop/restart (§4.1 "reset() idempotent" propagated up to
// the clock that owns the tick counter the engines are driven from).
func (c *Clock) Reset() {
	c.tick = 0
	c.Project.MasterTick = 0
	for _, t := range c.Project.Tracks {
		if t == nil {
			continue
		}
		t.Engine().Reset()
	}
}
