package player

import (
	"sync"

	"github.com/rs/zerolog"
)

// Controller owns the playback state for a single bound media source. All
// mutation flows through its methods; the rendering layer observes state
// through Subscribe and never writes it back.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	src    MediaSource
	state  State
	logger zerolog.Logger

	hideTimer   *oneShot
	skipTimer   *oneShot
	settleTimer *oneShot

	// quality switches queue while a settle delay is in flight so a second
	// switch can't corrupt the captured resume position
	settling       bool
	pendingQuality []Quality
	subs           map[int]func(State)
	nextSubscriber int
	closed         bool
}

func New(src MediaSource, cfg Config, logger zerolog.Logger) *Controller {
	c := &Controller{
		cfg:    cfg.withDefaults(),
		src:    src,
		logger: logger,
		subs:   make(map[int]func(State)),
		state: State{
			Duration:        DurationUnknown,
			Volume:          1,
			Quality:         QualityAuto,
			ControlsVisible: true,
		},
	}
	c.hideTimer = newOneShot(c.onHideTimer)
	c.skipTimer = newOneShot(c.onSkipTimer)
	return c
}

func (c *Controller) Source() MediaSource {
	return c.src
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers an observer and delivers the current snapshot
// immediately. The returned func unregisters it.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSubscriber
	c.nextSubscriber++
	c.subs[id] = fn
	snap := c.snapshotLocked()
	c.mu.Unlock()

	fn(snap)

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Close stops all timers and drops observers. The controller must not be
// used afterwards; binding a new source means building a new controller.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.subs = make(map[int]func(State))
	settle := c.settleTimer
	c.mu.Unlock()

	c.hideTimer.Stop()
	c.skipTimer.Stop()
	if settle != nil {
		settle.Stop()
	}
}

// SetDuration is called by the rendering layer once source metadata loads.
func (c *Controller) SetDuration(d float64) {
	c.mu.Lock()
	defer c.notify(c.mu.Unlock)

	if d < 0 {
		d = DurationUnknown
	}
	c.state.Duration = d
	if d >= 0 && c.state.CurrentTime > d {
		c.state.CurrentTime = d
	}
}

func (c *Controller) Play() {
	c.mu.Lock()
	defer c.notify(c.mu.Unlock)

	if c.state.Playing {
		return
	}
	c.state.Playing = true
	c.hideTimer.Restart(c.cfg.ControlsHideDelay)
}

// Pause forces the controls visible and keeps them pinned until playback
// resumes.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.notify(c.mu.Unlock)

	if !c.state.Playing {
		return
	}
	c.state.Playing = false
	c.state.ControlsVisible = true
	c.hideTimer.Stop()
}

func (c *Controller) TogglePlay() {
	c.mu.Lock()
	playing := c.state.Playing
	c.mu.Unlock()

	if playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// SeekTo clamps t to the known duration. Before metadata loads only the
// lower bound applies.
func (c *Controller) SeekTo(t float64) {
	c.mu.Lock()
	defer c.notify(c.mu.Unlock)

	c.state.CurrentTime = c.clampLocked(t)
}

// Skip seeks by the configured amount and raises the transient direction
// indicator, which clears on its own timer independent of control
// visibility.
func (c *Controller) Skip(dir SkipDirection) {
	c.mu.Lock()
	defer c.notify(c.mu.Unlock)

	amount := c.cfg.SkipAmount
	if dir == SkipBackward {
		amount = -amount
	}
	c.state.CurrentTime = c.clampLocked(c.state.CurrentTime + amount)

	d := dir
	c.state.SkipIndicator = &d
	c.skipTimer.Restart(c.cfg.SkipIndicatorDelay)
}

func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.notify(c.mu.Unlock)

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.state.Volume = v
	c.state.Muted = v == 0
}

// ToggleMute flips the explicit mute flag. Unmuting with the volume at zero
// restores the default volume so audio is actually audible.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	defer c.notify(c.mu.Unlock)

	c.state.Muted = !c.state.Muted
	if !c.state.Muted && c.state.Volume == 0 {
		c.state.Volume = c.cfg.DefaultVolume
	}
}

// SetQuality swaps the source behind the surface: capture position and
// play state, pause, wait out the settle delay, then restore both. A call
// arriving mid-settle queues and applies after the current switch lands.
func (c *Controller) SetQuality(q Quality) {
	c.mu.Lock()

	if c.settling {
		c.pendingQuality = append(c.pendingQuality, q)
		c.mu.Unlock()
		return
	}
	c.startSwitchLocked(q)
	c.notify(c.mu.Unlock)
}

func (c *Controller) startSwitchLocked(q Quality) {
	resumeAt := c.state.CurrentTime
	wasPlaying := c.state.Playing

	c.state.Quality = q
	c.state.Playing = false
	c.settling = true

	c.logger.Debug().
		Str("quality", string(q)).
		Float64("resume_at", resumeAt).
		Bool("was_playing", wasPlaying).
		Msg("quality switch, settling")

	// not restartable on purpose: a settle in flight always runs to
	// completion before the next queued switch starts
	settle := newOneShot(func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}

		c.state.CurrentTime = c.clampLocked(resumeAt)
		c.state.Playing = wasPlaying
		if wasPlaying {
			c.hideTimer.Restart(c.cfg.ControlsHideDelay)
		}
		c.settling = false

		if len(c.pendingQuality) > 0 {
			next := c.pendingQuality[0]
			c.pendingQuality = c.pendingQuality[1:]
			c.startSwitchLocked(next)
		}

		c.notify(c.mu.Unlock)
	})
	c.settleTimer = settle
	settle.Restart(c.cfg.QualitySettleDelay)
}

// NotifyActivity is called on any pointer movement over the surface.
func (c *Controller) NotifyActivity() {
	c.mu.Lock()
	defer c.notify(c.mu.Unlock)

	c.state.ControlsVisible = true
	if c.state.Playing {
		c.hideTimer.Restart(c.cfg.ControlsHideDelay)
	}
}

// NotifyPointerLeft hides the controls immediately while playing, matching
// the cursor leaving the player surface.
func (c *Controller) NotifyPointerLeft() {
	c.mu.Lock()
	defer c.notify(c.mu.Unlock)

	if c.state.Playing {
		c.state.ControlsVisible = false
	}
}

func (c *Controller) onHideTimer() {
	c.mu.Lock()
	if !c.state.Playing || !c.state.ControlsVisible {
		c.mu.Unlock()
		return
	}
	c.state.ControlsVisible = false
	c.notify(c.mu.Unlock)
}

func (c *Controller) onSkipTimer() {
	c.mu.Lock()
	if c.state.SkipIndicator == nil {
		c.mu.Unlock()
		return
	}
	c.state.SkipIndicator = nil
	c.notify(c.mu.Unlock)
}

func (c *Controller) clampLocked(t float64) float64 {
	if t < 0 {
		return 0
	}
	if c.state.Duration >= 0 && t > c.state.Duration {
		return c.state.Duration
	}
	return t
}

func (c *Controller) snapshotLocked() State {
	snap := c.state
	if c.state.SkipIndicator != nil {
		d := *c.state.SkipIndicator
		snap.SkipIndicator = &d
	}
	return snap
}

// notify releases the lock via unlock and then delivers the current
// snapshot to all observers. Meant to be deferred with c.mu.Unlock.
func (c *Controller) notify(unlock func()) {
	if c.closed {
		unlock()
		return
	}
	snap := c.snapshotLocked()
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
