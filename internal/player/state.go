package player

import "time"

// Quality is a label the viewer picks from the settings menu. Levels map to
// distinct media URLs or the same URL depending on what the catalog stores;
// switching is a position-preserving source swap, not adaptive bitrate.
type Quality string

const (
	QualityAuto Quality = "auto"
	Quality1080 Quality = "1080p"
	Quality720  Quality = "720p"
	Quality480  Quality = "480p"
)

type SkipDirection string

const (
	SkipForward  SkipDirection = "forward"
	SkipBackward SkipDirection = "backward"
)

// DurationUnknown marks a source whose metadata has not loaded yet.
const DurationUnknown float64 = -1

// MediaSource is immutable once a controller is bound to it. Playing a
// different video means building a new controller.
type MediaSource struct {
	URL       string
	PosterURL string
}

// State is a snapshot of everything the rendering layer needs to draw the
// player surface. Snapshots are values; consumers never mutate controller
// state directly.
type State struct {
	CurrentTime     float64
	Duration        float64 // DurationUnknown until metadata loads
	Volume          float64 // 0..1
	Muted           bool
	Quality         Quality
	Playing         bool
	ControlsVisible bool
	SkipIndicator   *SkipDirection
}

func (s State) HasDuration() bool {
	return s.Duration >= 0
}

// DisplayMuted reports whether the volume icon should render as muted.
// Volume zero displays as muted even when the explicit mute toggle is off.
func (s State) DisplayMuted() bool {
	return s.Muted || s.Volume == 0
}

// Config carries the tunable timings of the controller. Zero values fall
// back to the defaults the UI ships with.
type Config struct {
	SkipAmount         float64       // seconds per double-tap skip
	DefaultVolume      float64       // restored when unmuting at volume zero
	ControlsHideDelay  time.Duration // idle time before controls hide while playing
	SkipIndicatorDelay time.Duration // how long the skip overlay stays up
	QualitySettleDelay time.Duration // simulated re-buffer pause on quality switch
}

func (c Config) withDefaults() Config {
	if c.SkipAmount <= 0 {
		c.SkipAmount = 10
	}
	if c.DefaultVolume <= 0 {
		c.DefaultVolume = 0.5
	}
	if c.ControlsHideDelay <= 0 {
		c.ControlsHideDelay = 2500 * time.Millisecond
	}
	if c.SkipIndicatorDelay <= 0 {
		c.SkipIndicatorDelay = 500 * time.Millisecond
	}
	if c.QualitySettleDelay <= 0 {
		c.QualitySettleDelay = 500 * time.Millisecond
	}
	return c
}
