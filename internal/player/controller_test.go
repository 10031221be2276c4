package player

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testConfig() Config {
	return Config{
		SkipAmount:         10,
		DefaultVolume:      0.5,
		ControlsHideDelay:  40 * time.Millisecond,
		SkipIndicatorDelay: 20 * time.Millisecond,
		QualitySettleDelay: 20 * time.Millisecond,
	}
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	c := New(MediaSource{URL: "https://cdn.example.com/v.mp4"}, testConfig(), zerolog.Nop())
	t.Cleanup(c.Close)
	return c
}

func TestSeekTo(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		seek     float64
		want     float64
	}{
		{name: "withinRange", duration: 100, seek: 42, want: 42},
		{name: "atZero", duration: 100, seek: 0, want: 0},
		{name: "atDuration", duration: 100, seek: 100, want: 100},
		{name: "clampedAbove", duration: 100, seek: 150, want: 100},
		{name: "clampedBelow", duration: 100, seek: -5, want: 0},
		{name: "unknownDurationKeepsTarget", duration: DurationUnknown, seek: 33, want: 33},
		{name: "unknownDurationClampsNegative", duration: DurationUnknown, seek: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t)
			c.SetDuration(tt.duration)
			c.SeekTo(tt.seek)
			if got := c.State().CurrentTime; got != tt.want {
				t.Errorf("CurrentTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSkip(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		dir   SkipDirection
		want  float64
	}{
		{name: "forward", start: 30, dir: SkipForward, want: 40},
		{name: "forwardClampedAtEnd", start: 95, dir: SkipForward, want: 100},
		{name: "backward", start: 30, dir: SkipBackward, want: 20},
		{name: "backwardClampedAtZero", start: 4, dir: SkipBackward, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t)
			c.SetDuration(100)
			c.SeekTo(tt.start)
			c.Skip(tt.dir)

			state := c.State()
			if state.CurrentTime != tt.want {
				t.Errorf("CurrentTime = %v, want %v", state.CurrentTime, tt.want)
			}
			if state.SkipIndicator == nil || *state.SkipIndicator != tt.dir {
				t.Errorf("SkipIndicator = %v, want %v", state.SkipIndicator, tt.dir)
			}
		})
	}
}

func TestSkipIndicatorClears(t *testing.T) {
	c := newTestController(t)
	c.SetDuration(100)

	c.Skip(SkipForward)
	if c.State().SkipIndicator == nil {
		t.Fatal("indicator not raised")
	}

	time.Sleep(60 * time.Millisecond)
	if c.State().SkipIndicator != nil {
		t.Error("indicator still set after clear delay")
	}
}

func TestSkipIndicatorRestartsNotStacks(t *testing.T) {
	c := newTestController(t)
	c.SetDuration(100)

	c.Skip(SkipForward)
	time.Sleep(12 * time.Millisecond)
	c.Skip(SkipBackward)

	// first timer would have fired by now; the restart must keep the
	// second indicator alive
	time.Sleep(12 * time.Millisecond)
	state := c.State()
	if state.SkipIndicator == nil || *state.SkipIndicator != SkipBackward {
		t.Errorf("SkipIndicator = %v, want backward still visible", state.SkipIndicator)
	}
}

func TestSetVolume(t *testing.T) {
	tests := []struct {
		name      string
		volume    float64
		want      float64
		wantMuted bool
	}{
		{name: "audible", volume: 0.7, want: 0.7, wantMuted: false},
		{name: "zeroMutes", volume: 0, want: 0, wantMuted: true},
		{name: "clampedHigh", volume: 1.5, want: 1, wantMuted: false},
		{name: "clampedLow", volume: -0.5, want: 0, wantMuted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t)
			c.SetVolume(tt.volume)

			state := c.State()
			if state.Volume != tt.want {
				t.Errorf("Volume = %v, want %v", state.Volume, tt.want)
			}
			if state.Muted != tt.wantMuted {
				t.Errorf("Muted = %v, want %v", state.Muted, tt.wantMuted)
			}
		})
	}
}

func TestToggleMuteRestoresDefaultVolume(t *testing.T) {
	c := newTestController(t)

	c.SetVolume(0)
	if !c.State().Muted {
		t.Fatal("volume zero should mute")
	}

	c.ToggleMute()
	state := c.State()
	if state.Muted {
		t.Error("still muted after toggle")
	}
	if state.Volume != 0.5 {
		t.Errorf("Volume = %v, want default 0.5 restored", state.Volume)
	}
}

func TestToggleMuteKeepsVolume(t *testing.T) {
	c := newTestController(t)

	c.SetVolume(0.8)
	c.ToggleMute()
	if state := c.State(); !state.Muted || state.Volume != 0.8 {
		t.Errorf("state = %+v, want muted with volume 0.8", state)
	}

	c.ToggleMute()
	if state := c.State(); state.Muted || state.Volume != 0.8 {
		t.Errorf("state = %+v, want unmuted with volume 0.8", state)
	}
}

func TestPlayPauseIdempotent(t *testing.T) {
	c := newTestController(t)

	c.Play()
	c.Play()
	if !c.State().Playing {
		t.Error("not playing after Play")
	}

	c.Pause()
	c.Pause()
	if c.State().Playing {
		t.Error("still playing after Pause")
	}
}

func TestSetQualityRestoresPositionAndPlayback(t *testing.T) {
	c := newTestController(t)
	c.SetDuration(120)
	c.SeekTo(42)
	c.Play()

	c.SetQuality(Quality720)

	// paused during settle
	state := c.State()
	if state.Playing {
		t.Error("still playing during settle")
	}
	if state.Quality != Quality720 {
		t.Errorf("Quality = %v, want 720p", state.Quality)
	}

	time.Sleep(50 * time.Millisecond)
	state = c.State()
	if !state.Playing {
		t.Error("playback not resumed after settle")
	}
	if state.CurrentTime != 42 {
		t.Errorf("CurrentTime = %v, want 42 preserved", state.CurrentTime)
	}
}

func TestSetQualityWhilePausedStaysPaused(t *testing.T) {
	c := newTestController(t)
	c.SetDuration(120)
	c.SeekTo(10)

	c.SetQuality(Quality480)
	time.Sleep(50 * time.Millisecond)

	state := c.State()
	if state.Playing {
		t.Error("quality switch resumed a paused player")
	}
	if state.CurrentTime != 10 {
		t.Errorf("CurrentTime = %v, want 10", state.CurrentTime)
	}
}

func TestSetQualityQueuesDuringSettle(t *testing.T) {
	c := newTestController(t)
	c.SetDuration(120)
	c.SeekTo(42)
	c.Play()

	c.SetQuality(Quality1080)
	c.SetQuality(Quality480)

	// first settle done, second switch now in flight
	time.Sleep(30 * time.Millisecond)
	if got := c.State().Quality; got != Quality480 {
		t.Errorf("Quality = %v, want queued 480p applied", got)
	}

	time.Sleep(30 * time.Millisecond)
	state := c.State()
	if !state.Playing {
		t.Error("playback not resumed after queued switch")
	}
	if state.CurrentTime != 42 {
		t.Errorf("CurrentTime = %v, want 42 preserved across both switches", state.CurrentTime)
	}
}

func TestControlsHideWhilePlaying(t *testing.T) {
	c := newTestController(t)

	c.Play()
	if !c.State().ControlsVisible {
		t.Fatal("controls should start visible")
	}

	time.Sleep(80 * time.Millisecond)
	if c.State().ControlsVisible {
		t.Error("controls still visible after hide delay")
	}

	c.NotifyActivity()
	if !c.State().ControlsVisible {
		t.Error("activity should restore controls")
	}
}

func TestControlsPinnedWhilePaused(t *testing.T) {
	c := newTestController(t)

	c.Play()
	c.Pause()

	time.Sleep(80 * time.Millisecond)
	if !c.State().ControlsVisible {
		t.Error("pause must pin controls visible")
	}
}

func TestActivityRestartsHideTimer(t *testing.T) {
	c := newTestController(t)
	c.Play()

	// keep nudging before the delay elapses
	for i := 0; i < 4; i++ {
		time.Sleep(25 * time.Millisecond)
		c.NotifyActivity()
	}
	if !c.State().ControlsVisible {
		t.Error("controls hid despite continuous activity")
	}

	time.Sleep(80 * time.Millisecond)
	if c.State().ControlsVisible {
		t.Error("controls did not hide once activity ceased")
	}
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	c := newTestController(t)
	c.SetDuration(100)

	var mu sync.Mutex
	var got []State
	unsubscribe := c.Subscribe(func(s State) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})

	c.Play()
	c.SeekTo(5)

	mu.Lock()
	n := len(got)
	last := got[n-1]
	mu.Unlock()

	if n < 3 { // initial + play + seek
		t.Fatalf("got %d snapshots, want at least 3", n)
	}
	if !last.Playing || last.CurrentTime != 5 {
		t.Errorf("last snapshot = %+v, want playing at 5s", last)
	}

	unsubscribe()
	c.Pause()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != n {
		t.Error("snapshot delivered after unsubscribe")
	}
}

func TestCloseStopsPendingQualitySettle(t *testing.T) {
	// a long settle delay so Close always lands before the timer could fire
	cfg := testConfig()
	cfg.QualitySettleDelay = 200 * time.Millisecond
	c := New(MediaSource{URL: "https://cdn.example.com/v.mp4"}, cfg, zerolog.Nop())
	c.SetDuration(100)
	c.SeekTo(42)
	c.Play()

	var mu sync.Mutex
	var calls int

	c.Subscribe(func(State) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	c.SetQuality(Quality720)
	c.Close()

	mu.Lock()
	before := calls
	mu.Unlock()

	time.Sleep(2 * cfg.QualitySettleDelay)

	if st := c.State(); st.Playing {
		t.Error("settle fired after Close and resumed playback")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != before {
		t.Errorf("%d snapshots delivered after Close", calls-before)
	}
}
