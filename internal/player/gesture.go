package player

// TargetKind says what the pointer landed on. Taps on interactive controls
// (sliders, buttons) must not toggle playback.
type TargetKind int

const (
	TargetSurface TargetKind = iota
	TargetControl
)

// PointerEvent is a pointer interaction on the player surface, with the
// horizontal position and surface width needed to classify skip zones.
type PointerEvent struct {
	X      float64
	Width  float64
	Target TargetKind
}

// GestureHandler turns raw pointer events into controller operations.
type GestureHandler struct {
	ctrl *Controller
}

func NewGestureHandler(ctrl *Controller) *GestureHandler {
	return &GestureHandler{ctrl: ctrl}
}

// Tap toggles play/pause unless the tap landed on an interactive control,
// in which case playback is untouched.
func (g *GestureHandler) Tap(ev PointerEvent) {
	if ev.Target == TargetControl {
		return
	}
	g.ctrl.TogglePlay()
}

// DoubleTap classifies by horizontal position: right half skips forward,
// left half skips backward.
func (g *GestureHandler) DoubleTap(ev PointerEvent) {
	if ev.X > ev.Width/2 {
		g.ctrl.Skip(SkipForward)
	} else {
		g.ctrl.Skip(SkipBackward)
	}
}

// Move reports pointer movement, which shows the controls and restarts the
// hide countdown.
func (g *GestureHandler) Move(PointerEvent) {
	g.ctrl.NotifyActivity()
}

// Leave reports the pointer exiting the surface.
func (g *GestureHandler) Leave() {
	g.ctrl.NotifyPointerLeft()
}
