package popstage

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TargetID names an animated value. At most one TweenTarget is live per ID.
type TargetID string

const (
	TargetCameraPosition TargetID = "camera.position"
	TargetCameraRotation TargetID = "camera.rotation"
	TargetDockOffset     TargetID = "dock.offset"
	TargetMarkerOffset   TargetID = "marker.offset"
	TargetAmbientLight   TargetID = "light.ambient"
	TargetPointLight     TargetID = "light.point"
)

// TweenState is the lifecycle state of a TweenTarget.
type TweenState uint8

const (
	TweenIdle      TweenState = iota // seeded, never animated
	TweenRunning                     // interpolating toward To
	TweenCompleted                   // holding To until the next SetTarget
)

func (s TweenState) String() string {
	switch s {
	case TweenRunning:
		return "running"
	case TweenCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// TweenTarget is a time-bounded interpolation of a Vec3 from From to To.
// Each component is driven by its own gween tween, evaluated by absolute
// elapsed time rather than accumulated deltas.
type TweenTarget struct {
	ID        TargetID
	From, To  Vec3
	Duration  time.Duration
	Easing    ease.TweenFunc
	StartedAt time.Duration
	State     TweenState

	tweens [3]*gween.Tween
	value  Vec3
}

// Value returns the last evaluated value.
func (t *TweenTarget) Value() Vec3 {
	return t.value
}

// at computes the interpolated value at now without changing state.
func (t *TweenTarget) at(now time.Duration) (Vec3, bool) {
	if t.State != TweenRunning {
		return t.value, t.State == TweenCompleted
	}
	elapsed := now - t.StartedAt
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= t.Duration {
		return t.To, true
	}
	sec := float32(elapsed.Seconds())
	x, _ := t.tweens[0].Set(sec)
	y, _ := t.tweens[1].Set(sec)
	z, _ := t.tweens[2].Set(sec)
	return Vec3{float64(x), float64(y), float64(z)}, false
}

// TransitionController owns every TweenTarget. It is pull-based: nothing
// advances until Evaluate is called with the current frame time, so the
// clock is injected by the caller.
type TransitionController struct {
	targets map[TargetID]*TweenTarget
	seeds   map[TargetID]Vec3
	order   []TargetID

	retargeted handlerList[*TweenTarget]
}

// NewTransitionController creates a controller with no targets.
func NewTransitionController() *TransitionController {
	return &TransitionController{
		targets: make(map[TargetID]*TweenTarget),
		seeds:   make(map[TargetID]Vec3),
	}
}

// Seed records the resting value of id. A target that has never been
// animated reports this value, and its first SetTarget starts from it.
func (c *TransitionController) Seed(id TargetID, v Vec3) {
	c.seeds[id] = v
	if t, ok := c.targets[id]; !ok || t.State == TweenIdle {
		c.put(&TweenTarget{ID: id, From: v, To: v, State: TweenIdle, value: v})
	}
}

// SetTarget starts animating id toward to. If id is already running, its
// value at now becomes the new starting point and the old destination is
// discarded, so the value never jumps and never two animations compete for
// one id. A zero or negative duration completes immediately. A nil easing
// is linear.
func (c *TransitionController) SetTarget(id TargetID, to Vec3, duration time.Duration, easing ease.TweenFunc, now time.Duration) *TweenTarget {
	from := c.seeds[id]
	if prev, ok := c.targets[id]; ok {
		switch prev.State {
		case TweenRunning:
			from, _ = prev.at(now)
		default:
			from = prev.value
		}
	}
	if easing == nil {
		easing = ease.Linear
	}

	t := &TweenTarget{
		ID:        id,
		From:      from,
		To:        to,
		Duration:  duration,
		Easing:    easing,
		StartedAt: now,
		value:     from,
	}
	if duration <= 0 {
		t.State = TweenCompleted
		t.value = to
	} else {
		t.State = TweenRunning
		d := float32(duration.Seconds())
		t.tweens[0] = gween.New(float32(from.X), float32(to.X), d, easing)
		t.tweens[1] = gween.New(float32(from.Y), float32(to.Y), d, easing)
		t.tweens[2] = gween.New(float32(from.Z), float32(to.Z), d, easing)
	}
	c.put(t)
	c.retargeted.fire(t)
	return t
}

// SetScalar is SetTarget for single-valued targets.
func (c *TransitionController) SetScalar(id TargetID, to float64, duration time.Duration, easing ease.TweenFunc, now time.Duration) *TweenTarget {
	return c.SetTarget(id, Vec3{X: to}, duration, easing, now)
}

// Evaluate returns the value of id at now. Once elapsed time reaches the
// duration the value clamps to the destination and the target completes;
// completed values persist. The bool is false for unknown ids, which
// evaluate to their seed.
func (c *TransitionController) Evaluate(id TargetID, now time.Duration) (Vec3, bool) {
	t, ok := c.targets[id]
	if !ok {
		return c.seeds[id], false
	}
	v, done := t.at(now)
	t.value = v
	if done && t.State == TweenRunning {
		t.State = TweenCompleted
	}
	return v, true
}

// State returns the state of id; unknown ids are idle.
func (c *TransitionController) State(id TargetID) TweenState {
	if t, ok := c.targets[id]; ok {
		return t.State
	}
	return TweenIdle
}

// Target returns the live target for id, or nil.
func (c *TransitionController) Target(id TargetID) *TweenTarget {
	return c.targets[id]
}

// IDs returns every known target id in registration order.
func (c *TransitionController) IDs() []TargetID {
	return c.order
}

// Running returns the number of targets still interpolating.
func (c *TransitionController) Running() int {
	n := 0
	for _, t := range c.targets {
		if t.State == TweenRunning {
			n++
		}
	}
	return n
}

// OnRetarget registers fn to receive every target started by SetTarget.
func (c *TransitionController) OnRetarget(fn func(*TweenTarget)) CallbackHandle {
	return c.retargeted.add(fn)
}

func (c *TransitionController) put(t *TweenTarget) {
	if _, ok := c.targets[t.ID]; !ok {
		c.order = append(c.order, t.ID)
	}
	c.targets[t.ID] = t
}
