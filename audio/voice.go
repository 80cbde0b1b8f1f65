package audio

import (
	"io"
	"math"

	"github.com/gopxl/beep"
)

// fadeState is the direction of a voice's fade envelope
type fadeState int

const (
	fadeNone fadeState = iota
	fadeIn
	fadeOut
)

// ramp moves a gain toward a target by a fixed step per frame
type ramp struct {
	value  float64
	target float64
	step   float64
}

func (r *ramp) set(v float64) {
	r.value, r.target, r.step = v, v, 0
}

// to schedules a move to target over frames; frames <= 0 jumps immediately
func (r *ramp) to(target float64, frames int) {
	if frames <= 0 {
		r.set(target)
		return
	}
	r.target = target
	r.step = math.Abs(target-r.value) / float64(frames)
}

func (r *ramp) advance() {
	if r.step == 0 {
		return
	}
	if r.value < r.target {
		r.value = math.Min(r.value+r.step, r.target)
	} else {
		r.value = math.Max(r.value-r.step, r.target)
	}
	if r.value == r.target {
		r.step = 0
	}
}

// voice is one mixer slot
// Volume and fade period persist across plays on the same slot
type voice struct {
	gen    uint32
	src    beep.Streamer
	closer io.Closer

	left, right ramp

	volume     float64 // ParamVolume
	fadePeriod float64 // ParamFadePeriod, seconds

	fade      float64
	fadeStep  float64
	fadeState fadeState

	err error
}

func newVoice() voice {
	return voice{volume: 1}
}

func (v *voice) active() bool {
	return v.src != nil
}

// start binds a new source; fadeFrames > 0 with mode&PlayFadeIn ramps in from silence
func (v *voice) start(gen uint32, src beep.Streamer, closer io.Closer, mode PlayMode, fadeFrames int) {
	v.stop()

	v.gen = gen
	v.src = src
	v.closer = closer
	v.err = nil

	v.fade, v.fadeStep, v.fadeState = 1, 0, fadeNone
	if mode&PlayFadeIn != 0 && fadeFrames > 0 {
		v.fade = 0
		v.fadeStep = 1.0 / float64(fadeFrames)
		v.fadeState = fadeIn
	}
}

// stop releases the source; the generation is kept so stale ids stay stale
func (v *voice) stop() {
	if v.closer != nil {
		v.closer.Close()
	}
	v.src = nil
	v.closer = nil
	v.fadeState = fadeNone
}

// beginFadeOut ramps the voice to silence over frames and then stops it
func (v *voice) beginFadeOut(frames int) {
	if !v.active() {
		return
	}
	if frames <= 0 {
		v.stop()
		return
	}
	v.fadeStep = 1.0 / float64(frames)
	v.fadeState = fadeOut
}

func (v *voice) advanceFade() {
	switch v.fadeState {
	case fadeIn:
		v.fade += v.fadeStep
		if v.fade >= 1 {
			v.fade = 1
			v.fadeState = fadeNone
		}
	case fadeOut:
		v.fade -= v.fadeStep
		if v.fade <= 0 {
			v.fade = 0
			v.stop()
		}
	}
}

// mix adds the voice into dst, using buf as decode scratch
func (v *voice) mix(dst, buf [][2]float64) {
	if !v.active() {
		return
	}
	buf = buf[:len(dst)]

	filled := 0
	drained := false
	for filled < len(buf) {
		n, ok := v.src.Stream(buf[filled:])
		filled += n
		if !ok || n == 0 {
			drained = true
			break
		}
	}

	for i := 0; i < filled; i++ {
		v.left.advance()
		v.right.advance()
		g := v.volume * v.fade
		dst[i][0] += buf[i][0] * v.left.value * g
		dst[i][1] += buf[i][1] * v.right.value * g

		v.advanceFade()
		if !v.active() {
			return
		}
	}

	if drained {
		v.err = v.src.Err()
		v.stop()
	}
}
