package audio

import (
	"github.com/lixenwraith/orbit-sound/constant"
	"github.com/lixenwraith/orbit-sound/vmath"
)

// Body is anything with a world position and orientation that can emit or hear sound
// Implementations must be comparable; pointer types are the norm
type Body interface {
	Position() vmath.Vec3F
	Orient() vmath.Mat3F
}

// ComputeStereoGains returns left/right gains for a sound emitted by source
// as heard by listener. Gain falls off with 1/(AudioDistanceFalloff*distance)
// and pans linearly on the listener-local X axis. A source at the listener,
// or the listener itself, gets vol on both channels. Outputs are in [0, 1]
func ComputeStereoGains(listener, source Body, vol float64) (left, right float64) {
	var pos vmath.Vec3F
	if source != listener {
		rel := vmath.V3FSub(source.Position(), listener.Position())
		pos = listener.Orient().VecMul(rel)
	}

	dist := vmath.V3FMag(pos)
	if !vmath.IsZero(dist) {
		vol = vol / (constant.AudioDistanceFalloff * dist)
		dot := vmath.V3FNormalize(pos).X * vol

		left = vol * (1.0 - dot)
		right = vol * (1.0 + dot)
	} else {
		left, right = vol, vol
	}
	return clampGain(left), clampGain(right)
}

// clampGain bounds g to [0, 1], NaN maps to 0
func clampGain(g float64) float64 {
	if !(g > 0) {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}
