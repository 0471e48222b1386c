// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// refDistance is where attenuation starts.
const refDistance = 1.0

// placement is how a mono voice is heard by the listener.
type placement struct {
	gain  float64
	left  float64
	right float64
	shift float64
}

// attenuation uses the inverse distance clamped model: no change inside
// refDistance, then ref / (ref + rolloff * (d - ref)).
func attenuation(dist, rolloff float64) float64 {
	dist = max(dist, refDistance)
	return refDistance / (refDistance + rolloff*(dist-refDistance))
}

// pan returns -1 for hard left, 1 for hard right.
func pan(l Listener, toSource r3.Vec) float64 {
	if r3.Norm(toSource) == 0 {
		return 0
	}
	right := r3.Cross(l.At, l.Up)
	if r3.Norm(right) == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, r3.Dot(r3.Unit(toSource), r3.Unit(right))))
}

// minDopplerShift keeps a voice whose listener recedes at the speed of
// sound crawling instead of frozen.
const minDopplerShift = 0.01

// dopplerShift follows the usual formula
// f' = f * (c - df*vl) / (c - df*vs), with both velocities projected on
// the source to listener axis and clamped below c/df.
func dopplerShift(l Listener, src r3.Vec, vel r3.Vec, factor, c float64) float64 {
	axis := r3.Sub(l.Position, src)
	dist := r3.Norm(axis)
	if factor == 0 || dist == 0 {
		return 1
	}
	limit := c / factor
	vl := math.Min(r3.Dot(l.Velocity, axis)/dist, limit)
	vs := math.Min(r3.Dot(vel, axis)/dist, limit)

	den := c - factor*vs
	if den <= 0 {
		return 1
	}
	return math.Max(minDopplerShift, (c-factor*vl)/den)
}

func (m *Mixer) place(v *voice) placement {
	toSource := r3.Sub(v.Position, m.listener.Position)
	g := v.Gain * m.listener.Gain * attenuation(r3.Norm(toSource), v.Rolloff)

	theta := (pan(m.listener, toSource) + 1) * math.Pi / 4
	return placement{
		gain:  g,
		left:  g * math.Cos(theta),
		right: g * math.Sin(theta),
		shift: dopplerShift(m.listener, v.Position, v.Velocity, m.doppler, m.speedOfSound),
	}
}
