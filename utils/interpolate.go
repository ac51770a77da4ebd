// SPDX-License-Identifier: EPL-2.0

package utils

// CatmullRom evaluates the Catmull-Rom segment between w[1] and w[2] at
// t in [0, 1]. w[0] and w[3] only shape the tangents.
func CatmullRom(w [4]float32, t float32) float32 {
	a := 1.5*(w[1]-w[2]) + 0.5*(w[3]-w[0])
	b := w[0] - 2.5*w[1] + 2*w[2] - 0.5*w[3]
	c := 0.5 * (w[2] - w[0])

	return ((a*t+b)*t+c)*t + w[1]
}
