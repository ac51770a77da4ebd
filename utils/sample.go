// SPDX-License-Identifier: EPL-2.0

package utils

const (
	s16Max  = 32767.0
	s16Span = 32768.0
)

// Clamp limits a float sample to [-1, 1].
func Clamp(x float32) float32 {
	return min(max(x, -1), 1)
}

// Float32ToInt16 converts a float sample to S16. Out of range input saturates.
func Float32ToInt16(x float32) int16 {
	return int16(Clamp(x) * s16Max)
}

// Int16ToFloat32 maps an S16 sample into [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / s16Span
}
