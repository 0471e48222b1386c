// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1,1] and scales it by 32767, truncating
// toward zero.
func Float32ToInt16(x float32) int16 {
	switch {
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	}
	return int16(x * 32767)
}

// Int16ToFloat32 maps a signed 16 bit sample to [-1,1).
func Int16ToFloat32(s int16) float32 {
	return float32(s) / 32768
}

// Uint8ToFloat32 maps an unsigned 8 bit sample, centred on 128, to
// [-1,1).
func Uint8ToFloat32(b uint8) float32 {
	return (float32(b) - 128) / 128
}

// Uint8ToInt16 widens an unsigned 8 bit sample to signed 16 bit.
func Uint8ToInt16(b uint8) int16 {
	return int16((int(b) - 128) << 8)
}
