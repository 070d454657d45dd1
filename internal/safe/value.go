// Package safe provides overflow-safe numeric conversions for values
// crossing the boundary between OS process inspection types and Go ints.
package safe

import (
	"math"
)

// Uint32ToInt safely converts an uint32 value (e.g. a socket port from the
// process-inspection layer) to int. Cannot overflow on 64-bit platforms;
// clamps to math.MaxInt32 on 32-bit ones.
func Uint32ToInt(val uint32) int {
	if uint64(val) > uint64(math.MaxInt) {
		return math.MaxInt
	}
	return int(val)
}

// IntToInt32 safely converts an int (e.g. a user-supplied PID flag) to
// int32, clamping to the int32 range if overflow would occur.
// Returns the converted value and a boolean indicating whether clamping
// occurred.
func IntToInt32(val int) (int32, bool) {
	if val > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if val < math.MinInt32 {
		return math.MinInt32, true
	}
	return int32(val), false
}
