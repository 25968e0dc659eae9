package models

import "math"

// AddU64 is checked addition; wrap yields ErrOverflow.
func AddU64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// IncU32 is a checked increment.
func IncU32(v uint32) (uint32, error) {
	if v == math.MaxUint32 {
		return 0, ErrOverflow
	}
	return v + 1, nil
}

// SubSatU32 subtracts with a floor at zero.
func SubSatU32(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}

// SubSatU64 subtracts with a floor at zero.
func SubSatU64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
