// Package sizeconv converts the user-facing "max size in GB" value
// into the unit each addon's configuration schema expects.
package sizeconv

import "strconv"

// ParseGB parses the user-supplied size in gigabytes. The empty string
// means no size filter.
func ParseGB(size string) (float64, bool) {
	if size == "" {
		return 0, false
	}
	gb, err := strconv.ParseFloat(size, 64)
	if err != nil || gb <= 0 {
		return 0, false
	}
	return gb, true
}

// GBToBytes converts gigabytes to bytes.
func GBToBytes(gb float64) int64 {
	return int64(gb * 1024 * 1024 * 1024)
}

// GBToMegabytes converts gigabytes to megabytes.
func GBToMegabytes(gb float64) int64 {
	return int64(gb * 1024)
}
