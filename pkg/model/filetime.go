package model

import "time"

// Filetime counts 100ns intervals since 1601-01-01 UTC
type Filetime uint64

// ticks between 1601-01-01 and 1970-01-01
const filetimeEpochDelta = 116444736000000000

// NewFiletime joins the two halves of a Win32 FILETIME
func NewFiletime(low, high uint32) Filetime {
	return Filetime(uint64(high)<<32 | uint64(low))
}

// Time interprets f as an absolute timestamp. Zero maps to the zero time.
func (f Filetime) Time() time.Time {
	if f == 0 {
		return time.Time{}
	}
	ticks := int64(f) - filetimeEpochDelta
	return time.Unix(0, ticks*100).UTC()
}

// Duration interprets f as an elapsed interval (kernel/user times)
func (f Filetime) Duration() time.Duration {
	return time.Duration(f) * 100
}
