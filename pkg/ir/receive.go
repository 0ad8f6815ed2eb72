// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ir

// ReceiveData walks a captured pulse train, matching durations within a tolerance
type ReceiveData struct {
	timings   RawTimings
	index     int
	tolerance uint32
}

// NewReceiveData creates a reader over timings. tolerance is in percent;
// zero selects DefaultTolerance.
func NewReceiveData(timings RawTimings, tolerance uint32) *ReceiveData {
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}
	return &ReceiveData{timings: timings, tolerance: tolerance}
}

func (r *ReceiveData) lowerBound(us uint32) int64 {
	return int64(us) * int64(100-min(r.tolerance, 100)) / 100
}

func (r *ReceiveData) upperBound(us uint32) int64 {
	return int64(us) * int64(100+r.tolerance) / 100
}

// PeekMark reports whether the item at offset from the current position is a mark of about us
func (r *ReceiveData) PeekMark(us uint32, offset int) bool {
	i := r.index + offset
	if i < 0 || i >= len(r.timings) || r.timings[i] <= 0 {
		return false
	}
	v := int64(r.timings[i])
	return v >= r.lowerBound(us) && v <= r.upperBound(us)
}

// PeekSpace reports whether the item at offset from the current position is a space of about us
func (r *ReceiveData) PeekSpace(us uint32, offset int) bool {
	i := r.index + offset
	if i < 0 || i >= len(r.timings) || r.timings[i] >= 0 {
		return false
	}
	v := -int64(r.timings[i])
	return v >= r.lowerBound(us) && v <= r.upperBound(us)
}

// ExpectItem consumes the next mark/space pair if both match
func (r *ReceiveData) ExpectItem(mark, space uint32) bool {
	if !r.PeekMark(mark, 0) || !r.PeekSpace(space, 1) {
		return false
	}
	r.index += 2
	return true
}

// ExpectMark consumes the next mark if it matches
func (r *ReceiveData) ExpectMark(us uint32) bool {
	if !r.PeekMark(us, 0) {
		return false
	}
	r.index++
	return true
}

// Pos returns the index of the next unread item
func (r *ReceiveData) Pos() int {
	return r.index
}

// Remaining returns the number of unread items
func (r *ReceiveData) Remaining() int {
	return len(r.timings) - r.index
}

// Reset rewinds to the first item
func (r *ReceiveData) Reset() {
	r.index = 0
}
