// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Statistics tracks decode results and error rates. Safe for concurrent use.
type Statistics struct {
	mu sync.Mutex
	s  StatisticsSnapshot
}

// StatisticsSnapshot is a point-in-time copy of the counters
type StatisticsSnapshot struct {
	StartTime      time.Time `json:"start_time"`
	LastUpdateTime time.Time `json:"last_update_time"`

	// Counters
	TotalCaptures      uint64 `json:"total_captures"`
	ValidFrames        uint64 `json:"valid_frames"`
	HeaderErrors       uint64 `json:"header_errors"`
	BitErrors          uint64 `json:"bit_errors"`
	FixedByteErrors    uint64 `json:"fixed_byte_errors"`
	OtherErrors        uint64 `json:"other_errors"`
	ChecksumMismatches uint64 `json:"checksum_mismatches"` // accepted frames only

	// Rates (calculated)
	CaptureRate float64 `json:"capture_rate"` // captures/sec
	ErrorRate   float64 `json:"error_rate"`   // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{s: StatisticsSnapshot{StartTime: now, LastUpdateTime: now}}
}

// Update records one decode attempt. frame is ignored when err is non-nil.
func (st *Statistics) Update(frame *Frame, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.s.TotalCaptures++
	st.s.LastUpdateTime = time.Now()

	if err != nil {
		switch {
		case errors.Is(err, ErrHeaderMismatch):
			st.s.HeaderErrors++
		case errors.Is(err, ErrBitTiming):
			st.s.BitErrors++
		case errors.Is(err, ErrFixedByte):
			st.s.FixedByteErrors++
		default:
			st.s.OtherErrors++
		}
		return
	}

	st.s.ValidFrames++
	if frame != nil && !frame.ChecksumValid() {
		st.s.ChecksumMismatches++
	}
}

// CalculateRates recalculates capture and error rates
func (st *Statistics) CalculateRates() {
	st.mu.Lock()
	defer st.mu.Unlock()

	elapsed := time.Since(st.s.StartTime).Seconds()
	if elapsed > 0 {
		st.s.CaptureRate = float64(st.s.TotalCaptures) / elapsed
		st.s.ErrorRate = float64(st.s.errorCount()) / elapsed
	}
}

// Reset clears all counters
func (st *Statistics) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	st.s = StatisticsSnapshot{StartTime: now, LastUpdateTime: now}
}

// Snapshot returns a copy of the current counters
func (st *Statistics) Snapshot() StatisticsSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

func (s StatisticsSnapshot) errorCount() uint64 {
	return s.HeaderErrors + s.BitErrors + s.FixedByteErrors + s.OtherErrors
}

// Errors returns the total number of rejected captures
func (s StatisticsSnapshot) Errors() uint64 {
	return s.errorCount()
}

// SuccessRate returns the percentage of captures that decoded
func (s StatisticsSnapshot) SuccessRate() float64 {
	if s.TotalCaptures == 0 {
		return 0
	}
	return float64(s.ValidFrames) / float64(s.TotalCaptures) * 100
}

// Format returns a human-readable summary
func (s StatisticsSnapshot) Format() string {
	elapsed := time.Since(s.StartTime)
	result := fmt.Sprintf("Statistics (elapsed %s)\n", elapsed.Truncate(time.Second))
	result += fmt.Sprintf("  Captures:   %d (%.2f/s)\n", s.TotalCaptures, s.CaptureRate)
	result += fmt.Sprintf("  Valid:      %d (%.1f%%)\n", s.ValidFrames, s.SuccessRate())
	result += fmt.Sprintf("  Errors:     %d (%.2f/s)\n", s.errorCount(), s.ErrorRate)
	result += fmt.Sprintf("    Header:     %d\n", s.HeaderErrors)
	result += fmt.Sprintf("    Bit timing: %d\n", s.BitErrors)
	result += fmt.Sprintf("    Fixed byte: %d\n", s.FixedByteErrors)
	if s.OtherErrors > 0 {
		result += fmt.Sprintf("    Other:      %d\n", s.OtherErrors)
	}
	result += fmt.Sprintf("  Checksum mismatches (accepted): %d\n", s.ChecksumMismatches)
	return result
}
