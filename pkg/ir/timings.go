// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package ir provides raw infrared timing buffers for transmitting and
// receiving pulse trains, and the CBOR capture format used to move them
// between vanestat and an IR bridge.
//
// Timings are signed microsecond durations: positive values are marks
// (carrier on), negative values are spaces (carrier off).
package ir

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the default timing tolerance in percent
const DefaultTolerance = 25

// RawTimings is a sequence of signed mark/space durations in microseconds
type RawTimings []int32

// Duration returns the total duration of the timings
func (t RawTimings) Duration() time.Duration {
	var total int64
	for _, v := range t {
		if v < 0 {
			total -= int64(v)
		} else {
			total += int64(v)
		}
	}
	return time.Duration(total) * time.Microsecond
}

// String formats the timings the way ESPHome dumps raw codes
func (t RawTimings) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ", ")
}

// ParseRawTimings parses comma or whitespace separated signed durations.
// Anything up to the last colon (a log prefix such as "Received Raw:") is ignored.
func ParseRawTimings(text string) (RawTimings, error) {
	if i := strings.LastIndex(text, ":"); i >= 0 {
		text = text[i+1:]
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	timings := make(RawTimings, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid timing %q: %w", field, err)
		}
		if v == 0 {
			return nil, fmt.Errorf("invalid timing %q: zero duration", field)
		}
		timings = append(timings, int32(v))
	}

	if len(timings) == 0 {
		return nil, fmt.Errorf("no timings found")
	}
	return timings, nil
}
