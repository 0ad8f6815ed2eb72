// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

import (
	"errors"
	"fmt"
)

// Decode failure sentinels, matched with errors.Is
var (
	ErrHeaderMismatch = errors.New("mitsubishi: header mismatch")
	ErrBitTiming      = errors.New("mitsubishi: bit timing mismatch")
	ErrFixedByte      = errors.New("mitsubishi: fixed byte mismatch")
)

// ErrorKind classifies a decode failure
type ErrorKind int

const (
	KindHeader ErrorKind = iota
	KindBitTiming
	KindFixedByte
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindHeader:
		return "HEADER"
	case KindBitTiming:
		return "BIT_TIMING"
	case KindFixedByte:
		return "FIXED_BYTE"
	default:
		return "UNKNOWN"
	}
}

// DecodeError describes where a pulse train stopped matching the protocol.
// Byte and Bit are -1 when not applicable.
type DecodeError struct {
	Kind ErrorKind
	Byte int
	Bit  int
	Got  byte
	Want byte
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	switch e.Kind {
	case KindHeader:
		return "header mark/space mismatch"
	case KindBitTiming:
		return fmt.Sprintf("byte %d bit %d: no matching mark/space", e.Byte, e.Bit)
	case KindFixedByte:
		return fmt.Sprintf("byte %d: got 0x%02X, want 0x%02X", e.Byte, e.Got, e.Want)
	default:
		return "unknown decode error"
	}
}

// Unwrap returns the sentinel for the error kind
func (e *DecodeError) Unwrap() error {
	switch e.Kind {
	case KindHeader:
		return ErrHeaderMismatch
	case KindBitTiming:
		return ErrBitTiming
	case KindFixedByte:
		return ErrFixedByte
	default:
		return nil
	}
}
