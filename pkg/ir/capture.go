// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ir

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// MaxCaptureItems bounds decoded captures; real remotes send well under this
const MaxCaptureItems = 4096

// Capture is one pulse train as exchanged with an IR bridge.
// Wire format is a CBOR map {0: carrier_hz, 1: [timings...]}.
type Capture struct {
	CarrierHz uint32     `cbor:"0,keyasint,omitempty" json:"carrier_hz"`
	Timings   RawTimings `cbor:"1,keyasint" json:"timings"`
}

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{MaxArrayElements: MaxCaptureItems}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("ir: cbor decode options: %v", err))
	}
	return dm
}()

// skipMode accepts any well-formed item so an unusable one can be stepped over whole
var skipMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		MaxArrayElements: maxBuffered,
		MaxMapPairs:      maxBuffered,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("ir: cbor skip options: %v", err))
	}
	return dm
}()

// maxBuffered bounds the bytes held while waiting for an item to complete
const maxBuffered = 64 * 1024

// ErrStreamResync marks a read that dropped bytes to find the next capture.
// The stream is still usable.
var ErrStreamResync = errors.New("ir: capture stream resynchronized")

// ResyncError reports bytes dropped from a capture stream
type ResyncError struct {
	Dropped int
	Err     error
}

func (e *ResyncError) Error() string {
	return fmt.Sprintf("dropped %d bytes: %v", e.Dropped, e.Err)
}

func (e *ResyncError) Unwrap() error { return e.Err }

// Is reports ErrStreamResync
func (e *ResyncError) Is(target error) bool { return target == ErrStreamResync }

// Receiver returns a ReceiveData over the capture's timings
func (c Capture) Receiver(tolerance uint32) *ReceiveData {
	return NewReceiveData(c.Timings, tolerance)
}

// MarshalCapture encodes a capture to CBOR
func MarshalCapture(c Capture) ([]byte, error) {
	data, err := cbor.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode capture: %w", err)
	}
	return data, nil
}

// UnmarshalCapture decodes a CBOR capture
func UnmarshalCapture(data []byte) (Capture, error) {
	if len(data) == 0 {
		return Capture{}, fmt.Errorf("empty capture")
	}
	var c Capture
	if err := decMode.Unmarshal(data, &c); err != nil {
		return Capture{}, fmt.Errorf("failed to decode capture: %w", err)
	}
	return c, nil
}

// CaptureReader reads a stream of CBOR captures. Unusable input is
// dropped until the next decodable capture.
type CaptureReader struct {
	r   io.Reader
	buf []byte
	tmp []byte
	err error
}

// NewCaptureReader creates a reader over r
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{r: r, tmp: make([]byte, 4096)}
}

// Read blocks until the next capture is available. A *ResyncError means
// bytes were dropped and Read may be called again; any other error comes
// from the underlying reader.
func (r *CaptureReader) Read() (Capture, error) {
	for {
		if len(r.buf) > 0 {
			var c Capture
			rest, err := decMode.UnmarshalFirst(r.buf, &c)
			if err == nil {
				r.buf = rest
				return c, nil
			}
			if !incomplete(err) {
				if n, more := skipLength(r.buf); !more {
					return Capture{}, r.drop(n, err)
				}
			}
			if len(r.buf) >= maxBuffered {
				return Capture{}, r.drop(1, err)
			}
		}

		if r.err != nil {
			// a trailing partial item cannot complete
			r.buf = nil
			return Capture{}, r.err
		}

		n, err := r.r.Read(r.tmp)
		r.buf = append(r.buf, r.tmp[:n]...)
		if err != nil {
			r.err = err
		}
	}
}

func (r *CaptureReader) drop(n int, cause error) error {
	r.buf = r.buf[n:]
	return &ResyncError{Dropped: n, Err: cause}
}

// skipLength returns how many bytes to drop after a failed decode: the whole
// item when it is well-formed, otherwise a single byte. more is true when the
// item is not yet complete.
func skipLength(data []byte) (n int, more bool) {
	var raw cbor.RawMessage
	rest, err := skipMode.UnmarshalFirst(data, &raw)
	switch {
	case err == nil:
		return len(data) - len(rest), false
	case incomplete(err):
		return 0, true
	default:
		return 1, false
	}
}

func incomplete(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

// CaptureWriter writes captures as a stream of CBOR items.
// Each capture is written with a single Write call.
type CaptureWriter struct {
	w io.Writer
}

// NewCaptureWriter creates a writer over w
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{w: w}
}

// Send implements Sender
func (w *CaptureWriter) Send(c Capture) error {
	data, err := MarshalCapture(c)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("failed to write capture: %w", err)
	}
	return nil
}

// LoadCapture reads a capture file. CBOR files are tried first, then raw timing text.
func LoadCapture(path string) (Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Capture{}, err
	}

	if c, err := UnmarshalCapture(data); err == nil && len(c.Timings) > 0 {
		return c, nil
	}

	timings, err := ParseRawTimings(string(data))
	if err != nil {
		return Capture{}, fmt.Errorf("%s: not a CBOR capture or raw timing list: %w", path, err)
	}
	return Capture{Timings: timings}, nil
}

// SaveCapture writes a capture file in CBOR
func SaveCapture(path string, c Capture) error {
	data, err := MarshalCapture(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
