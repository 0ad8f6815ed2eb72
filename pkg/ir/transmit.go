// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ir

// Sender delivers a finished capture to the transmit hardware
type Sender interface {
	Send(c Capture) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(c Capture) error

// Send calls f(c)
func (f SenderFunc) Send(c Capture) error { return f(c) }

// TransmitData queues a pulse train. Perform hands it to the sender.
type TransmitData struct {
	carrier uint32
	timings RawTimings
	sender  Sender
}

// NewTransmitData creates a transmit buffer. A nil sender only records.
func NewTransmitData(sender Sender) *TransmitData {
	return &TransmitData{sender: sender}
}

// SetCarrierFrequency sets the modulation frequency in Hz
func (t *TransmitData) SetCarrierFrequency(hz uint32) {
	t.carrier = hz
}

// Mark queues a carrier-on interval
func (t *TransmitData) Mark(us uint32) {
	t.timings = append(t.timings, int32(us))
}

// Space queues a carrier-off interval
func (t *TransmitData) Space(us uint32) {
	t.timings = append(t.timings, -int32(us))
}

// Capture returns the queued pulse train
func (t *TransmitData) Capture() Capture {
	timings := make(RawTimings, len(t.timings))
	copy(timings, t.timings)
	return Capture{CarrierHz: t.carrier, Timings: timings}
}

// Reset discards the queued pulse train
func (t *TransmitData) Reset() {
	t.carrier = 0
	t.timings = t.timings[:0]
}

// Perform sends the queued pulse train and clears the buffer
func (t *TransmitData) Perform() error {
	if t.sender == nil {
		return nil
	}
	c := t.Capture()
	t.Reset()
	return t.sender.Send(c)
}
