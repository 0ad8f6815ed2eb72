// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mitsubishi

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Controller is an IR climate device: it can send the current state and
// absorb a state received from another remote.
type Controller interface {
	TransmitState(tx Transmitter) error
	OnReceive(rx Receiver) error
}

// ClimateIR drives a Mitsubishi unit over IR for a Climate collaborator
type ClimateIR struct {
	mu      sync.Mutex
	mapper  Mapper
	climate Climate
	log     logrus.FieldLogger
	stats   *Statistics
}

var _ Controller = (*ClimateIR)(nil)

// Option configures a ClimateIR
type Option func(*ClimateIR)

// WithLogger sets the diagnostics logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *ClimateIR) { c.log = log }
}

// WithStatistics records every receive attempt in stats
func WithStatistics(stats *Statistics) Option {
	return func(c *ClimateIR) { c.stats = stats }
}

// NewClimateIR creates a controller for climate using mapper for the unit's fan and vane settings
func NewClimateIR(mapper Mapper, climate Climate, opts ...Option) *ClimateIR {
	c := &ClimateIR{mapper: mapper, climate: climate}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c
}

// Mapper returns the controller's field mapper
func (c *ClimateIR) Mapper() Mapper {
	return c.mapper
}

// Frame returns the frame the current state encodes to
func (c *ClimateIR) Frame() Frame {
	return c.mapper.Encode(c.climate.State())
}

// TransmitState encodes the current state and sends it through tx
func (c *ClimateIR) TransmitState(tx Transmitter) error {
	state := c.climate.State()
	frame := c.mapper.Encode(state)

	c.log.WithFields(logrus.Fields{
		"state": FormatState(state),
		"frame": FormatFrame(frame),
	}).Debug("transmitting state")
	c.log.Debugf("defaults: horizontal=0x%02X vertical=0x%02X fan=%d/%d/%d",
		byte(c.mapper.HorizontalDefault), byte(c.mapper.VerticalDefault),
		c.mapper.FanLow, c.mapper.FanMedium, c.mapper.FanHigh)

	EncodePulses(frame, tx)
	return tx.Perform()
}

// Control applies patch to the climate state, transmits it through tx and
// publishes. If the transmission fails the previous state is restored.
// Observers run after the device lock is released.
func (c *ClimateIR) Control(patch StatePatch, tx Transmitter) (State, error) {
	next, err := c.control(patch, tx)
	if err != nil {
		return next, err
	}
	c.climate.Publish()
	return next, nil
}

func (c *ClimateIR) control(patch StatePatch, tx Transmitter) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.climate.State()
	next := prev
	patch.Apply(&next)
	c.climate.SetState(next)

	if err := c.TransmitState(tx); err != nil {
		c.climate.SetState(prev)
		return prev, err
	}
	return next, nil
}

// OnReceive decodes a frame from rx and publishes the resulting state.
// On error the climate state is left untouched.
func (c *ClimateIR) OnReceive(rx Receiver) error {
	if err := c.receive(rx); err != nil {
		return err
	}
	c.climate.Publish()
	return nil
}

func (c *ClimateIR) receive(rx Receiver) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame, err := DecodePulses(rx)
	if c.stats != nil {
		c.stats.Update(&frame, err)
	}
	if err != nil {
		c.log.WithError(err).Trace("frame rejected")
		return err
	}

	if !frame.ChecksumValid() {
		c.log.WithFields(logrus.Fields{
			"frame":      FormatFrame(frame),
			"calculated": CalculateChecksum(frame),
		}).Debug("checksum mismatch, accepting frame")
	}

	state := c.mapper.Decode(frame, c.climate.State())
	c.log.WithField("state", FormatState(state)).Debug("received state")

	c.climate.SetState(state)
	return nil
}
