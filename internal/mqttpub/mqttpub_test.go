// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mqttpub

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type published struct {
	retained bool
	payload  string
}

type fakeClient struct {
	mu        sync.Mutex
	published map[string]published
	handlers  map[string]mqtt.MessageHandler
	err       error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		published: make(map[string]published),
		handlers:  make(map[string]mqtt.MessageHandler),
	}
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published[topic] = published{retained: retained, payload: payload.(string)}
	return doneToken{err: c.err}
}

func (c *fakeClient) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = cb
	return doneToken{err: c.err}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestPublishState(t *testing.T) {
	client := newFakeClient()
	b := New(client, "home/ac", quietLogger())

	state := mitsubishi.State{
		Mode:              mitsubishi.ModeCool,
		TargetTemperature: 22.5,
		FanSpeed:          mitsubishi.FanHigh,
		SwingMode:         mitsubishi.SwingVertical,
	}
	require.NoError(t, b.PublishState(state))

	assert.JSONEq(t,
		`{"mode":"cool","target_temperature":22.5,"fan_speed":"high","swing_mode":"vertical"}`,
		client.published["home/ac/state"].payload)
	assert.Equal(t, "cool", client.published["home/ac/mode"].payload)
	assert.Equal(t, "22.5", client.published["home/ac/target_temperature"].payload)
	assert.Equal(t, "high", client.published["home/ac/fan_speed"].payload)
	assert.Equal(t, "vertical", client.published["home/ac/swing_mode"].payload)

	for topic, p := range client.published {
		assert.True(t, p.retained, "%s should be retained", topic)
	}
}

func TestPublishState_Error(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("not connected")
	b := New(client, "ac", quietLogger())

	err := b.PublishState(mitsubishi.DefaultState())
	assert.ErrorContains(t, err, "publish ac/state")
}

func TestParseSetCommand(t *testing.T) {
	cmd, err := ParseSetCommand([]byte(`{"mode":"heat","target_temperature":40}`))
	require.NoError(t, err)

	state := mitsubishi.DefaultState()
	state.FanSpeed = mitsubishi.FanMedium
	cmd.Apply(&state)

	assert.Equal(t, mitsubishi.ModeHeat, state.Mode)
	assert.Equal(t, 31.0, state.TargetTemperature, "temperature clamped")
	assert.Equal(t, mitsubishi.FanMedium, state.FanSpeed, "absent field unchanged")
	assert.Equal(t, mitsubishi.SwingOff, state.SwingMode)

	_, err = ParseSetCommand([]byte(`{"mode":"turbo"}`))
	assert.Error(t, err)

	_, err = ParseSetCommand([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseSetCommand([]byte(`{}`))
	assert.ErrorContains(t, err, "no fields")
}

func TestSubscribeSet(t *testing.T) {
	client := newFakeClient()
	b := New(client, "ac", quietLogger())

	var got []mitsubishi.StatePatch
	require.NoError(t, b.SubscribeSet(func(c mitsubishi.StatePatch) { got = append(got, c) }))

	handler, ok := client.handlers["ac/set"]
	require.True(t, ok)

	handler(nil, fakeMessage{topic: "ac/set", payload: []byte(`{"fan_speed":"low"}`)})
	handler(nil, fakeMessage{topic: "ac/set", payload: []byte(`{"fan_speed":"ludicrous"}`)})

	require.Len(t, got, 1)
	require.NotNil(t, got[0].FanSpeed)
	assert.Equal(t, mitsubishi.FanLow, *got[0].FanSpeed)
	assert.Nil(t, got[0].Mode)
}

func TestSubscribeSet_Error(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("refused")
	b := New(client, "ac", quietLogger())

	assert.ErrorContains(t, b.SubscribeSet(func(mitsubishi.StatePatch) {}), "subscribe ac/set")
}
