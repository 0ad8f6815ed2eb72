// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package mqttpub mirrors climate state to an MQTT broker and accepts set commands.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Thermoquad/vanestat/internal/config"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const tokenTimeout = 5 * time.Second

// Client is the subset of mqtt.Client used by the bridge
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// Bridge publishes state under a topic prefix
type Bridge struct {
	client Client
	topic  string
	log    logrus.FieldLogger
}

// New creates a bridge on an already connected client
func New(client Client, topic string, log logrus.FieldLogger) *Bridge {
	return &Bridge{client: client, topic: topic, log: log}
}

// Connect dials the broker described by cfg
func Connect(cfg *config.Config, log logrus.FieldLogger) (mqtt.Client, error) {
	co := mqtt.NewClientOptions()
	co.AddBroker(cfg.MQTT.Broker)
	co.SetClientID(cfg.MQTT.ClientID)
	co.SetUsername(cfg.MQTT.Username)
	co.SetPassword(cfg.MQTTPassword())
	co.SetAutoReconnect(true)
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warnf("MQTT: connection lost: %v", err)
	})

	cl := mqtt.NewClient(co)
	t := cl.Connect()
	if !t.WaitTimeout(tokenTimeout) {
		return nil, fmt.Errorf("mqtt connect %s: timeout", cfg.MQTT.Broker)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.MQTT.Broker, err)
	}
	log.Infof("MQTT: connected to %s", cfg.MQTT.Broker)
	return cl, nil
}

func wait(t mqtt.Token) error {
	if !t.WaitTimeout(tokenTimeout) {
		return fmt.Errorf("mqtt: timeout")
	}
	return t.Error()
}

// PublishState sends the full state as JSON plus one retained topic per field
func (b *Bridge) PublishState(s mitsubishi.State) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	msgs := []struct {
		topic string
		value string
	}{
		{b.topic + "/state", string(payload)},
		{b.topic + "/mode", s.Mode.String()},
		{b.topic + "/target_temperature", strconv.FormatFloat(s.TargetTemperature, 'f', 1, 64)},
		{b.topic + "/fan_speed", s.FanSpeed.String()},
		{b.topic + "/swing_mode", s.SwingMode.String()},
	}
	for _, m := range msgs {
		b.log.Debugf("MQTT PUB: %s -> %s", m.topic, m.value)
		if err := wait(b.client.Publish(m.topic, 0, true, m.value)); err != nil {
			return fmt.Errorf("publish %s: %w", m.topic, err)
		}
	}
	return nil
}

// ParseSetCommand decodes a JSON set payload
func ParseSetCommand(payload []byte) (mitsubishi.StatePatch, error) {
	var patch mitsubishi.StatePatch
	if err := json.Unmarshal(payload, &patch); err != nil {
		return mitsubishi.StatePatch{}, fmt.Errorf("invalid set command: %w", err)
	}
	if patch.Empty() {
		return mitsubishi.StatePatch{}, fmt.Errorf("invalid set command: no fields")
	}
	return patch, nil
}

// SubscribeSet listens on <topic>/set and hands each valid command to handle
func (b *Bridge) SubscribeSet(handle func(mitsubishi.StatePatch)) error {
	topic := b.topic + "/set"
	err := wait(b.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		b.log.Infof("MQTT: received %s from %s", msg.Payload(), msg.Topic())
		patch, err := ParseSetCommand(msg.Payload())
		if err != nil {
			b.log.Errorf("MQTT: %v", err)
			return
		}
		handle(patch)
	}))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	b.log.Infof("MQTT: subscribed to %s", topic)
	return nil
}
