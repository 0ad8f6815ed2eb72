// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Thermoquad/vanestat/pkg/ir"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router  *gin.Engine
	store   *mitsubishi.Store
	stats   *mitsubishi.Statistics
	sent    []ir.Capture
	sendErr error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &fixture{
		store: mitsubishi.NewStore(mitsubishi.DefaultState()),
		stats: mitsubishi.NewStatistics(),
	}
	dev := mitsubishi.NewClimateIR(mitsubishi.DefaultMapper(), f.store, mitsubishi.WithStatistics(f.stats))
	newTx := func() mitsubishi.Transmitter {
		return ir.NewTransmitData(ir.SenderFunc(func(c ir.Capture) error {
			if f.sendErr != nil {
				return f.sendErr
			}
			f.sent = append(f.sent, c)
			return nil
		}))
	}
	f.router = New(dev, f.store, f.stats, newTx, log).Router()
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGetState(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"mode":"off","target_temperature":24,"fan_speed":"auto","swing_mode":"off"}`,
		w.Body.String())
}

func TestPutState_Transmits(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/state", `{"mode":"heat","target_temperature":23,"fan_speed":"low"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got mitsubishi.State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, mitsubishi.ModeHeat, got.Mode)
	assert.Equal(t, 23.0, got.TargetTemperature)
	assert.Equal(t, mitsubishi.FanLow, got.FanSpeed)
	assert.Equal(t, got, f.store.State())

	require.Len(t, f.sent, 1)
	assert.Equal(t, uint32(mitsubishi.CarrierFrequency), f.sent[0].CarrierHz)
	assert.Len(t, f.sent[0].Timings, mitsubishi.PulseCount)
}

func TestPutState_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown mode", `{"mode":"turbo"}`},
		{"unknown fan", `{"fan_speed":"ludicrous"}`},
		{"malformed", `{"mode":`},
		{"empty", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.do(http.MethodPut, "/api/state", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			assert.Empty(t, f.sent)
			assert.Equal(t, mitsubishi.DefaultState(), f.store.State())
		})
	}
}

func TestPutState_TransmitError(t *testing.T) {
	f := newFixture(t)
	f.sendErr = errors.New("bridge unplugged")

	w := f.do(http.MethodPut, "/api/state", `{"mode":"cool"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "bridge unplugged")
	assert.Equal(t, mitsubishi.DefaultState(), f.store.State())
}

func TestGetFrame(t *testing.T) {
	f := newFixture(t)
	f.store.SetState(mitsubishi.State{
		Mode:              mitsubishi.ModeHeat,
		TargetTemperature: 23,
		FanSpeed:          mitsubishi.FanLow,
	})

	w := f.do(http.MethodGet, "/api/frame", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got FrameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "23 CB 26 01 00 20 08 07 30 5A 00 00 00 00 00 00 00 CE", got.Hex)
	assert.True(t, got.ChecksumValid)
	assert.Contains(t, got.Detail, "Checksum:    0xCE OK")
	assert.Equal(t, mitsubishi.ModeHeat, got.State.Mode)
}

func TestGetStats(t *testing.T) {
	f := newFixture(t)
	frame := mitsubishi.NewFrame()
	f.stats.Update(&frame, nil)
	f.stats.Update(nil, mitsubishi.ErrHeaderMismatch)

	w := f.do(http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, uint64(2), got.TotalCaptures)
	assert.Equal(t, uint64(1), got.ValidFrames)
	assert.Equal(t, uint64(1), got.HeaderErrors)
	assert.Equal(t, uint64(1), got.Errors)
	assert.InDelta(t, 50.0, got.SuccessRate, 0.001)
}
