// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package api serves the climate state over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Server exposes a ClimateIR and its statistics
type Server struct {
	device  *mitsubishi.ClimateIR
	climate mitsubishi.Climate
	stats   *mitsubishi.Statistics
	newTx   func() mitsubishi.Transmitter
	log     logrus.FieldLogger
}

// New creates a server. newTx returns the transmitter used for each state change.
func New(device *mitsubishi.ClimateIR, climate mitsubishi.Climate, stats *mitsubishi.Statistics,
	newTx func() mitsubishi.Transmitter, log logrus.FieldLogger) *Server {
	return &Server{device: device, climate: climate, stats: stats, newTx: newTx, log: log}
}

type errorResponse struct {
	Error string `json:"error"`
}

// FrameResponse describes the frame the current state encodes to
type FrameResponse struct {
	Hex           string           `json:"hex"`
	Detail        string           `json:"detail"`
	ChecksumValid bool             `json:"checksum_valid"`
	State         mitsubishi.State `json:"state"`
}

// StatsResponse is a statistics snapshot with derived rates
type StatsResponse struct {
	mitsubishi.StatisticsSnapshot
	Errors      uint64  `json:"errors"`
	SuccessRate float64 `json:"success_rate"`
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	api := r.Group("/api")
	api.GET("/state", s.getState)
	api.PUT("/state", s.putState)
	api.GET("/frame", s.getFrame)
	api.GET("/stats", s.getStats)
	return r
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("http request")
	}
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.climate.State())
}

func (s *Server) putState(c *gin.Context) {
	var patch mitsubishi.StatePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no fields to update"})
		return
	}

	state, err := s.device.Control(patch, s.newTx())
	if err != nil {
		s.log.WithError(err).Error("transmit failed")
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) getFrame(c *gin.Context) {
	f := s.device.Frame()
	c.JSON(http.StatusOK, FrameResponse{
		Hex:           mitsubishi.FormatFrame(f),
		Detail:        mitsubishi.FormatFrameDetail(f, s.device.Mapper()),
		ChecksumValid: f.ChecksumValid(),
		State:         s.climate.State(),
	})
}

func (s *Server) getStats(c *gin.Context) {
	if s.stats == nil {
		c.JSON(http.StatusOK, StatsResponse{})
		return
	}
	s.stats.CalculateRates()
	snap := s.stats.Snapshot()
	c.JSON(http.StatusOK, StatsResponse{
		StatisticsSnapshot: snap,
		Errors:             snap.Errors(),
		SuccessRate:        snap.SuccessRate(),
	})
}
