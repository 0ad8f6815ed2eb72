// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/vanestat/internal/api"
	"github.com/Thermoquad/vanestat/internal/mqttpub"
	"github.com/Thermoquad/vanestat/pkg/ir"
	"github.com/Thermoquad/vanestat/pkg/mitsubishi"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge receive loop with the HTTP API and MQTT mirror",
	Long: `Keep the climate state in sync with the unit and expose it.

Captures reported by the bridge are decoded into the shared state. The state
is served over HTTP (GET/PUT /api/state, GET /api/frame, GET /api/stats) and,
when mqtt.broker is configured, mirrored to MQTT with set commands accepted on
<topic>/set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides http.listen)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mapper, err := cfg.Mapper()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.HTTP.Listen = serveListen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge, connInfo, err := OpenBridge()
	if err != nil {
		return err
	}
	defer bridge.Close()
	log.Infof("bridge connected: %s", connInfo)

	store := mitsubishi.NewStore(mitsubishi.DefaultState())
	stats := mitsubishi.NewStatistics()
	device := mitsubishi.NewClimateIR(mapper, store,
		mitsubishi.WithStatistics(stats),
		mitsubishi.WithLogger(log.WithField("component", "climate_ir")))
	newTx := func() mitsubishi.Transmitter { return ir.NewTransmitData(bridge) }

	store.OnPublish(func(s mitsubishi.State) {
		log.WithField("state", mitsubishi.FormatState(s)).Info("state published")
	})

	if cfg.MQTT.Broker != "" {
		client, err := mqttpub.Connect(cfg, log)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)

		pub := mqttpub.New(client, cfg.MQTT.Topic, log.WithField("component", "mqtt"))
		store.OnPublish(func(s mitsubishi.State) {
			if err := pub.PublishState(s); err != nil {
				log.WithError(err).Warn("MQTT publish failed")
			}
		})
		err = pub.SubscribeSet(func(patch mitsubishi.StatePatch) {
			if _, err := device.Control(patch, newTx()); err != nil {
				log.WithError(err).Error("transmit failed")
			}
		})
		if err != nil {
			return err
		}
	}

	errCh := make(chan error, 2)

	var srv *http.Server
	if cfg.HTTP.Listen != "" {
		if log.GetLevel() < logrus.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}
		srv = &http.Server{
			Addr:              cfg.HTTP.Listen,
			Handler:           api.New(device, store, stats, newTx, log.WithField("component", "http")).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Infof("HTTP API listening on %s", cfg.HTTP.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http: %w", err)
			}
		}()
	}

	// Receive loop
	go func() {
		for {
			capture, err := bridge.Next()
			if err != nil {
				if errors.Is(err, ir.ErrStreamResync) {
					log.WithError(err).Warn("capture stream resynchronized")
					continue
				}
				errCh <- fmt.Errorf("bridge read: %w", err)
				return
			}
			if err := device.OnReceive(capture.Receiver(cfg.Receiver.TolerancePercent)); err != nil {
				log.WithError(err).Debug("capture rejected")
			}
		}
	}()

	// Announce the initial state
	store.Publish()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errCh:
		log.WithError(err).Error("serve stopped")
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			log.WithError(serr).Warn("HTTP shutdown")
		}
	}
	return err
}
