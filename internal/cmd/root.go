// SPDX-License-Identifier: AGPL-3.0-or-later
// umpbridge - A multi-transport MIDI router/bridge
// Copyright (C) 2026 umpbridge contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package cmd wires the router core and its transport/collaborator
// implementations into a runnable service: configuration, logging,
// metrics/pprof servers, the configuration store, the four transports,
// and graceful shutdown.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/USA-RedDragon/configulator"
	"github.com/go-co-op/gocron/v2"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/hollowgate/umpbridge/internal/config"
	"github.com/hollowgate/umpbridge/internal/kv"
	"github.com/hollowgate/umpbridge/internal/metrics"
	"github.com/hollowgate/umpbridge/internal/pprof"
	"github.com/hollowgate/umpbridge/internal/router"
	"github.com/hollowgate/umpbridge/internal/transport"
	"github.com/hollowgate/umpbridge/internal/transport/netmidi2"
	"github.com/hollowgate/umpbridge/internal/transport/serialdin"
	"github.com/hollowgate/umpbridge/internal/transport/usbmidi"
)

// numTransports is fixed at the four transports the router's default
// format preferences (internal/router's defaultFormatPreferences)
// assume: serial DIN, USB MIDI, and the two Network-MIDI2 roles.
const numTransports = 4

// statsSampleInterval is how often router counters are copied into the
// Prometheus gauge set and the translator's abandoned SysEx7 streams
// are reaped.
const statsSampleInterval = 30 * time.Second

// staleTranslatorStateAge bounds how long an in-flight SysEx7
// reassembly may sit idle before CleanupStaleTranslatorState reclaims it.
const staleTranslatorStateAge = 5 * time.Minute

// NewCommand builds the root cobra command.
func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "umpbridge",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("umpbridge - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return fmt.Errorf("failed to get config from context: %w", err)
	}

	cfg, err := c.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	setupLogger(cfg)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	var cleanup func(context.Context) error
	if cfg.Metrics.OTLPEndpoint != "" {
		cleanup = initTracer(cfg)
		defer func() {
			if err := cleanup(ctx); err != nil {
				slog.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}
	go func() {
		if err := metrics.CreateMetricsServer(cfg); err != nil {
			slog.Error("Failed to start metrics server", "error", err)
		}
	}()
	go pprof.CreatePProfServer(cfg)

	kvStore, err := kv.MakeKV(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to key-value store: %w", err)
	}

	rtr := router.New(numTransports, cfg.Router.QueueCapacity)
	rtr.SetAutoTranslate(cfg.Router.AutoTranslate)
	rtr.SetMergeMode(cfg.Router.MergeInputs)
	rtr.SetDefaultGroup(uint8(cfg.Router.DefaultGroup)) //nolint:gosec
	if err := rtr.LoadConfig(ctx, kvStore); err != nil {
		slog.Info("No persisted router configuration found, starting with an empty matrix", "error", err)
	}
	if err := rtr.Init(); err != nil {
		return fmt.Errorf("failed to start router dispatcher: %w", err)
	}

	routerMetrics := metrics.NewRouterMetrics()
	setupRouterMaintenanceJob(scheduler, rtr, routerMetrics)

	scheduler.Start()

	transports, err := startTransports(ctx, cfg, rtr)
	if err != nil {
		rtr.Deinit()
		return err
	}

	stop := func(sig os.Signal) {
		slog.Error("Shutting down due to signal", "signal", sig)
		wg := new(sync.WaitGroup)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := scheduler.StopJobs(); err != nil {
				slog.Error("Failed to stop scheduler jobs", "error", err)
			}
			if err := scheduler.Shutdown(); err != nil {
				slog.Error("Failed to stop scheduler", "error", err)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			stopTransports(stopCtx, transports)
			if err := rtr.SaveConfig(ctx, kvStore); err != nil {
				slog.Error("Failed to persist router configuration", "error", err)
			}
			rtr.Deinit()
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := kvStore.Close(); err != nil {
				slog.Error("Failed to close key-value store", "error", err)
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if cleanup != nil {
				shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				if err := cleanup(shutdownCtx); err != nil {
					slog.Error("Failed to shutdown tracer", "error", err)
				}
			}
		}()

		const timeout = 10 * time.Second
		c := make(chan struct{})
		go func() {
			defer close(c)
			wg.Wait()
		}()
		select {
		case <-c:
			slog.Info("Shutdown safely completed")
			os.Exit(0)
		case <-time.After(timeout):
			slog.Error("Shutdown timed out")
			os.Exit(1)
		}
	}
	defer stop(syscall.SIGINT)

	shutdown.AddWithParam(stop)
	shutdown.Listen(syscall.SIGINT, syscall.SIGKILL, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	return nil
}

// setupLogger configures the structured logger.
func setupLogger(cfg *config.Config) {
	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelInfo:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
}

// setupRouterMaintenanceJob schedules the periodic metrics sample and
// stale-translator-state reap that keep the router's Prometheus gauges
// fresh and bound SysEx7 reassembly memory.
func setupRouterMaintenanceJob(scheduler gocron.Scheduler, rtr *router.Router, routerMetrics *metrics.RouterMetrics) {
	_, err := scheduler.NewJob(
		gocron.DurationJob(statsSampleInterval),
		gocron.NewTask(func() {
			snap := rtr.GetStats()
			routerMetrics.SampleRouterStats(metrics.RouterSnapshot{
				PacketsFiltered: snap.PacketsFiltered,
				QueueDropped:    snap.QueueDropped,
				TxDropped:       snap.TxDropped,
				PacketsRouted:   snap.PacketsRouted,
				RoutingErrors:   snap.RoutingErrors,
			}, func(i int) string { return router.TransportID(i).String() })

			if n := rtr.CleanupStaleTranslatorState(staleTranslatorStateAge); n > 0 {
				slog.Debug("Reaped abandoned SysEx7 reassembly state", "count", n)
			}
		}),
	)
	if err != nil {
		slog.Error("Failed to schedule router maintenance job", "error", err)
	}
}

// startTransports constructs, registers, and starts every transport
// enabled in cfg, returning the ones that started successfully so the
// caller can stop them symmetrically. A failure partway through stops
// whatever already started before returning the error.
func startTransports(ctx context.Context, cfg *config.Config, rtr *router.Router) ([]transport.Transport, error) {
	var started []transport.Transport

	add := func(t transport.Transport) error {
		rtr.RegisterTx(t.ID(), t.TX)
		if err := t.Start(ctx, rtr); err != nil {
			return err
		}
		started = append(started, t)
		return nil
	}

	if cfg.Serial.Enabled {
		if err := add(serialdin.New(router.TransportSerialDIN, cfg.Serial.Port)); err != nil {
			stopTransports(ctx, started)
			return nil, fmt.Errorf("failed to start serial DIN transport: %w", err)
		}
	}
	if cfg.USBMIDI.Enabled {
		if err := add(usbmidi.New(router.TransportUSBMIDI, cfg.USBMIDI.PortName)); err != nil {
			stopTransports(ctx, started)
			return nil, fmt.Errorf("failed to start USB-MIDI transport: %w", err)
		}
	}
	if cfg.NetworkMIDI2Client.Enabled {
		client := netmidi2.NewClient(router.TransportNetworkMIDI2A, cfg.NetworkMIDI2Client.ServerHost, cfg.NetworkMIDI2Client.ServerPort)
		if err := add(client); err != nil {
			stopTransports(ctx, started)
			return nil, fmt.Errorf("failed to start Network-MIDI2 client transport: %w", err)
		}
	}
	if cfg.NetworkMIDI2Server.Enabled {
		bind := fmt.Sprintf("%s:%d", cfg.NetworkMIDI2Server.Bind, cfg.NetworkMIDI2Server.Port)
		server := netmidi2.NewServer(router.TransportNetworkMIDI2B, bind, cfg.NetworkMIDI2Server.ServiceName)
		if err := add(server); err != nil {
			stopTransports(ctx, started)
			return nil, fmt.Errorf("failed to start Network-MIDI2 server transport: %w", err)
		}
	}

	return started, nil
}

func stopTransports(ctx context.Context, transports []transport.Transport) {
	for _, t := range transports {
		if err := t.Stop(ctx); err != nil {
			slog.Error("Failed to stop transport", "transport", t.ID(), "error", err)
		}
	}
}

func initTracer(cfg *config.Config) func(context.Context) error {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		slog.Error("Failed to set up tracing", "error", err)
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "umpbridge"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		slog.Error("Could not set trace resources", "error", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown
}
