// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relabs-tech/real_robot/internal/app"
	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/telemetry"
	"github.com/relabs-tech/real_robot/internal/transport"
)

var (
	experimentPath string
	controllerID   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one controller of an experiment.",
	Long: "`run -c experiment.yaml -i <id>` binds the devices of controller <id>, " +
		"runs it until the experiment length elapses or SIGINT/SIGTERM arrives, " +
		"then stops the motors and releases the hardware.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()
		return runRobot(cmd.Context(), logger)
	},
}

func init() {
	runCmd.Flags().StringVarP(&experimentPath, "config", "c", "", "experiment file (YAML)")
	runCmd.Flags().StringVarP(&controllerID, "id", "i", "", "controller id to run")
	runCmd.MarkFlagRequired("config")
	runCmd.MarkFlagRequired("id")
}

func runRobot(parent context.Context, logger *zap.SugaredLogger) error {
	if err := config.InitGlobal(settingsPath); err != nil {
		return err
	}
	settings := config.Get()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle, err := transport.Open(settings, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := handle.Close(); err != nil {
			logger.Warnf("robot: closing robot connection: %v", err)
		}
	}()

	hub := telemetry.NewHub(32, logger)
	sinks, err := openSinks(settings, hub, logger)
	if err != nil {
		return err
	}

	robot, err := app.NewRobot(app.Options{
		ExperimentPath: experimentPath,
		ControllerID:   controllerID,
		Handle:         handle,
		Sink:           sinks,
		Logger:         logger,
	})
	if err != nil {
		if cerr := sinks.Close(); cerr != nil {
			logger.Warnf("robot: closing telemetry: %v", cerr)
		}
		return err
	}

	if settings.WebServerPort != 0 {
		webCtx, cancelWeb := context.WithCancel(context.Background())
		defer cancelWeb()
		web := app.NewWebServer(robot.Status, hub, logger)
		go func() {
			if err := web.RunWeb(webCtx, settings.WebServerPort); err != nil {
				logger.Warnf("web: %v", err)
			}
		}()
	}

	return robot.Execute(ctx)
}

// openSinks builds the telemetry fan-out. A broker that cannot be reached
// only costs the MQTT stream; a recording that cannot be opened is fatal.
func openSinks(settings *config.Settings, hub *telemetry.Hub, logger *zap.SugaredLogger) (telemetry.Multi, error) {
	sinks := telemetry.Multi{hub}

	if settings.MQTTBroker != "" {
		pub, err := telemetry.NewPublisher(settings.MQTTBroker, settings.MQTTClientID, settings.TopicTick, settings.TopicEvents, logger)
		if err != nil {
			logger.Warnf("robot: telemetry over MQTT disabled: %v", err)
		} else {
			sinks = append(sinks, pub)
		}
	}

	if settings.RecordDB != "" {
		rec, err := telemetry.NewRecorder(settings.RecordDB, telemetry.DefaultBatchSize, logger)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, rec)
	}

	return sinks, nil
}
