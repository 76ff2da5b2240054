// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// ./cmd/real_robot/main.go
//
// Runs one controller of an experiment on a physical (or simulated) robot
// at a fixed tick rate.
//
// Run:
//
//	go run ./cmd/real_robot run -c experiment.yaml -i c1
//	go run ./cmd/real_robot run -c experiment.yaml -i c1 -s robot_config.txt --debug
//	go run ./cmd/real_robot calibrate --from 0 --to 0.1 --step 0.005
//	go run ./cmd/real_robot devices
//	go run ./cmd/real_robot console -s robot_config.txt
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
)

var (
	settingsPath string
	debug        bool
)

var rootCmd = &cobra.Command{
	Use:   "real_robot",
	Short: "Fixed-rate controller runtime for a real robot.",
	Long: `real_robot binds the sensors and actuators an experiment declares, ` +
		`runs its controller once per tick and shuts everything down cleanly ` +
		`when the experiment ends or the process is interrupted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "robot_config.txt", "runtime settings file (KEY=VALUE)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "development logging at debug level")

	rootCmd.AddCommand(runCmd, calibrateCmd, devicesCmd, consoleCmd)
}

func newLogger() (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.Sugar(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
