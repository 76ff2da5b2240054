// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/real_robot/internal/app"
	"github.com/relabs-tech/real_robot/internal/calibration"
	"github.com/relabs-tech/real_robot/internal/config"
	"github.com/relabs-tech/real_robot/internal/controller"
	"github.com/relabs-tech/real_robot/internal/device"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Print the proximity calibration curve.",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetFloat64("from")
		to, _ := cmd.Flags().GetFloat64("to")
		step, _ := cmd.Flags().GetFloat64("step")
		return printCalibration(cmd.OutOrStdout(), from, to, step)
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the built-in sensors, actuators and controllers.",
	Run: func(cmd *cobra.Command, args []string) {
		printDevices(cmd.OutOrStdout(), device.DefaultFactory(), controller.DefaultRegistry())
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Print live ticks from the MQTT telemetry topics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if err := config.InitGlobal(settingsPath); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.RunConsole(ctx, config.Get(), cmd.OutOrStdout(), logger)
	},
}

func init() {
	calibrateCmd.Flags().Float64("from", 0, "first distance in meters")
	calibrateCmd.Flags().Float64("to", 0.1, "last distance in meters")
	calibrateCmd.Flags().Float64("step", 0.005, "distance step in meters")
}

func printCalibration(w io.Writer, from, to, step float64) error {
	if from < 0 || to < from || step <= 0 {
		return fmt.Errorf("need 0 <= from <= to and step > 0, got from=%v to=%v step=%v", from, to, step)
	}
	fmt.Fprintf(w, "%10s  %14s\n", "distance_m", "reading")
	n := int((to-from)/step + 1e-9)
	for i := 0; i <= n; i++ {
		d := from + float64(i)*step
		fmt.Fprintf(w, "%10.4f  %14.6e\n", d, calibration.CalculateReading(d))
	}
	return nil
}

func printDevices(w io.Writer, f *device.Factory, r *controller.Registry) {
	fmt.Fprintf(w, "sensors:     %s\n", strings.Join(f.Sensors(), ", "))
	fmt.Fprintf(w, "actuators:   %s\n", strings.Join(f.Actuators(), ", "))
	fmt.Fprintf(w, "controllers: %s\n", strings.Join(r.Kinds(), ", "))
}
