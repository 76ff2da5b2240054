// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package device

import (
	"fmt"
	"image"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/real_robot/internal/config"
)

const (
	displayWidth  = 128
	displayHeight = 64
	lineHeight    = 13 // basicfont.Face7x13
	maxLines      = displayHeight / lineHeight
)

// screen is the part of *ssd1306.Dev the display uses.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

func openSSD1306(bus i2c.Bus) (screen, error) {
	return ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
}

// Display is an SSD1306 OLED showing a few lines of status text. It redraws
// only when the text changed.
type Display struct {
	name   string
	env    Env
	logger *zap.SugaredLogger
	open   func(bus i2c.Bus) (screen, error)

	dev   screen
	lines []string
	shown []string
}

// NewDisplay is the ActuatorConstructor for "display".
func NewDisplay(name string, env Env) Actuator {
	return &Display{name: name, env: env, logger: loggerFor(env), open: openSSD1306}
}

func (d *Display) Name() string { return d.name }

// Init opens the panel and shows the splash text.
func (d *Display) Init(params config.Params) error {
	bus, err := d.env.Handle.RequireBus(d.name)
	if err != nil {
		return err
	}
	title, err := params.String("title", "real_robot")
	if err != nil {
		return err
	}
	dev, err := d.open(bus)
	if err != nil {
		return fmt.Errorf("%s: failed to initialize display: %w", d.name, err)
	}
	d.dev = dev
	d.logger.Infof("%s: display initialized", d.name)

	d.SetLines(title, "Starting...")
	return d.Update()
}

// SetLines replaces the text shown on the next Update. Lines beyond what fits
// on the panel are dropped.
func (d *Display) SetLines(lines ...string) {
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	d.lines = append(d.lines[:0], lines...)
}

// Update redraws the panel if the text changed.
func (d *Display) Update() error {
	if slices.Equal(d.lines, d.shown) && d.shown != nil {
		return nil
	}
	if err := d.dev.Draw(d.dev.Bounds(), render(d.lines), image.Point{}); err != nil {
		return fmt.Errorf("%s: draw: %w", d.name, err)
	}
	d.shown = append(d.shown[:0], d.lines...)
	return nil
}

// Reset blanks the panel on the next Update.
func (d *Display) Reset() {
	d.lines = d.lines[:0]
}

// Close blanks and halts the panel.
func (d *Display) Close() error {
	if d.dev == nil {
		return nil
	}
	dev := d.dev
	d.dev = nil
	return dev.Halt()
}

func render(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, (i+1)*lineHeight)
		drawer.DrawString(line)
	}
	return img
}
