// Copyright 2021 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import (
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// MonoBacklight switches a backlight wired to a single on/off pin. Most
// bare HD44780 modules bring the backlight LED out on separate pins, so it
// is controlled next to the Display rather than through it.
type MonoBacklight struct {
	pin gpio.PinOut
}

// NewMonoBacklight returns a backlight control over the given pin.
func NewMonoBacklight(pin gpio.PinOut) *MonoBacklight {
	return &MonoBacklight{pin: pin}
}

// Backlight implements display.DisplayBacklight. Any nonzero intensity
// turns the backlight on; there is no dimming on a plain pin.
func (b *MonoBacklight) Backlight(intensity display.Intensity) error {
	return b.pin.Out(gpio.Level(intensity > 0))
}

var _ display.DisplayBacklight = &MonoBacklight{}
