// Copyright 2021 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
)

// GPIO drives the controller over directly wired pins: a gpio.Group for
// the data lines and discrete pins for register select and enable. The
// group can come from host GPIO, a pin expander, a shift register, or
// anything else that implements it.
//
// Pin writes cannot report errors through the Hardware interface; the
// first failure is retained and available from Err.
type GPIO struct {
	data gpio.Group
	rs   gpio.PinOut
	e    gpio.PinOut
	mode FunctionMode
	mask gpio.GPIOValue
	err  error
}

// NewGPIO wires up a write-only controller connection. The first pins of
// the data group must be the data lines: D4-D7 for 4-bit operation, D0-D7
// for 8-bit. A group of eight or more pins selects 8-bit transfers. The
// enable line is driven low so the first strobe has a clean edge.
func NewGPIO(data gpio.Group, rs, e gpio.PinOut) (*GPIO, error) {
	g := &GPIO{data: data, rs: rs, e: e, mode: Bit4, mask: 0x0f}
	n := len(data.Pins())
	if n < 4 {
		return nil, fmt.Errorf("lcd: data group needs at least 4 pins, got %d", n)
	}
	if n >= 8 {
		g.mode = Bit8
		g.mask = 0xff
	}
	if err := e.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("lcd: %w", err)
	}
	log.Debugf("lcd: gpio wiring over %s (%s bus)", data, g.mode)
	return g, nil
}

// RS implements Hardware.
func (g *GPIO) RS(data bool) { g.set(g.rs, data) }

// Enable implements Hardware.
func (g *GPIO) Enable(e bool) { g.set(g.e, e) }

// Data implements Hardware.
func (g *GPIO) Data(value byte) {
	if err := g.data.Out(gpio.GPIOValue(value), g.mask); err != nil && g.err == nil {
		g.err = fmt.Errorf("lcd: %w", err)
	}
}

// Mode implements ModeSelector. The width follows the size of the data
// group.
func (g *GPIO) Mode() FunctionMode { return g.mode }

// Err returns the first pin failure observed since construction, or nil.
func (g *GPIO) Err() error { return g.err }

func (g *GPIO) set(pin gpio.PinOut, level bool) {
	if err := pin.Out(gpio.Level(level)); err != nil && g.err == nil {
		g.err = fmt.Errorf("lcd: %w", err)
	}
}

// GPIOReader is a GPIO wiring with the R/W line connected, which lets the
// Display poll the busy flag instead of pacing itself with worst-case
// delays. The data group must support Read.
type GPIOReader struct {
	GPIO
	rw gpio.PinOut
}

// NewGPIOReader wires up a read-capable controller connection. Pin layout
// matches NewGPIO; rw is the R/W line and is driven low (write) initially.
func NewGPIOReader(data gpio.Group, rs, e, rw gpio.PinOut) (*GPIOReader, error) {
	g, err := NewGPIO(data, rs, e)
	if err != nil {
		return nil, err
	}
	if err := rw.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("lcd: %w", err)
	}
	return &GPIOReader{GPIO: *g, rw: rw}, nil
}

// RW implements Reader.
func (g *GPIOReader) RW(read bool) { g.set(g.rw, read) }

// ReadData implements Reader. A failed group read reports zero, which the
// busy poll takes as ready, so a broken bus cannot hang the caller; the
// failure stays visible through Err.
func (g *GPIOReader) ReadData() byte {
	v, err := g.data.Read(g.mask)
	if err != nil {
		if g.err == nil {
			g.err = fmt.Errorf("lcd: %w", err)
		}
		return 0
	}
	return byte(v)
}

var _ Hardware = &GPIO{}
var _ ModeSelector = &GPIO{}
var _ Hardware = &GPIOReader{}
var _ Reader = &GPIOReader{}
