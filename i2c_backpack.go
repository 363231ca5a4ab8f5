// Copyright 2021 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

// DefaultBackpackAddress is the factory address of PCF8574 backpack boards
// with the A0-A2 bridges open. PCF8574A based boards answer at 0x3f.
const DefaultBackpackAddress uint16 = 0x27

// Port bit assignment of the mass produced I²C backpack boards.
const (
	bpRS        byte = 0x01
	bpRW        byte = 0x02
	bpEnable    byte = 0x04
	bpBacklight byte = 0x08
	// D4-D7 occupy the high nibble.
)

// I2CBackpack drives the controller through the PCF8574 expander on the
// common I²C backpack boards. The expander exposes a single 8-bit port, so
// individual line changes cannot reach the wires one at a time; they are
// collected in a shadow byte and written as one port update by Apply.
//
// The board wires only D4-D7, so the bus always runs in 4-bit mode. The
// R/W line is connected, which makes busy-flag polling available.
type I2CBackpack struct {
	dev   i2c.Dev
	state byte
	err   error
}

// NewI2CBackpack opens the backpack at addr on the given bus and settles
// its port: all control lines low, backlight on.
func NewI2CBackpack(bus i2c.Bus, addr uint16) (*I2CBackpack, error) {
	b := &I2CBackpack{dev: i2c.Dev{Bus: bus, Addr: addr}, state: bpBacklight}
	if err := b.flush(); err != nil {
		return nil, err
	}
	log.Debugf("lcd: pcf8574 backpack at %#02x on %s", addr, bus)
	return b, nil
}

// String implements fmt.Stringer.
func (b *I2CBackpack) String() string {
	return fmt.Sprintf("pcf8574{%s}", &b.dev)
}

// RS implements Hardware.
func (b *I2CBackpack) RS(data bool) { b.setBit(bpRS, data) }

// Enable implements Hardware.
func (b *I2CBackpack) Enable(e bool) { b.setBit(bpEnable, e) }

// Data implements Hardware. Only the low nibble of value is used.
func (b *I2CBackpack) Data(value byte) {
	b.state = b.state&0x0f | value<<4
}

// Apply implements Applier: one port write carrying every line change
// since the previous call.
func (b *I2CBackpack) Apply() {
	if err := b.flush(); err != nil && b.err == nil {
		b.err = err
	}
}

// Mode implements ModeSelector. The backpack has no D0-D3 wiring.
func (b *I2CBackpack) Mode() FunctionMode { return Bit4 }

// RW implements Reader. Switching to read also latches the data bits high;
// the PCF8574 port is quasi-bidirectional and the controller can only
// drive pins that are released this way.
func (b *I2CBackpack) RW(read bool) {
	b.setBit(bpRW, read)
	if read {
		b.state |= 0xf0
	}
}

// ReadData implements Reader: samples the port and returns the controller
// nibble from D4-D7 in the low bits. A failed bus read reports zero (not
// busy) so the poll loop cannot hang; the failure stays visible through
// Err.
func (b *I2CBackpack) ReadData() byte {
	var buf [1]byte
	if err := b.dev.Tx(nil, buf[:]); err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("lcd: %w", err)
		}
		return 0
	}
	return buf[0] >> 4
}

// Backlight implements display.DisplayBacklight. The board routes one
// port bit through a transistor to the LED, so any nonzero intensity is
// simply on. The change is pushed to the port immediately.
func (b *I2CBackpack) Backlight(intensity display.Intensity) error {
	b.setBit(bpBacklight, intensity > 0)
	return b.flush()
}

// Err returns the first bus failure observed on the signal path, or nil.
func (b *I2CBackpack) Err() error { return b.err }

func (b *I2CBackpack) setBit(bit byte, on bool) {
	if on {
		b.state |= bit
	} else {
		b.state &^= bit
	}
}

func (b *I2CBackpack) flush() error {
	if err := b.dev.Tx([]byte{b.state}, nil); err != nil {
		return fmt.Errorf("lcd: %w", err)
	}
	return nil
}

var _ Hardware = &I2CBackpack{}
var _ Reader = &I2CBackpack{}
var _ Applier = &I2CBackpack{}
var _ ModeSelector = &I2CBackpack{}
var _ display.DisplayBacklight = &I2CBackpack{}
