// Copyright 2021 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

import "time"

// Hardware is the write side of the controller bus. It is the only
// capability a Display requires; everything else in this file is optional
// and discovered with a type assertion when the Display is created.
//
// Implementations are expected to be infallible: parallel pin writes either
// work or the wiring is broken in a way software cannot address. Adapters
// sitting on fallible transports (I²C, SPI) should latch the first failure
// and expose it through an Err() accessor instead of dropping it.
type Hardware interface {
	// RS sets the register select line. False selects the instruction
	// register, true selects the data register.
	RS(data bool)
	// Enable sets the enable line. The controller samples the data lines
	// on the falling edge.
	Enable(e bool)
	// Data presents a value on the data lines. In 4-bit mode only the low
	// four bits are used.
	Data(value byte)
}

// Reader is the read side of the controller bus. Hardware that implements
// it is polled for the busy flag after every transfer; hardware that does
// not is paced with worst-case delays instead. The choice is made once,
// when the Display is created.
type Reader interface {
	// RW sets the read/write line. True switches the bus to reading; the
	// data lines must be released so the controller can drive them.
	RW(read bool)
	// ReadData samples the data lines. In 4-bit mode the nibble is
	// returned in the low four bits.
	ReadData() byte
}

// Applier is implemented by hardware that buffers line changes and needs an
// explicit commit to present them all at once, such as an I²C pin expander
// that rewrites its whole port per transaction. For hardware without it,
// every line change is assumed to reach the controller immediately.
type Applier interface {
	// Apply commits all line changes made since the previous call.
	Apply()
}

// AddressSetup is implemented by hardware that needs extra settling time
// between changing register select and strobing enable (datasheet tAS).
// Direct pin wiring never needs this; transports slower than one controller
// cycle get it for free and should not implement it either.
type AddressSetup interface {
	// WaitAddress blocks until the address lines have settled.
	WaitAddress()
}

// ModeSelector reports the bus width the hardware is wired for. Hardware
// without it is driven in 4-bit mode.
type ModeSelector interface {
	// Mode returns the wired bus width.
	Mode() FunctionMode
}

// Delay pauses execution. The controller needs pauses between one
// microsecond (enable pulse width) and a few milliseconds (power-on
// handshake); hardware may implement Delay to substitute its own timing
// source, otherwise time.Sleep is used.
type Delay interface {
	// Sleep blocks for at least d.
	Sleep(d time.Duration)
}

// stdDelay paces the protocol with the wall clock.
type stdDelay struct{}

func (stdDelay) Sleep(d time.Duration) { time.Sleep(d) }
