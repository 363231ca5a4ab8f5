// Copyright 2021 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcd drives Hitachi HD44780 compatible character LCD controllers.
//
// The package deals with the controller protocol only: the power-on
// handshake, 4-bit and 8-bit transfer framing, busy-flag polling with a
// fixed-delay fallback, and the instruction set (clear, home, entry mode,
// display control, shifts, addressing, custom characters). The wiring lives
// behind the Hardware capability and its optional extensions, so the same
// Display runs over direct GPIO, an I²C backpack, or the in-terminal
// emulator from the screen subpackage.
//
// A Display owns its hardware exclusively and is strictly synchronous:
// every operation returns only after the controller is known ready for the
// next one.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package lcd

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
)

// Instruction timing from the datasheet, with margin.
const (
	instructionDelay = 50 * time.Microsecond   // nominal execution is 37µs
	clearHomeDelay   = 2000 * time.Microsecond // clear and home run up to 1.52ms
	strobeDelay      = 1 * time.Microsecond    // enable pulse width, minimum 450ns
	addressDelay     = 5 * time.Microsecond    // tADD, address counter update
	powerOnDelay     = 4500 * time.Microsecond // first function set needs more than 4.1ms
	repeatDelay      = 150 * time.Microsecond  // repeated function set needs more than 100µs
)

// Display is the protocol state machine for one controller. It holds no
// screen contents and no cursor shadow; the only state is the owned
// hardware object and the capabilities resolved from it at construction.
//
// A Display must not be copied or shared between goroutines. Operations
// map one to one onto controller instructions and block until the
// controller has finished executing, either by polling the busy flag (when
// the hardware implements Reader) or by sleeping the datasheet worst case.
type Display struct {
	hw     Hardware
	mode   FunctionMode
	delay  Delay
	reader Reader // nil when the hardware is write-only

	apply       func()
	waitAddress func()
}

// New creates a Display over the given hardware. The bus width, readiness
// strategy, commit and address-setup behavior, and the timing source are
// fixed here, from the optional interfaces the hardware implements. No bus
// traffic happens until Init is called.
func New(hw Hardware) *Display {
	d := &Display{
		hw:          hw,
		mode:        Bit4,
		delay:       stdDelay{},
		apply:       func() {},
		waitAddress: func() {},
	}
	if m, ok := hw.(ModeSelector); ok {
		d.mode = m.Mode()
	}
	if a, ok := hw.(Applier); ok {
		d.apply = a.Apply
	}
	if w, ok := hw.(AddressSetup); ok {
		d.waitAddress = w.WaitAddress
	}
	if s, ok := hw.(Delay); ok {
		d.delay = s
	}
	if r, ok := hw.(Reader); ok {
		d.reader = r
	}
	return d
}

// Init drives the controller from its unknown power-on state into the
// requested line count and font, display off, cleared, with left-to-right
// entry mode. It must be called once before any other operation.
//
// The controller powers up in 8-bit mode with possibly half-executed
// state, so the datasheet prescribes sending the function set three times
// with fixed pauses before it can be trusted; in 4-bit wiring the controller
// only ever sees the high nibble during that phase, plus one extra nibble
// that commits the narrow bus.
func (d *Display) Init(line FunctionLine, dots FunctionDots) {
	log.Debugf("lcd: initializing display (%s bus)", d.mode)
	d.hw.RS(false)
	d.apply()
	d.waitAddress()
	if d.mode == Bit8 {
		d.sendData(cmdFunctionSet | byte(Bit8) | byte(Line2) | byte(Dots5x10))
		d.delay.Sleep(powerOnDelay)
		d.pulseEnable() // second attempt, lines unchanged
		d.delay.Sleep(repeatDelay)
		d.pulseEnable() // third attempt
		d.waitReady(instructionDelay)
	} else {
		d.sendData((cmdFunctionSet | byte(Bit8)) >> 4)
		d.delay.Sleep(powerOnDelay)
		d.pulseEnable() // second attempt, lines unchanged
		d.delay.Sleep(repeatDelay)
		d.pulseEnable() // third attempt
		d.waitReady(instructionDelay)

		// The controller is in a known 8-bit state now; one more high
		// nibble switches it to 4-bit transfers.
		d.sendData((cmdFunctionSet | byte(Bit4)) >> 4)
		d.waitReady(instructionDelay)
	}

	d.command(cmdFunctionSet | byte(d.mode) | byte(line) | byte(dots))
	d.SetDisplay(DisplayOff, CursorOff, BlinkOff)
	d.Clear()
	d.EntryMode(EntryRight, NoShift)
}

// Clear clears the display and moves the cursor to address 0.
func (d *Display) Clear() {
	d.command(cmdClearDisplay)
	// Runs much longer than ordinary instructions.
	d.waitReady(clearHomeDelay)
}

// Home moves the cursor to address 0 and undoes any display shift. DDRAM
// contents are unchanged.
func (d *Display) Home() {
	d.command(cmdReturnHome)
	// Runs much longer than ordinary instructions.
	d.waitReady(clearHomeDelay)
}

// EntryMode sets the direction the cursor moves after each data access and
// whether the display shifts instead of the cursor.
func (d *Display) EntryMode(dir EntryModeDirection, shift EntryModeShift) {
	d.command(cmdEntryModeSet | byte(dir) | byte(shift))
}

// SetDisplay turns the display, the underline cursor, and cursor blinking
// on or off.
func (d *Display) SetDisplay(mode DisplayMode, cursor DisplayCursor, blink DisplayBlink) {
	d.command(cmdDisplayControl | byte(mode) | byte(cursor) | byte(blink))
}

// Scroll shifts the visible display window one position without touching
// DDRAM or the cursor address.
func (d *Display) Scroll(dir Direction) {
	d.command(cmdCursorShift | displayMove | byte(dir))
}

// ShiftCursor moves the cursor one position without writing data.
func (d *Display) ShiftCursor(dir Direction) {
	d.command(cmdCursorShift | cursorMove | byte(dir))
}

// Position moves the cursor to the zero-based column and row. Rows 0-3 map
// to the standard DDRAM windows {0x00, 0x40, 0x14, 0x54}; any other row
// falls back to the first window.
func (d *Display) Position(col, row int) {
	var offset byte
	switch row {
	case 1:
		offset = 0x40
	case 2:
		offset = 0x14
	case 3:
		offset = 0x54
	}
	d.command(cmdSetDDRAMAddr | (byte(col) + offset))
}

// WriteByte writes one byte at the cursor position and advances the
// address counter per the entry mode. It implements io.ByteWriter; the
// returned error is always nil.
func (d *Display) WriteByte(b byte) error {
	d.write(b)
	return nil
}

// Write writes every byte of p at the cursor position, one controller
// transaction per byte. It implements io.Writer so formatted output can be
// sent with fmt.Fprintf; the returned error is always nil.
func (d *Display) Write(p []byte) (int, error) {
	for _, b := range p {
		d.write(b)
	}
	return len(p), nil
}

// WriteString implements io.StringWriter. The returned error is always nil.
func (d *Display) WriteString(s string) (int, error) {
	d.Print(s)
	return len(s), nil
}

// Print writes text at the cursor position, byte by byte. Character codes
// 0-7 select the custom glyphs installed with UploadCharacter.
func (d *Display) Print(text string) {
	for i := 0; i < len(text); i++ {
		d.write(text[i])
	}
}

// UploadCharacter installs a custom glyph in one of the eight CGRAM slots.
// Printing the byte equal to the slot number then renders the glyph. Slots
// outside 0-7 do not exist on the chip; asking for one panics.
//
// The cursor position is clobbered: CGRAM upload moves the address counter,
// so follow with Position (or Home) before writing text.
func (d *Display) UploadCharacter(slot int, glyph Glyph) {
	if slot < 0 || slot > 7 {
		panic(fmt.Sprintf("lcd: custom character slot %d outside 0-7", slot))
	}
	d.command(cmdSetCGRAMAddr | byte(slot)<<3)
	for _, row := range glyph {
		d.write(row)
	}
}

// Release tears the Display down and returns the hardware object it was
// created from, so the caller can reconfigure or close it. The Display
// must not be used afterwards.
func (d *Display) Release() Hardware {
	hw := d.hw
	*d = Display{}
	return hw
}

// command latches an instruction byte and waits out its execution.
func (d *Display) command(cmd byte) {
	d.hw.RS(false)
	d.apply()
	d.waitAddress() // tAS
	d.send(cmd)
	d.waitReady(instructionDelay)
}

// write latches a data byte and waits out its execution.
func (d *Display) write(data byte) {
	d.hw.RS(true)
	d.apply()
	d.waitAddress() // tAS
	d.send(data)
	d.waitReady(instructionDelay)
	// The address counter needs another 4µs (tADD) after busy clears.
	d.delay.Sleep(addressDelay)
}

// send frames one byte for the configured bus width.
func (d *Display) send(data byte) {
	if d.mode == Bit8 {
		d.sendData(data)
	} else {
		d.sendData(data >> 4)
		d.sendData(data & 0x0f)
	}
}

// sendData presents value on the data lines and strobes it into the
// controller.
func (d *Display) sendData(value byte) {
	d.hw.Data(value)
	d.apply()
	d.pulseEnable()
}

func (d *Display) pulseEnable() {
	d.hw.Enable(true)
	d.apply()
	d.delay.Sleep(strobeDelay)
	d.hw.Enable(false)
	d.apply()
}

// waitReady blocks until the controller can accept the next instruction:
// by polling the busy flag when the hardware can read, otherwise by
// sleeping the given worst-case duration.
func (d *Display) waitReady(fallback time.Duration) {
	if d.reader == nil {
		d.delay.Sleep(fallback)
		return
	}
	d.hw.RS(false)
	d.reader.RW(true)
	d.apply()
	d.waitAddress() // tAS

	// No deadline: a controller that never reports ready hangs the
	// caller, the same way a broken wire would on the delay path.
	for d.receive()&0x80 != 0 {
	}

	d.reader.RW(false)
	d.apply()
}

// receiveData strobes enable and samples the data lines once.
func (d *Display) receiveData() byte {
	d.hw.Enable(true)
	d.apply()
	d.delay.Sleep(strobeDelay)
	value := d.reader.ReadData()
	d.delay.Sleep(strobeDelay)
	d.hw.Enable(false)
	d.apply()
	return value
}

// receive reads one status byte, reassembling nibbles in 4-bit mode.
func (d *Display) receive() byte {
	if d.mode == Bit8 {
		return d.receiveData()
	}
	hi := d.receiveData()
	lo := d.receiveData()
	return hi<<4 | lo&0x0f
}

var _ io.Writer = &Display{}
var _ io.StringWriter = &Display{}
var _ io.ByteWriter = &Display{}
