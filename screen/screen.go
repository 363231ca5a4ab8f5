// Copyright 2022 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen emulates an HD44780 character module in the terminal
// using ANSI color codes.
//
// The emulator sits on the chip side of the lcd capability interfaces: it
// decodes enable strobes into instructions the way the silicon does,
// keeps DDRAM, CGRAM and the address counter, answers busy-flag reads,
// and paints the visible window into any io.Writer.
//
// Useful while you are waiting for the actual display module to come by
// mail, and for end to end protocol tests.
package screen

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"

	"github.com/idubrov/lcd"
)

// Opts represents the options available for the emulated module.
type Opts struct {
	// Rows and Cols form the visible panel size. Defaults are 2 and 16.
	// Panels with more than two rows reuse the two controller lines, so
	// they are limited to 20 columns, like the real modules.
	Rows, Cols int
	// Mode is the wiring width presented to the driver. Default is Bit4.
	Mode lcd.FunctionMode
	// W receives the rendered frames. Default is the colorable stdout.
	W io.Writer
	// Palette converts bezel colors to terminal escapes. Default is
	// ansi256.Default.
	Palette *ansi256.Palette
	// Backlight is the bezel color when the backlight is on. Default is
	// the classic yellow-green module look.
	Backlight color.NRGBA
	// AutoRender repaints the panel after every executed instruction.
	AutoRender bool

	_ struct{}
}

// Dev is an HD44780 module emulator that outputs to the console.
//
// It implements the lcd capability interfaces including the read side, so
// a Display created over it polls the busy flag (the emulator is always
// ready) and the whole protocol path gets exercised, power-on handshake
// included.
type Dev struct {
	w         io.Writer
	rows      int
	cols      int
	wiring    lcd.FunctionMode
	palette   ansi256.Palette
	backlight color.NRGBA
	auto      bool

	// Bus state.
	rs        bool
	rw        bool
	en        bool
	dataLines byte

	// Interface state machine. The chip powers up talking 8-bit; a 4-bit
	// wiring feeds it high nibbles until the function set narrows it.
	width8      bool
	nibbleHi    byte
	nibbleRS    bool
	nibblePend  bool
	readLatch   byte
	readPend    bool

	// Controller model.
	ddram    [128]byte
	cgram    [64]byte
	ac       byte
	cgramSel bool
	twoLine  bool
	entryInc bool
	entrySh  bool
	on       bool
	cursor   bool
	blink    bool
	shift    int

	backlightOn bool
	painted     bool
	buf         bytes.Buffer
}

// New returns an emulated module that displays at the console.
//
// Wire it to a Display the same way real hardware would be:
//
//	dev, _ := screen.New(&screen.Opts{AutoRender: true})
//	disp := lcd.New(dev)
//	disp.Init(lcd.Line2, lcd.Dots5x8)
//	disp.Print("hello")
func New(opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	d := &Dev{
		w:           opts.W,
		rows:        opts.Rows,
		cols:        opts.Cols,
		wiring:      opts.Mode,
		backlight:   opts.Backlight,
		auto:        opts.AutoRender,
		width8:      true,
		entryInc:    true,
		backlightOn: true,
	}
	if d.rows == 0 {
		d.rows = 2
	}
	if d.cols == 0 {
		d.cols = 16
	}
	if d.rows < 1 || d.rows > 4 {
		return nil, fmt.Errorf("screen: unsupported row count %d", d.rows)
	}
	max := 40
	if d.rows > 2 {
		max = 20
	}
	if d.cols < 1 || d.cols > max {
		return nil, fmt.Errorf("screen: %d columns do not fit %d rows", d.cols, d.rows)
	}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d.palette = *p
	if d.backlight == (color.NRGBA{}) {
		d.backlight = color.NRGBA{R: 0x9f, G: 0xd0, B: 0x33, A: 0xff}
	}
	for i := range d.ddram {
		d.ddram[i] = ' '
	}
	return d, nil
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("screen(%dx%d)", d.cols, d.rows)
}

// Halt implements conn.Resource. It drops out of the frame and resets the
// terminal attributes so the console is not left corrupted.
func (d *Dev) Halt() error {
	d.painted = false
	if _, err := d.w.Write([]byte("\n\033[0m")); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	return nil
}

// RS implements lcd.Hardware.
func (d *Dev) RS(data bool) {
	if data != d.nibbleRS {
		// A register change between nibble halves restarts the pairing,
		// the same way the silicon resynchronizes.
		d.nibblePend = false
	}
	d.rs = data
}

// Enable implements lcd.Hardware. Writes latch on the falling edge.
func (d *Dev) Enable(e bool) {
	if d.en && !e && !d.rw {
		d.latch()
	}
	d.en = e
}

// Data implements lcd.Hardware.
func (d *Dev) Data(value byte) {
	if d.wiring == lcd.Bit8 {
		d.dataLines = value
	} else {
		d.dataLines = value & 0x0f
	}
}

// RW implements lcd.Reader.
func (d *Dev) RW(read bool) {
	d.rw = read
	if !read {
		d.readPend = false
	}
}

// Mode implements lcd.ModeSelector: the wiring width chosen in Opts.
func (d *Dev) Mode() lcd.FunctionMode { return d.wiring }

// Sleep implements lcd.Delay. The emulator executes instantly, so
// protocol pauses have nothing to pace and are dropped.
func (d *Dev) Sleep(time.Duration) {}

// Backlight implements display.DisplayBacklight by recoloring the bezel.
func (d *Dev) Backlight(intensity display.Intensity) error {
	d.backlightOn = intensity > 0
	if d.auto {
		return d.Render()
	}
	return nil
}

var _ lcd.Hardware = &Dev{}
var _ lcd.Reader = &Dev{}
var _ lcd.ModeSelector = &Dev{}
var _ lcd.Delay = &Dev{}
var _ conn.Resource = &Dev{}
var _ display.DisplayBacklight = &Dev{}
