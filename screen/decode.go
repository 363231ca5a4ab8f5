// Copyright 2022 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen

import (
	"github.com/idubrov/lcd"
)

// latch consumes a strobed write: a full byte on 8-bit wiring, otherwise a
// nibble that either starts or completes a pair. While the chip still
// believes the interface is 8-bit (power-on, before the narrowing function
// set), a nibble arrives on D7-D4 and executes as a whole byte with the
// low half floating, which is exactly what makes the datasheet's
// three-repeat handshake work.
func (d *Dev) latch() {
	d.readPend = false
	if d.width8 {
		b := d.dataLines
		if d.wiring != lcd.Bit8 {
			b = d.dataLines << 4
		}
		d.execute(d.rs, b)
		return
	}
	if !d.nibblePend {
		d.nibbleHi = d.dataLines & 0x0f
		d.nibbleRS = d.rs
		d.nibblePend = true
		return
	}
	d.nibblePend = false
	d.execute(d.rs, d.nibbleHi<<4|d.dataLines&0x0f)
}

// execute runs one complete instruction or data byte.
func (d *Dev) execute(rs bool, b byte) {
	if rs {
		d.dataWrite(b)
	} else {
		d.instruction(b)
	}
	if d.auto {
		// Rendering failures have nowhere to go on this path; the
		// explicit Render call reports them.
		_ = d.Render()
	}
}

// instruction decodes by the highest set bit, the controller's own rule.
func (d *Dev) instruction(b byte) {
	switch {
	case b&0x80 != 0: // set DDRAM address
		d.ac = b & 0x7f
		d.cgramSel = false
	case b&0x40 != 0: // set CGRAM address
		d.ac = b & 0x3f
		d.cgramSel = true
	case b&0x20 != 0: // function set
		d.width8 = b&byte(lcd.Bit8) != 0
		d.twoLine = b&byte(lcd.Line2) != 0
	case b&0x10 != 0: // cursor or display shift
		right := b&byte(lcd.Right) != 0
		if b&0x08 != 0 {
			d.shiftDisplay(right)
		} else {
			d.advance(right)
		}
	case b&0x08 != 0: // display control
		d.on = b&byte(lcd.DisplayOn) != 0
		d.cursor = b&byte(lcd.CursorOn) != 0
		d.blink = b&byte(lcd.BlinkOn) != 0
	case b&0x04 != 0: // entry mode set
		d.entryInc = b&byte(lcd.EntryRight) != 0
		d.entrySh = b&byte(lcd.Shift) != 0
	case b&0x02 != 0: // return home
		d.ac = 0
		d.cgramSel = false
		d.shift = 0
	case b&0x01 != 0: // clear display
		for i := range d.ddram {
			d.ddram[i] = ' '
		}
		d.ac = 0
		d.cgramSel = false
		d.shift = 0
		d.entryInc = true
	}
}

func (d *Dev) dataWrite(b byte) {
	if d.cgramSel {
		d.cgram[d.ac&0x3f] = b
		d.advanceCGRAM()
		return
	}
	d.ddram[d.ac&0x7f] = b
	d.advance(d.entryInc)
	if d.entrySh {
		// Shift-on-entry scrolls the window instead of leaving the
		// cursor behind.
		d.shiftDisplay(!d.entryInc)
	}
}

// ReadData implements lcd.Reader. With the bus in read mode the chip
// presents the busy flag and address counter (instruction register) or the
// RAM byte under the cursor (data register). In 4-bit operation a value
// takes two strobes, high nibble first; while the chip still talks 8-bit,
// a 4-bit wiring only ever sees the high nibble.
func (d *Dev) ReadData() byte {
	if d.width8 {
		v := d.readValue()
		if d.rs {
			d.readAdvance()
		}
		if d.wiring != lcd.Bit8 {
			return v >> 4
		}
		return v
	}
	if !d.readPend {
		d.readLatch = d.readValue()
		d.readPend = true
		return d.readLatch >> 4
	}
	d.readPend = false
	if d.rs {
		d.readAdvance()
	}
	return d.readLatch & 0x0f
}

// readValue samples the selected register. The emulator finishes every
// instruction instantly, so the busy flag always reads clear.
func (d *Dev) readValue() byte {
	if !d.rs {
		return d.ac & 0x7f
	}
	if d.cgramSel {
		return d.cgram[d.ac&0x3f]
	}
	return d.ddram[d.ac&0x7f]
}

// readAdvance moves the address counter after a completed data read.
// Reads never shift the display.
func (d *Dev) readAdvance() {
	if d.cgramSel {
		d.advanceCGRAM()
	} else {
		d.advance(d.entryInc)
	}
}

func (d *Dev) advanceCGRAM() {
	if d.entryInc {
		d.ac = (d.ac + 1) & 0x3f
	} else {
		d.ac = (d.ac - 1) & 0x3f
	}
}

// advance moves the address counter one position through DDRAM, honoring
// the line topology: in two line mode the first line ends at 0x27 and
// continues at 0x40, in one line mode the single line wraps at 0x4f.
func (d *Dev) advance(inc bool) {
	if d.twoLine {
		if inc {
			switch d.ac {
			case 0x27:
				d.ac = 0x40
			case 0x67:
				d.ac = 0x00
			default:
				d.ac = (d.ac + 1) & 0x7f
			}
		} else {
			switch d.ac {
			case 0x40:
				d.ac = 0x27
			case 0x00:
				d.ac = 0x67
			default:
				d.ac = (d.ac - 1) & 0x7f
			}
		}
		return
	}
	if inc {
		if d.ac >= 0x4f {
			d.ac = 0
		} else {
			d.ac++
		}
	} else {
		if d.ac == 0 {
			d.ac = 0x4f
		} else {
			d.ac--
		}
	}
}

// shiftDisplay moves the visible window. A right shift moves characters
// right, so the window slides left.
func (d *Dev) shiftDisplay(right bool) {
	w := d.lineWidth()
	if right {
		d.shift = (d.shift - 1 + w) % w
	} else {
		d.shift = (d.shift + 1) % w
	}
}

func (d *Dev) lineWidth() int {
	if d.twoLine {
		return 40
	}
	return 80
}
