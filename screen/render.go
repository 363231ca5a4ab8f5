// Copyright 2022 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen

import (
	"fmt"
	"image/color"

	"github.com/idubrov/lcd"
)

// Render paints the panel into the writer: a bezel in the backlight color
// around the visible character cells. Consecutive calls repaint in place
// using cursor movement, so the panel animates instead of scrolling the
// terminal.
func (d *Dev) Render() error {
	// This code is designed to minimize the amount of memory allocated
	// per call.
	d.buf.Reset()
	if d.painted {
		fmt.Fprintf(&d.buf, "\033[%dA\r", d.rows+2)
	}
	bezel := d.palette.Block(d.bezelColor())
	for c := 0; c < d.cols+2; c++ {
		_, _ = d.buf.WriteString(bezel)
	}
	_, _ = d.buf.WriteString("\033[0m\n")
	for r := 0; r < d.rows; r++ {
		_, _ = d.buf.WriteString(bezel)
		_, _ = d.buf.WriteString("\033[0m")
		for c := 0; c < d.cols; c++ {
			d.cell(r, c)
		}
		_, _ = d.buf.WriteString(bezel)
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	for c := 0; c < d.cols+2; c++ {
		_, _ = d.buf.WriteString(bezel)
	}
	_, _ = d.buf.WriteString("\033[0m\n")
	d.painted = true
	if _, err := d.buf.WriteTo(d.w); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	return nil
}

func (d *Dev) cell(r, c int) {
	if !d.on {
		_ = d.buf.WriteByte(' ')
		return
	}
	addr := d.visibleAddr(r, c)
	attr := ""
	if !d.cgramSel && addr == d.ac {
		if d.cursor {
			attr += "\033[4m"
		}
		if d.blink {
			attr += "\033[5m"
		}
	}
	if attr != "" {
		_, _ = d.buf.WriteString(attr)
	}
	_, _ = d.buf.WriteRune(cellRune(d.ddram[addr]))
	if attr != "" {
		_, _ = d.buf.WriteString("\033[0m")
	}
}

// cellRune approximates a character code in the terminal. Codes 0 through
// 15 select the eight custom characters (the fourth index bit is ignored
// by the controller) and have no terminal equivalent; codes past ASCII
// come from the module ROM, which this emulator does not carry.
func cellRune(b byte) rune {
	switch {
	case b < 0x10:
		return '■'
	case b >= 0x20 && b < 0x7f:
		return rune(b)
	default:
		return '?'
	}
}

// bezelColor is the frame color, dim gray when the backlight is off.
func (d *Dev) bezelColor() color.NRGBA {
	if d.backlightOn {
		return d.backlight
	}
	return color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
}

// visibleAddr maps a panel cell to the DDRAM address shown in it, honoring
// the display shift. Rows past the second continue the two controller
// lines, the way 4-row modules are wired: on a 20x4 panel the third row
// shows line one from column 20.
func (d *Dev) visibleAddr(row, col int) byte {
	if !d.twoLine {
		return byte((col + row*d.cols + d.shift) % 80)
	}
	base := byte(0x00)
	if row%2 == 1 {
		base = 0x40
	}
	return base + byte((col+(row/2)*d.cols+d.shift)%40)
}

// Lines returns the visible cells as one raw string per row, display
// shift applied. Custom characters appear as their code points 0 through
// 7. Mostly useful in tests.
func (d *Dev) Lines() []string {
	lines := make([]string, d.rows)
	row := make([]byte, d.cols)
	for r := 0; r < d.rows; r++ {
		for c := 0; c < d.cols; c++ {
			row[c] = d.ddram[d.visibleAddr(r, c)]
		}
		lines[r] = string(row)
	}
	return lines
}

// Glyph returns the custom character currently uploaded to the given slot.
func (d *Dev) Glyph(slot int) lcd.Glyph {
	if slot < 0 || slot > 7 {
		panic(fmt.Sprintf("screen: custom character slot %d outside 0-7", slot))
	}
	var g lcd.Glyph
	for i := 0; i < 8; i++ {
		g[i] = d.cgram[slot*8+i] & 0x1f
	}
	return g
}
