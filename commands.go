// Copyright 2021 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd

// Instruction opcodes. Every instruction byte is one opcode combined with
// option flags from that opcode's group; bits below the opcode bit are the
// only valid options for it.
const (
	cmdClearDisplay   byte = 0x01
	cmdReturnHome     byte = 0x02
	cmdEntryModeSet   byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdCursorShift    byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80
)

// A cmdCursorShift instruction moves either the cursor or the visible
// display window. The target is not part of the public surface; Scroll
// and ShiftCursor pick it.
const (
	cursorMove  byte = 0x00
	displayMove byte = 0x08
)

// FunctionMode is the width of the data bus.
type FunctionMode byte

const (
	// Bit4 transfers every byte as two nibbles over D4-D7.
	Bit4 FunctionMode = 0x00
	// Bit8 transfers every byte in one strobe over D0-D7.
	Bit8 FunctionMode = 0x10
)

// String returns the conventional name of the bus width.
func (mode FunctionMode) String() string {
	if mode == Bit8 {
		return "8-bit"
	}
	return "4-bit"
}

// FunctionLine is the number of display lines the controller multiplexes.
type FunctionLine byte

const (
	// Line1 is single line display.
	Line1 FunctionLine = 0x00
	// Line2 is two line display (also the right choice for 4-row modules,
	// which are wired as two 40-character lines).
	Line2 FunctionLine = 0x08
)

// FunctionDots is the character font height.
type FunctionDots byte

const (
	// Dots5x8 is the 5x8 font.
	Dots5x8 FunctionDots = 0x00
	// Dots5x10 is the 5x10 font. Only valid for single line displays.
	Dots5x10 FunctionDots = 0x04
)

// EntryModeDirection is the direction the address counter moves after a
// data access.
type EntryModeDirection byte

const (
	// EntryLeft decrements the address counter (text runs right to left).
	EntryLeft EntryModeDirection = 0x00
	// EntryRight increments the address counter (text runs left to right).
	EntryRight EntryModeDirection = 0x02
)

// EntryModeShift selects whether the whole display shifts on data access
// instead of the cursor moving.
type EntryModeShift byte

const (
	// NoShift moves the cursor, display stays put.
	NoShift EntryModeShift = 0x00
	// Shift scrolls the display, cursor stays put.
	Shift EntryModeShift = 0x01
)

// DisplayMode turns the display on or off. DDRAM contents are kept while
// the display is off.
type DisplayMode byte

const (
	// DisplayOff blanks the display.
	DisplayOff DisplayMode = 0x00
	// DisplayOn shows the display.
	DisplayOn DisplayMode = 0x04
)

// DisplayCursor turns the underline cursor on or off.
type DisplayCursor byte

const (
	// CursorOff hides the cursor.
	CursorOff DisplayCursor = 0x00
	// CursorOn shows an underline at the cursor position.
	CursorOn DisplayCursor = 0x02
)

// DisplayBlink turns cursor position blinking on or off.
type DisplayBlink byte

const (
	// BlinkOff disables blinking.
	BlinkOff DisplayBlink = 0x00
	// BlinkOn blinks the character cell at the cursor position.
	BlinkOn DisplayBlink = 0x01
)

// Direction is the direction of a cursor or display shift.
type Direction byte

const (
	// Left shifts towards lower addresses.
	Left Direction = 0x00
	// Right shifts towards higher addresses.
	Right Direction = 0x04
)
