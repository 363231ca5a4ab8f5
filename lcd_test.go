// Copyright 2021 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcd_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/idubrov/lcd"
	"github.com/idubrov/lcd/lcdtest"
)

// runTrace records the bus traffic of ops over a write-only wiring.
func runTrace(t *testing.T, mode lcd.FunctionMode, ops func(*lcd.Display)) []string {
	t.Helper()
	d := lcd.New(lcdtest.NewRecorder(mode))
	ops(d)
	return d.Release().(*lcdtest.Recorder).Ops
}

// runReadTrace records the bus traffic of ops over a wiring that answers
// busy-flag reads from the given script.
func runReadTrace(t *testing.T, mode lcd.FunctionMode, status []byte, ops func(*lcd.Display)) []string {
	t.Helper()
	d := lcd.New(lcdtest.NewReadRecorder(mode, status))
	ops(d)
	rec := d.Release().(*lcdtest.ReadRecorder)
	if len(rec.Status) != 0 {
		t.Errorf("busy script not fully consumed: %d reads left", len(rec.Status))
	}
	return rec.Ops
}

func compareTrace(t *testing.T, found, expected []string) {
	t.Helper()
	if len(found) != len(expected) {
		t.Errorf("invalid trace length. found: %d expected: %d", len(found), len(expected))
	}
	for i := 0; i < len(found) && i < len(expected); i++ {
		if found[i] != expected[i] {
			t.Errorf("trace diverges at %d. found %q expected %q", i, found[i], expected[i])
			return
		}
	}
}

func TestInit4Bit(t *testing.T) {
	found := runTrace(t, lcd.Bit4, func(d *lcd.Display) {
		d.Init(lcd.Line2, lcd.Dots5x8)
	})
	expected := []string{
		// Function set, three times, with power-on pauses.
		"rs=false",
		"data=0b0011",
		"en=true",
		"delay=1",
		"en=false",
		"delay=4500",
		"en=true",
		"delay=1",
		"en=false",
		"delay=150",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		// One more nibble commits 4-bit transfers.
		"data=0b0010",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		// Lines and font.
		"rs=false",
		"data=0b0010",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b1000",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		// Display off.
		"rs=false",
		"data=0b0000",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b1000",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		// Clear.
		"rs=false",
		"data=0b0000",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b0001",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		"delay=2000",
		// Entry mode.
		"rs=false",
		"data=0b0000",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b0110",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
	}
	compareTrace(t, found, expected)
}

func TestInit8Bit(t *testing.T) {
	found := runTrace(t, lcd.Bit8, func(d *lcd.Display) {
		d.Init(lcd.Line2, lcd.Dots5x8)
	})
	expected := []string{
		// Function set, three times, with power-on pauses.
		"rs=false",
		"data=0b00111100",
		"en=true",
		"delay=1",
		"en=false",
		"delay=4500",
		"en=true",
		"delay=1",
		"en=false",
		"delay=150",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		// Lines and font.
		"rs=false",
		"data=0b00111000",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		// Display off.
		"rs=false",
		"data=0b00001000",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		// Clear.
		"rs=false",
		"data=0b00000001",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		"delay=2000",
		// Entry mode.
		"rs=false",
		"data=0b00000110",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
	}
	compareTrace(t, found, expected)
}

func TestClear(t *testing.T) {
	found := runTrace(t, lcd.Bit4, func(d *lcd.Display) { d.Clear() })
	compareTrace(t, found, []string{
		"rs=false",
		"data=0b0000",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b0001",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		"delay=2000",
	})

	found = runTrace(t, lcd.Bit8, func(d *lcd.Display) { d.Clear() })
	compareTrace(t, found, []string{
		"rs=false",
		"data=0b00000001",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		"delay=2000",
	})
}

// The driver keeps no state between calls, so repeating a command must
// repeat the exact same trace.
func TestClearTwice(t *testing.T) {
	found := runTrace(t, lcd.Bit4, func(d *lcd.Display) {
		d.Clear()
		d.Clear()
	})
	if len(found)%2 != 0 {
		t.Fatalf("odd trace length %d", len(found))
	}
	compareTrace(t, found[:len(found)/2], found[len(found)/2:])
}

func TestHome(t *testing.T) {
	found := runTrace(t, lcd.Bit4, func(d *lcd.Display) { d.Home() })
	compareTrace(t, found, []string{
		"rs=false",
		"data=0b0000",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b0010",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		"delay=2000",
	})

	found = runTrace(t, lcd.Bit8, func(d *lcd.Display) { d.Home() })
	compareTrace(t, found, []string{
		"rs=false",
		"data=0b00000010",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
		"delay=2000",
	})
}

func TestEntryMode(t *testing.T) {
	tests := []struct {
		dir   lcd.EntryModeDirection
		shift lcd.EntryModeShift
		lo    string
	}{
		{lcd.EntryLeft, lcd.NoShift, "data=0b0100"},
		{lcd.EntryRight, lcd.Shift, "data=0b0111"},
	}
	for _, tt := range tests {
		found := runTrace(t, lcd.Bit4, func(d *lcd.Display) {
			d.EntryMode(tt.dir, tt.shift)
		})
		compareTrace(t, found, []string{
			"rs=false",
			"data=0b0000",
			"en=true",
			"delay=1",
			"en=false",
			tt.lo,
			"en=true",
			"delay=1",
			"en=false",
			"delay=50",
		})
	}
}

func TestScroll(t *testing.T) {
	tests := []struct {
		dir lcd.Direction
		lo  string
	}{
		{lcd.Left, "data=0b1000"},
		{lcd.Right, "data=0b1100"},
	}
	for _, tt := range tests {
		found := runTrace(t, lcd.Bit4, func(d *lcd.Display) { d.Scroll(tt.dir) })
		compareTrace(t, found, []string{
			"rs=false",
			"data=0b0001",
			"en=true",
			"delay=1",
			"en=false",
			tt.lo,
			"en=true",
			"delay=1",
			"en=false",
			"delay=50",
		})
	}
}

func TestShiftCursor(t *testing.T) {
	tests := []struct {
		dir lcd.Direction
		lo  string
	}{
		{lcd.Left, "data=0b0000"},
		{lcd.Right, "data=0b0100"},
	}
	for _, tt := range tests {
		found := runTrace(t, lcd.Bit4, func(d *lcd.Display) { d.ShiftCursor(tt.dir) })
		compareTrace(t, found, []string{
			"rs=false",
			"data=0b0001",
			"en=true",
			"delay=1",
			"en=false",
			tt.lo,
			"en=true",
			"delay=1",
			"en=false",
			"delay=50",
		})
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		col, row int
		hi, lo   string
	}{
		{3, 0, "data=0b1000", "data=0b0011"},
		{3, 1, "data=0b1100", "data=0b0011"},
		{7, 2, "data=0b1001", "data=0b1011"},
		{8, 3, "data=0b1101", "data=0b1100"},
		// Rows beyond the fourth fall back to the first row offset.
		{2, 7, "data=0b1000", "data=0b0010"},
	}
	for _, tt := range tests {
		found := runTrace(t, lcd.Bit4, func(d *lcd.Display) { d.Position(tt.col, tt.row) })
		compareTrace(t, found, []string{
			"rs=false",
			tt.hi,
			"en=true",
			"delay=1",
			"en=false",
			tt.lo,
			"en=true",
			"delay=1",
			"en=false",
			"delay=50",
		})
	}
}

func TestPrint(t *testing.T) {
	found := runTrace(t, lcd.Bit4, func(d *lcd.Display) { d.Print("hello") })
	write := func(hi, lo string) []string {
		return []string{
			"rs=true",
			hi,
			"en=true",
			"delay=1",
			"en=false",
			lo,
			"en=true",
			"delay=1",
			"en=false",
			"delay=50",
			"delay=5",
		}
	}
	var expected []string
	expected = append(expected, write("data=0b0110", "data=0b1000")...) // h
	expected = append(expected, write("data=0b0110", "data=0b0101")...) // e
	expected = append(expected, write("data=0b0110", "data=0b1100")...) // l
	expected = append(expected, write("data=0b0110", "data=0b1100")...) // l
	expected = append(expected, write("data=0b0110", "data=0b1111")...) // o
	compareTrace(t, found, expected)
}

func TestUploadCharacter(t *testing.T) {
	arrow := lcd.Glyph{0b00000, 0b01000, 0b01100, 0b01110, 0b11111, 0b01110, 0b01100, 0b01000}
	found := runTrace(t, lcd.Bit4, func(d *lcd.Display) {
		d.UploadCharacter(3, arrow)
	})
	expected := []string{
		// CGRAM address of slot 3.
		"rs=false",
		"data=0b0101",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b1000",
		"en=true",
		"delay=1",
		"en=false",
		"delay=50",
	}
	write := func(hi, lo string) []string {
		return []string{
			"rs=true",
			hi,
			"en=true",
			"delay=1",
			"en=false",
			lo,
			"en=true",
			"delay=1",
			"en=false",
			"delay=50",
			"delay=5",
		}
	}
	expected = append(expected, write("data=0b0000", "data=0b0000")...)
	expected = append(expected, write("data=0b0000", "data=0b1000")...)
	expected = append(expected, write("data=0b0000", "data=0b1100")...)
	expected = append(expected, write("data=0b0000", "data=0b1110")...)
	expected = append(expected, write("data=0b0001", "data=0b1111")...)
	expected = append(expected, write("data=0b0000", "data=0b1110")...)
	expected = append(expected, write("data=0b0000", "data=0b1100")...)
	expected = append(expected, write("data=0b0000", "data=0b1000")...)
	compareTrace(t, found, expected)
}

func TestUploadCharacterBadSlot(t *testing.T) {
	d := lcd.New(lcdtest.NewRecorder(lcd.Bit4))
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for slot 8")
		}
	}()
	d.UploadCharacter(8, lcd.Glyph{})
}

func TestInitBusy4Bit(t *testing.T) {
	found := runReadTrace(t, lcd.Bit4, make([]byte, 14), func(d *lcd.Display) {
		d.Init(lcd.Line2, lcd.Dots5x8)
	})
	// One busy poll: both nibbles of the status byte are strobed in.
	poll := []string{
		"rs=false",
		"rw=true",
		"en=true",
		"delay=1",
		"read",
		"delay=1",
		"en=false",
		"en=true",
		"delay=1",
		"read",
		"delay=1",
		"en=false",
		"rw=false",
	}
	expected := []string{
		// Function set, three times, with power-on pauses. The busy poll
		// takes over from the third repeat on.
		"rs=false",
		"data=0b0011",
		"en=true",
		"delay=1",
		"en=false",
		"delay=4500",
		"en=true",
		"delay=1",
		"en=false",
		"delay=150",
		"en=true",
		"delay=1",
		"en=false",
	}
	expected = append(expected, poll...)
	// One more nibble commits 4-bit transfers.
	expected = append(expected,
		"data=0b0010",
		"en=true",
		"delay=1",
		"en=false",
	)
	expected = append(expected, poll...)
	// Lines and font.
	expected = append(expected,
		"rs=false",
		"data=0b0010",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b1000",
		"en=true",
		"delay=1",
		"en=false",
	)
	expected = append(expected, poll...)
	// Display off.
	expected = append(expected,
		"rs=false",
		"data=0b0000",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b1000",
		"en=true",
		"delay=1",
		"en=false",
	)
	expected = append(expected, poll...)
	// Clear polls twice, once for the instruction and once more for the
	// long execution window.
	expected = append(expected,
		"rs=false",
		"data=0b0000",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b0001",
		"en=true",
		"delay=1",
		"en=false",
	)
	expected = append(expected, poll...)
	expected = append(expected, poll...)
	// Entry mode.
	expected = append(expected,
		"rs=false",
		"data=0b0000",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b0110",
		"en=true",
		"delay=1",
		"en=false",
	)
	expected = append(expected, poll...)
	compareTrace(t, found, expected)
}

func TestWriteBusy4Bit(t *testing.T) {
	found := runReadTrace(t, lcd.Bit4, []byte{0, 0}, func(d *lcd.Display) {
		_ = d.WriteByte('a')
	})
	expected := []string{
		"rs=true",
		"data=0b0110",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b0001",
		"en=true",
		"delay=1",
		"en=false",
		"rs=false",
		"rw=true",
		"en=true",
		"delay=1",
		"read",
		"delay=1",
		"en=false",
		"en=true",
		"delay=1",
		"read",
		"delay=1",
		"en=false",
		"rw=false",
		"delay=5",
	}
	compareTrace(t, found, expected)
}

func TestWriteBusy8Bit(t *testing.T) {
	found := runReadTrace(t, lcd.Bit8, []byte{0}, func(d *lcd.Display) {
		_ = d.WriteByte('a')
	})
	expected := []string{
		"rs=true",
		"data=0b01100001",
		"en=true",
		"delay=1",
		"en=false",
		"rs=false",
		"rw=true",
		"en=true",
		"delay=1",
		"read",
		"delay=1",
		"en=false",
		"rw=false",
		"delay=5",
	}
	compareTrace(t, found, expected)
}

func TestWriteBusy4BitLongBusy(t *testing.T) {
	// Three polls see the busy flag in the high nibble, the fourth one
	// reads clear.
	found := runReadTrace(t, lcd.Bit4, []byte{8, 0, 8, 0, 8, 0, 0, 0}, func(d *lcd.Display) {
		_ = d.WriteByte('a')
	})
	expected := []string{
		"rs=true",
		"data=0b0110",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b0001",
		"en=true",
		"delay=1",
		"en=false",
		"rs=false",
		"rw=true",
	}
	for i := 0; i < 8; i++ {
		expected = append(expected,
			"en=true",
			"delay=1",
			"read",
			"delay=1",
			"en=false",
		)
	}
	expected = append(expected, "rw=false", "delay=5")
	compareTrace(t, found, expected)
}

func TestWriteBusy8BitLongBusy(t *testing.T) {
	found := runReadTrace(t, lcd.Bit8, []byte{128, 128, 128, 0}, func(d *lcd.Display) {
		_ = d.WriteByte('a')
	})
	expected := []string{
		"rs=true",
		"data=0b01100001",
		"en=true",
		"delay=1",
		"en=false",
		"rs=false",
		"rw=true",
	}
	for i := 0; i < 4; i++ {
		expected = append(expected,
			"en=true",
			"delay=1",
			"read",
			"delay=1",
			"en=false",
		)
	}
	expected = append(expected, "rw=false", "delay=5")
	compareTrace(t, found, expected)
}

func TestWriter(t *testing.T) {
	found := runTrace(t, lcd.Bit8, func(d *lcd.Display) {
		fmt.Fprintf(d, "%03d", 42)
	})
	write := func(data string) []string {
		return []string{
			"rs=true",
			data,
			"en=true",
			"delay=1",
			"en=false",
			"delay=50",
			"delay=5",
		}
	}
	var expected []string
	expected = append(expected, write("data=0b00110000")...) // 0
	expected = append(expected, write("data=0b00110100")...) // 4
	expected = append(expected, write("data=0b00110010")...) // 2
	compareTrace(t, found, expected)
}

func TestStringWriter(t *testing.T) {
	found := runTrace(t, lcd.Bit8, func(d *lcd.Display) {
		n, err := io.WriteString(d, "ok")
		if n != 2 || err != nil {
			t.Errorf("WriteString returned (%d, %v)", n, err)
		}
	})
	write := func(data string) []string {
		return []string{
			"rs=true",
			data,
			"en=true",
			"delay=1",
			"en=false",
			"delay=50",
			"delay=5",
		}
	}
	var expected []string
	expected = append(expected, write("data=0b01101111")...) // o
	expected = append(expected, write("data=0b01101011")...) // k
	compareTrace(t, found, expected)
}

// pinsOnly hides every optional capability of the recorder, leaving the
// bare write-only wiring.
type pinsOnly struct {
	r *lcdtest.Recorder
}

func (p pinsOnly) RS(data bool)    { p.r.RS(data) }
func (p pinsOnly) Enable(e bool)   { p.r.Enable(e) }
func (p pinsOnly) Data(value byte) { p.r.Data(value) }

func TestDefaultCapabilities(t *testing.T) {
	// Without ModeSelector the bus runs 4-bit, and without Delay the
	// pauses go to the wall clock instead of the trace.
	rec := lcdtest.NewRecorder(lcd.Bit4)
	d := lcd.New(pinsOnly{r: rec})
	d.Clear()
	expected := []string{
		"rs=false",
		"data=0b0000",
		"en=true",
		"en=false",
		"data=0b0001",
		"en=true",
		"en=false",
	}
	compareTrace(t, rec.Ops, expected)
}

// settler is a read-capable wiring whose address lines need explicit
// settling before enable can strobe.
type settler struct {
	*lcdtest.ReadRecorder
}

func (s *settler) WaitAddress() {
	s.Ops = append(s.Ops, "wait-addr")
}

func TestAddressSetup(t *testing.T) {
	// The settle hook runs after every register select change: before a
	// command goes out, and inside the busy poll between switching the
	// bus to read and the first status strobe.
	rec := &settler{lcdtest.NewReadRecorder(lcd.Bit4, []byte{0, 0})}
	d := lcd.New(rec)
	d.EntryMode(lcd.EntryRight, lcd.NoShift)
	if len(rec.Status) != 0 {
		t.Errorf("busy script not fully consumed: %d reads left", len(rec.Status))
	}
	expected := []string{
		"rs=false",
		"wait-addr",
		"data=0b0000",
		"en=true",
		"delay=1",
		"en=false",
		"data=0b0110",
		"en=true",
		"delay=1",
		"en=false",
		"rs=false",
		"rw=true",
		"wait-addr",
		"en=true",
		"delay=1",
		"read",
		"delay=1",
		"en=false",
		"en=true",
		"delay=1",
		"read",
		"delay=1",
		"en=false",
		"rw=false",
	}
	compareTrace(t, rec.Ops, expected)
}

func TestRelease(t *testing.T) {
	rec := lcdtest.NewRecorder(lcd.Bit4)
	d := lcd.New(rec)
	d.Home()
	if hw := d.Release(); hw != rec {
		t.Errorf("Release returned %v, not the original hardware", hw)
	}
}
