// Copyright 2021 Ivan Dubrov. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdtest is meant to be used to test controller protocol traffic
// without hardware: its fake wirings record every signal transition and
// delay as a readable trace, and can play back scripted busy-flag reads.
package lcdtest

import (
	"fmt"
	"time"

	"github.com/idubrov/lcd"
)

// Recorder is a write-only fake wiring. It records every signal
// transition into Ops instead of driving anything, and implements
// lcd.Delay so pauses land in the trace rather than in the wall clock.
//
// Trace vocabulary: "rs=false", "en=true", "data=0b0011" (4-bit) or
// "data=0b01100001" (8-bit), "delay=50" (microseconds), and for the read
// side "rw=true" and "read".
type Recorder struct {
	// Ops is the recorded trace, one string per event.
	Ops []string

	mode lcd.FunctionMode
}

// NewRecorder returns a Recorder reporting the given bus width.
func NewRecorder(mode lcd.FunctionMode) *Recorder {
	return &Recorder{mode: mode}
}

// RS implements lcd.Hardware.
func (r *Recorder) RS(data bool) { r.record("rs=%t", data) }

// Enable implements lcd.Hardware.
func (r *Recorder) Enable(e bool) { r.record("en=%t", e) }

// Data implements lcd.Hardware.
func (r *Recorder) Data(value byte) {
	if r.mode == lcd.Bit8 {
		r.record("data=0b%08b", value)
	} else {
		r.record("data=0b%04b", value)
	}
}

// Mode implements lcd.ModeSelector.
func (r *Recorder) Mode() lcd.FunctionMode { return r.mode }

// Sleep implements lcd.Delay.
func (r *Recorder) Sleep(d time.Duration) {
	r.record("delay=%d", d/time.Microsecond)
}

func (r *Recorder) record(format string, args ...interface{}) {
	r.Ops = append(r.Ops, fmt.Sprintf(format, args...))
}

// ReadRecorder is a Recorder with a scripted read side, which makes the
// Display poll the busy flag. ReadData consumes Status front to back;
// reading past the end of the script is a test bug and panics.
type ReadRecorder struct {
	Recorder
	// Status is the remaining script of raw bus reads. In 4-bit mode one
	// busy poll consumes two entries, high nibble first.
	Status []byte
}

// NewReadRecorder returns a ReadRecorder with the given bus width and
// read script.
func NewReadRecorder(mode lcd.FunctionMode, status []byte) *ReadRecorder {
	return &ReadRecorder{Recorder: Recorder{mode: mode}, Status: status}
}

// RW implements lcd.Reader.
func (r *ReadRecorder) RW(read bool) { r.record("rw=%t", read) }

// ReadData implements lcd.Reader.
func (r *ReadRecorder) ReadData() byte {
	if len(r.Status) == 0 {
		panic("lcdtest: read past the end of the status script")
	}
	r.record("read")
	v := r.Status[0]
	r.Status = r.Status[1:]
	return v
}

var _ lcd.Hardware = &Recorder{}
var _ lcd.ModeSelector = &Recorder{}
var _ lcd.Delay = &Recorder{}
var _ lcd.Hardware = &ReadRecorder{}
var _ lcd.Reader = &ReadRecorder{}
