// Package sensor turns polled boolean readings into motion triggers.
package sensor

import "time"

type Reading struct {
	Value bool
	At    time.Time
}

// Trigger fires on a rising edge of the reading while no recording is in
// progress. A reading held high fires once.
type Trigger struct {
	previous Reading
}

// Observe records the reading and reports whether a capture should start.
func (self *Trigger) Observe(reading Reading, recording bool) bool {
	fire := reading.Value && !self.previous.Value && !recording
	self.previous = reading
	return fire
}

// Reset makes reading the baseline for the next edge without firing.
func (self *Trigger) Reset(reading Reading) {
	self.previous = reading
}

// Previous is the last observed reading.
func (self *Trigger) Previous() Reading {
	return self.previous
}
