// SPDX-License-Identifier: MIT

package fitter

// Status is the state of the fit state machine.
type Status uint8

// Fit states.
const (
	StatusInitializing Status = iota
	StatusForward
	StatusBackward
	StatusConverged
	StatusFailed
)

var statusNames = [...]string{
	StatusInitializing: "initializing",
	StatusForward:      "forward",
	StatusBackward:     "backward",
	StatusConverged:    "converged",
	StatusFailed:       "failed",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}

	return "unknown"
}

// Terminal reports whether s ends the state machine.
func (s Status) Terminal() bool { return s == StatusConverged || s == StatusFailed }
