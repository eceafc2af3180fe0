// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wheel drives a stepper motor filter wheel with eight filter slots.
package wheel

// Phases is the number of entries in the half-step sequence.
const Phases = 8

// CoilPattern holds the levels of the four motor coils.
type CoilPattern [4]bool

// StepTable is the half-step drive sequence, plus the rest pattern
// used to de-energise the motor when it is stationary.
// Each entry differs from its neighbours by exactly one coil.
type StepTable struct {
	seq  [Phases]CoilPattern
	rest CoilPattern
}

// HalfStepTable is the standard half-step sequence for a unipolar motor.
var HalfStepTable = &StepTable{
	seq: [Phases]CoilPattern{
		{true, false, false, false},
		{true, true, false, false},
		{false, true, false, false},
		{false, true, true, false},
		{false, false, true, false},
		{false, false, true, true},
		{false, false, false, true},
		{true, false, false, true},
	},
}

// PatternAt returns the coil pattern for the phase, taken modulo 8.
func (t *StepTable) PatternAt(phase int) CoilPattern {
	return t.seq[phaseOf(phase)]
}

// Rest returns the all-off pattern.
func (t *StepTable) Rest() CoilPattern {
	return t.rest
}

func phaseOf(p int) int {
	return ((p % Phases) + Phases) % Phases
}
