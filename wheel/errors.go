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

package wheel

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidSlot is returned for a slot outside 0-7 or an unknown filter name.
	ErrInvalidSlot = errors.New("invalid filter slot")
	// ErrMotionInProgress is returned when a motion is requested while the wheel is moving.
	ErrMotionInProgress = errors.New("motion in progress")
	// ErrNotReady is returned when the driver has not been initialised.
	ErrNotReady = errors.New("filter wheel not initialised")
)

// HardwareInitError reports that the coil lines could not be claimed.
// The driver is not ready when this is returned.
type HardwareInitError struct {
	Err error
}

func (e *HardwareInitError) Error() string {
	return fmt.Sprintf("hardware init: %v", e.Err)
}

func (e *HardwareInitError) Unwrap() error {
	return e.Err
}

// MotionFault reports a coil write failure. Any motion in progress
// is abandoned and the wheel position is unknown until re-homed.
type MotionFault struct {
	Slot   int // last confirmed slot
	Target int // slot being moved to, or -1
	Phase  int
	Err    error
}

func (e *MotionFault) Error() string {
	if e.Target < 0 {
		return fmt.Sprintf("motion fault at slot %d (phase %d): %v", e.Slot, e.Phase, e.Err)
	}
	return fmt.Sprintf("motion fault moving from slot %d to %d (phase %d): %v", e.Slot, e.Target, e.Phase, e.Err)
}

func (e *MotionFault) Unwrap() error {
	return e.Err
}
