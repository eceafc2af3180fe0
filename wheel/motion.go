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
	"sync"

	"github.com/pkg/errors"
)

// Slots is the number of filter positions on the wheel.
const Slots = 8

const noTarget = -1

// Direction of phase advancement.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// State is the motion state of the wheel.
// Remaining is non-zero exactly when a motion is in progress,
// and Target is only valid (not -1) at the same time.
type State struct {
	Current   int       // Last confirmed resting slot
	Target    int       // Slot being moved to, -1 if idle
	Phase     int       // Index into the step table
	Direction Direction // Direction of the current motion
	Remaining int       // Half-steps left to move
	Lost      bool      // Position unreliable after a fault or abort
}

// Moving returns true if a motion is in progress.
func (s State) Moving() bool {
	return s.Remaining > 0
}

// Controller plans the motion of the wheel. It never drives the
// motor; the drive loop consumes the plan one half-step at a time.
// mu guards st, and is shared with the drive loop.
type Controller struct {
	halfSteps int // Half-steps per slot
	mu        sync.Mutex
	st        State
}

// NewController creates an idle controller at the initial slot, phase 0.
func NewController(halfSteps, initial int) *Controller {
	c := new(Controller)
	c.halfSteps = halfSteps
	c.st.Current = initial
	c.st.Target = noTarget
	c.st.Direction = Forward
	return c
}

// Plan returns the signed shortest distance in slots from one slot
// to another around the wheel, in the range [-4, 3].
func Plan(from, to int) int {
	return (((to-from+Slots/2)%Slots)+Slots)%Slots - Slots/2
}

// RequestMotion plans a move to the slot. It returns false if the wheel
// is already at the slot and nothing needs to move.
func (c *Controller) RequestMotion(slot int) (bool, error) {
	if slot < 0 || slot >= Slots {
		return false, errors.Wrapf(ErrInvalidSlot, "slot %d", slot)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st.Remaining > 0 {
		return false, errors.Wrapf(ErrMotionInProgress, "moving to slot %d", c.st.Target)
	}
	delta := Plan(c.st.Current, slot)
	if delta == 0 {
		return false, nil
	}
	c.st.Direction = Forward
	if delta < 0 {
		c.st.Direction = Backward
		delta = -delta
	}
	c.st.Target = slot
	c.st.Remaining = delta * c.halfSteps
	return true, nil
}

// IsIdle returns true if no motion is in progress.
func (c *Controller) IsIdle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Remaining == 0
}

// CurrentSlot returns the last confirmed resting slot. During a
// motion this is the slot the motion started from.
func (c *Controller) CurrentSlot() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Current
}

// State returns a snapshot of the motion state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// abort drops the motion in progress, returning true if there was one.
// The wheel is left between slots, so the position is marked as lost.
func (c *Controller) abort() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drop()
}

// drop is abort with mu held.
func (c *Controller) drop() bool {
	if c.st.Remaining == 0 {
		return false
	}
	c.st.Remaining = 0
	c.st.Target = noTarget
	c.st.Lost = true
	return true
}

// home declares the slot the wheel is physically at.
func (c *Controller) home(slot int) error {
	if slot < 0 || slot >= Slots {
		return errors.Wrapf(ErrInvalidSlot, "slot %d", slot)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st.Remaining > 0 {
		return errors.Wrapf(ErrMotionInProgress, "moving to slot %d", c.st.Target)
	}
	c.st.Current = slot
	c.st.Lost = false
	return nil
}
