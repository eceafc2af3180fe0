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

package io

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Coils drives the four coil lines of a unipolar stepper motor.
// Levels are cached so that re-applying the current pattern
// does not touch the hardware.
type Coils struct {
	gpio   [4]int
	open   Opener
	pins   [4]Pin
	levels [4]bool
	valid  bool // levels reflect the hardware
}

// NewCoils creates a driver for the coil lines. No hardware is
// claimed until Initialize is called.
func NewCoils(open Opener, gpio [4]int) *Coils {
	return &Coils{gpio: gpio, open: open}
}

// Initialize claims the coil lines as outputs. If any line cannot
// be claimed, the lines already claimed are released.
func (c *Coils) Initialize() error {
	if c.pins[0] != nil {
		return errors.New("coils already initialised")
	}
	for i, g := range c.gpio {
		p, err := c.open(g)
		if err != nil {
			c.release()
			return errors.Wrapf(err, "coil %d (gpio %d)", i+1, g)
		}
		c.pins[i] = p
	}
	// Lines are opened low.
	c.levels = [4]bool{}
	c.valid = true
	return nil
}

// Apply sets the coil lines to the levels given.
func (c *Coils) Apply(levels [4]bool) error {
	if c.pins[0] == nil {
		return errors.New("coils not initialised")
	}
	if c.valid && levels == c.levels {
		return nil
	}
	for i, p := range c.pins {
		if c.valid && levels[i] == c.levels[i] {
			continue
		}
		v := 0
		if levels[i] {
			v = 1
		}
		if err := p.Set(v); err != nil {
			c.valid = false
			return errors.Wrapf(err, "coil %d (gpio %d)", i+1, c.gpio[i])
		}
	}
	c.levels = levels
	c.valid = true
	return nil
}

// Levels returns the last levels successfully applied.
func (c *Coils) Levels() [4]bool {
	return c.levels
}

// Close turns the coils off and releases the lines.
func (c *Coils) Close() error {
	if c.pins[0] == nil {
		return nil
	}
	err := c.Apply([4]bool{})
	return multierr.Append(err, c.release())
}

func (c *Coils) release() error {
	var err error
	for i, p := range c.pins {
		if p != nil {
			err = multierr.Append(err, p.Close())
			c.pins[i] = nil
		}
	}
	c.valid = false
	return err
}
