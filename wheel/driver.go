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
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FilterWheel is the interface a host framework uses to drive the wheel.
type FilterWheel interface {
	Initialize() error
	SelectFilter(slot int) error
	OnTimerTick() error
}

// PinDriver sets the levels of the motor coil lines.
type PinDriver interface {
	Initialize() error
	Apply(levels [4]bool) error
	Close() error
}

// Notifier receives motion completion and fault reports.
// It is called from the drive loop, and must not block.
type Notifier interface {
	Selected(slot int)
	Fault(err error)
}

// Driver is a filter wheel driven by a stepper motor.
// Requests and timer ticks may arrive from different goroutines.
type Driver struct {
	Name   string
	cfg    *Config
	pins   PinDriver
	table  *StepTable
	motion *Controller
	notify Notifier
	log    logrus.FieldLogger
	ready  int32

	restFailed bool // guarded by motion.mu
}

var _ FilterWheel = (*Driver)(nil)

// NewDriver creates a filter wheel driver. The notifier may be nil.
func NewDriver(cfg *Config, pins PinDriver, n Notifier, log logrus.FieldLogger) *Driver {
	d := new(Driver)
	d.Name = cfg.Name
	d.cfg = cfg
	d.pins = pins
	d.table = HalfStepTable
	d.motion = NewController(cfg.HalfSteps, cfg.Initial)
	d.notify = n
	d.log = log.WithField("wheel", cfg.Name)
	return d
}

// Initialize claims the motor lines and de-energises the coils.
func (d *Driver) Initialize() error {
	if err := d.pins.Initialize(); err != nil {
		return &HardwareInitError{Err: err}
	}
	if err := d.pins.Apply(d.table.Rest()); err != nil {
		d.pins.Close()
		return &HardwareInitError{Err: err}
	}
	atomic.StoreInt32(&d.ready, 1)
	d.log.Infof("%s: ready at slot %d (%s), %d half-steps per slot", d.Name, d.cfg.Initial, d.cfg.Names[d.cfg.Initial], d.cfg.HalfSteps)
	return nil
}

// Ready returns true once Initialize has succeeded.
func (d *Driver) Ready() bool {
	return atomic.LoadInt32(&d.ready) != 0
}

// SelectFilter starts moving the wheel to the slot. The motion is
// performed by subsequent timer ticks, and the notifier is
// called when the slot is reached.
func (d *Driver) SelectFilter(slot int) error {
	if !d.Ready() {
		return ErrNotReady
	}
	st := d.motion.State()
	moving, err := d.motion.RequestMotion(slot)
	if err != nil {
		d.log.Warnf("%s: select slot %d rejected: %v", d.Name, slot, err)
		return err
	}
	if st.Lost {
		d.log.Warnf("%s: position unknown, moving from assumed slot %d", d.Name, st.Current)
	}
	if !moving {
		d.log.Infof("%s: already at slot %d", d.Name, slot)
		if d.notify != nil {
			d.notify.Selected(slot)
		}
		return nil
	}
	st = d.motion.State()
	d.log.Infof("%s: moving from slot %d to %d (%s, %d half-steps)", d.Name, st.Current, slot, st.Direction, st.Remaining)
	return nil
}

// SelectByName starts moving the wheel to the named filter.
func (d *Driver) SelectByName(name string) error {
	for i, n := range d.cfg.Names {
		if n == name {
			return d.SelectFilter(i)
		}
	}
	return errors.Wrapf(ErrInvalidSlot, "no filter named %q", name)
}

// Names returns the filter names, indexed by slot.
func (d *Driver) Names() []string {
	return append([]string(nil), d.cfg.Names[:]...)
}

// IsIdle returns true if the wheel is not moving.
func (d *Driver) IsIdle() bool {
	return d.motion.IsIdle()
}

// CurrentSlot returns the last slot the wheel came to rest at.
func (d *Driver) CurrentSlot() int {
	return d.motion.CurrentSlot()
}

// Status returns a snapshot of the motion state.
func (d *Driver) Status() State {
	return d.motion.State()
}

// Abort stops any motion in progress. The wheel is left between
// slots, so the position is unknown until Home is called.
// The coils are turned off on the next tick.
func (d *Driver) Abort() {
	st := d.motion.State()
	if d.motion.abort() {
		d.log.Warnf("%s: motion to slot %d aborted, position unknown", d.Name, st.Target)
	}
}

// Home declares the slot the wheel is physically at, e.g after
// the operator has manually aligned the wheel following a fault.
func (d *Driver) Home(slot int) error {
	if err := d.motion.home(slot); err != nil {
		return err
	}
	d.log.Infof("%s: homed at slot %d", d.Name, slot)
	return nil
}

// Close de-energises the coils and releases the lines.
func (d *Driver) Close() error {
	if !atomic.CompareAndSwapInt32(&d.ready, 1, 0) {
		return nil
	}
	m := d.motion
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drop()
	return d.pins.Close()
}
