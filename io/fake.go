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
	"fmt"
	"sync"
)

// FakePin is an in-memory output line, used by the simulator and tests.
type FakePin struct {
	Number int
	bank   *FakeBank
	mu     sync.Mutex
	level  int
	writes int
	closed bool
	fail   error
}

// FakeBank is a set of fake pins, indexed by GPIO number.
type FakeBank struct {
	mu      sync.Mutex
	pins    map[int]*FakePin
	Refuse  map[int]bool // GPIOs that cannot be claimed
	OnWrite func(p *FakePin, v int)
}

func init() {
	sim := NewFakeBank()
	Register("sim", sim.Open)
}

// NewFakeBank creates an empty bank of fake pins.
func NewFakeBank() *FakeBank {
	return &FakeBank{pins: make(map[int]*FakePin), Refuse: make(map[int]bool)}
}

// Open claims a fake pin; it satisfies Opener.
func (b *FakeBank) Open(n int) (Pin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Refuse[n] {
		return nil, fmt.Errorf("gpio%d: device or resource busy", n)
	}
	if p, ok := b.pins[n]; ok && !p.closed {
		return nil, fmt.Errorf("gpio%d: already claimed", n)
	}
	p := &FakePin{Number: n, bank: b}
	b.pins[n] = p
	return p, nil
}

// Pin returns the pin for a GPIO number, or nil if never opened.
func (b *FakeBank) Pin(n int) *FakePin {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pins[n]
}

// Set records the new level.
func (p *FakePin) Set(v int) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("gpio%d: closed", p.Number)
	}
	if p.fail != nil {
		err := p.fail
		p.mu.Unlock()
		return err
	}
	if v != 0 && v != 1 {
		p.mu.Unlock()
		return fmt.Errorf("gpio%d: illegal value", p.Number)
	}
	p.level = v
	p.writes++
	p.mu.Unlock()
	if p.bank != nil && p.bank.OnWrite != nil {
		p.bank.OnWrite(p, v)
	}
	return nil
}

// Close releases the pin.
func (p *FakePin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Fail makes subsequent writes return err (nil to clear).
func (p *FakePin) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

// Level returns the current output level.
func (p *FakePin) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Writes returns the number of successful writes.
func (p *FakePin) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

// Closed reports whether the pin has been released.
func (p *FakePin) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
