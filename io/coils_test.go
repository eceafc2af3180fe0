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
	"errors"
	"testing"

	"go.viam.com/test"
)

var testGpio = [4]int{24, 25, 8, 7}

func newTestCoils(t *testing.T) (*Coils, *FakeBank) {
	t.Helper()
	b := NewFakeBank()
	c := NewCoils(b.Open, testGpio)
	test.That(t, c.Initialize(), test.ShouldBeNil)
	return c, b
}

func TestCoilsApply(t *testing.T) {
	c, b := newTestCoils(t)
	test.That(t, c.Apply([4]bool{true, true, false, false}), test.ShouldBeNil)
	test.That(t, b.Pin(24).Level(), test.ShouldEqual, 1)
	test.That(t, b.Pin(25).Level(), test.ShouldEqual, 1)
	test.That(t, b.Pin(8).Level(), test.ShouldEqual, 0)
	test.That(t, b.Pin(7).Level(), test.ShouldEqual, 0)
	test.That(t, c.Levels(), test.ShouldResemble, [4]bool{true, true, false, false})

	// Only the changed line is written.
	test.That(t, c.Apply([4]bool{false, true, false, false}), test.ShouldBeNil)
	test.That(t, b.Pin(24).Writes(), test.ShouldEqual, 2)
	test.That(t, b.Pin(25).Writes(), test.ShouldEqual, 1)
	test.That(t, b.Pin(8).Writes(), test.ShouldEqual, 0)
}

func TestCoilsApplyIdempotent(t *testing.T) {
	c, b := newTestCoils(t)
	test.That(t, c.Apply([4]bool{}), test.ShouldBeNil)
	before := c.Levels()
	test.That(t, c.Apply([4]bool{}), test.ShouldBeNil)
	test.That(t, c.Levels(), test.ShouldResemble, before)
	for _, g := range testGpio {
		test.That(t, b.Pin(g).Level(), test.ShouldEqual, 0)
		test.That(t, b.Pin(g).Writes(), test.ShouldEqual, 0)
	}
}

func TestCoilsWriteFailure(t *testing.T) {
	c, b := newTestCoils(t)
	fault := errors.New("i/o error")
	b.Pin(8).Fail(fault)
	err := c.Apply([4]bool{false, false, true, false})
	test.That(t, errors.Is(err, fault), test.ShouldBeTrue)

	// After a failure every line is rewritten.
	b.Pin(8).Fail(nil)
	test.That(t, c.Apply([4]bool{false, false, true, false}), test.ShouldBeNil)
	for _, g := range testGpio {
		test.That(t, b.Pin(g).Writes(), test.ShouldBeGreaterThanOrEqualTo, 1)
	}
	test.That(t, b.Pin(8).Level(), test.ShouldEqual, 1)
}

func TestCoilsInitializeFailure(t *testing.T) {
	b := NewFakeBank()
	b.Refuse[8] = true
	c := NewCoils(b.Open, testGpio)
	err := c.Initialize()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "gpio 8")
	// Lines claimed before the failure are released.
	test.That(t, b.Pin(24).Closed(), test.ShouldBeTrue)
	test.That(t, b.Pin(25).Closed(), test.ShouldBeTrue)
	test.That(t, b.Pin(7), test.ShouldBeNil)
	test.That(t, c.Apply([4]bool{}), test.ShouldNotBeNil)

	// Already owned lines cannot be claimed twice.
	b2 := NewFakeBank()
	test.That(t, NewCoils(b2.Open, testGpio).Initialize(), test.ShouldBeNil)
	test.That(t, NewCoils(b2.Open, testGpio).Initialize(), test.ShouldNotBeNil)
}

func TestCoilsClose(t *testing.T) {
	c, b := newTestCoils(t)
	test.That(t, c.Apply([4]bool{true, false, false, true}), test.ShouldBeNil)
	test.That(t, c.Close(), test.ShouldBeNil)
	for _, g := range testGpio {
		test.That(t, b.Pin(g).Level(), test.ShouldEqual, 0)
		test.That(t, b.Pin(g).Closed(), test.ShouldBeTrue)
	}
	test.That(t, c.Close(), test.ShouldBeNil)
}

func TestBackend(t *testing.T) {
	for _, name := range []string{"sysfs", "rpio", "periph", "sim"} {
		open, err := Backend(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, open, test.ShouldNotBeNil)
	}
	_, err := Backend("pigpio")
	test.That(t, err, test.ShouldNotBeNil)
}
