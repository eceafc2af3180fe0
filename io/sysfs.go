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

	gpio "github.com/aamcrae/gpio"
	"golang.org/x/sys/unix"
)

const sysfsExport = "/sys/class/gpio/export"

// sysfsPin is a GPIO output accessed via the sysfs interface.
type sysfsPin struct {
	g *gpio.Gpio
}

func init() {
	Register("sysfs", SysfsPin)
}

// SysfsPin exports a GPIO via /sys/class/gpio and sets it as an output.
func SysfsPin(n int) (Pin, error) {
	// Fail early with a useful message if the sysfs interface
	// is missing or not accessible to this user.
	if err := unix.Access(sysfsExport, unix.W_OK); err != nil {
		return nil, fmt.Errorf("%s: %v", sysfsExport, err)
	}
	g, err := gpio.OutputPin(n)
	if err != nil {
		return nil, fmt.Errorf("gpio%d: %v", n, err)
	}
	if err := g.Set(0); err != nil {
		g.Close()
		return nil, fmt.Errorf("gpio%d: %v", n, err)
	}
	return &sysfsPin{g}, nil
}

func (p *sysfsPin) Set(v int) error {
	return p.g.Set(v)
}

// Close drives the line low and unexports it.
func (p *sysfsPin) Close() error {
	err := p.g.Set(0)
	p.g.Close()
	return err
}
