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

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var periphInit struct {
	once sync.Once
	err  error
}

type periphPin struct {
	pin gpio.PinIO
}

func init() {
	Register("periph", PeriphPin)
}

// PeriphPin claims a GPIO through the periph.io host drivers.
// The pin is looked up by its GPIO number e.g 24 is "GPIO24".
func PeriphPin(n int) (Pin, error) {
	periphInit.once.Do(func() {
		_, periphInit.err = host.Init()
	})
	if periphInit.err != nil {
		return nil, fmt.Errorf("periph: %v", periphInit.err)
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if p == nil {
		return nil, fmt.Errorf("gpio%d: no such pin", n)
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("gpio%d: %v", n, err)
	}
	return &periphPin{p}, nil
}

func (p *periphPin) Set(v int) error {
	switch v {
	case 0:
		return p.pin.Out(gpio.Low)
	case 1:
		return p.pin.Out(gpio.High)
	}
	return fmt.Errorf("%s: illegal value", p.pin.Name())
}

func (p *periphPin) Close() error {
	if err := p.pin.Out(gpio.Low); err != nil {
		return err
	}
	return p.pin.Halt()
}
