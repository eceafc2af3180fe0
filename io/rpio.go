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

	"github.com/stianeikeland/go-rpio/v4"
)

// The rpio register mapping is shared by all pins, so it is
// opened with the first pin and closed with the last.
var (
	rpioMu   sync.Mutex
	rpioRefs int
)

type rpioPin struct {
	pin rpio.Pin
}

func init() {
	Register("rpio", RpioPin)
}

// RpioPin sets a Raspberry Pi GPIO (BCM numbering) as an output
// using direct register access.
func RpioPin(n int) (Pin, error) {
	if n < 0 || n > 53 {
		return nil, fmt.Errorf("gpio%d: invalid BCM pin", n)
	}
	rpioMu.Lock()
	defer rpioMu.Unlock()
	if rpioRefs == 0 {
		if err := rpio.Open(); err != nil {
			return nil, fmt.Errorf("rpio: %v", err)
		}
	}
	rpioRefs++
	p := rpio.Pin(n)
	p.Output()
	p.Low()
	return &rpioPin{p}, nil
}

func (p *rpioPin) Set(v int) error {
	switch v {
	case 0:
		p.pin.Low()
	case 1:
		p.pin.High()
	default:
		return fmt.Errorf("gpio%d: illegal value", p.pin)
	}
	return nil
}

func (p *rpioPin) Close() error {
	p.pin.Low()
	rpioMu.Lock()
	defer rpioMu.Unlock()
	rpioRefs--
	if rpioRefs == 0 {
		return rpio.Close()
	}
	return nil
}
