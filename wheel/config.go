// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	   https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wheel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aamcrae/config"
)

// Defaults for a 28BYJ-48 geared stepper (4096 half-steps per revolution)
// wired to BCM GPIOs 24, 25, 8, 7 (wiringPi 5, 6, 10, 11).
const (
	DefaultHalfSteps = 4096 / Slots
	DefaultCadence   = 2 * time.Millisecond
	DefaultDriver    = "sysfs"
)

var DefaultGpio = [4]int{24, 25, 8, 7}

// Config is the immutable configuration of a filter wheel.
type Config struct {
	Name      string
	Gpio      [4]int        // GPIOs for the 4 motor coils
	Driver    string        // GPIO backend
	HalfSteps int           // Half-steps between adjacent filter slots
	Cadence   time.Duration // Interval between half-steps
	Names     [Slots]string // Filter names
	Initial   int           // Slot assumed at start up
}

// NewConfig returns a configuration with the default settings.
func NewConfig(name string) *Config {
	c := &Config{
		Name:      name,
		Gpio:      DefaultGpio,
		Driver:    DefaultDriver,
		HalfSteps: DefaultHalfSteps,
		Cadence:   DefaultCadence,
	}
	for i := range c.Names {
		c.Names[i] = fmt.Sprintf("Filter %d", i+1)
	}
	return c
}

// ReadConfig reads a filter wheel config from a config file section.
// All keys are optional, and default if missing.
// Sample config:
//
//	[filterwheel]
//	stepper=24,25,8,7               # GPIOs for the motor coils
//	driver=sysfs                    # GPIO backend (sysfs, rpio, periph, sim)
//	halfsteps=512                   # Half-steps between filter slots
//	cadence=2ms                     # Delay between half-steps
//	names=L,R,G,B,Ha,OIII,SII,Dark  # Filter names
//	initial=0                       # Slot the wheel is at on start up
func ReadConfig(conf *config.Config, name string) (*Config, error) {
	s := conf.GetSection(name)
	if s == nil {
		return nil, fmt.Errorf("no config for %s", name)
	}
	c := NewConfig(name)
	args, err := sectionArgs(s, "stepper")
	if err != nil {
		return nil, err
	}
	if args != nil {
		if len(args) != 4 {
			return nil, fmt.Errorf("stepper: %d GPIOs, expected 4", len(args))
		}
		for i, a := range args {
			if c.Gpio[i], err = strconv.Atoi(a); err != nil {
				return nil, fmt.Errorf("stepper: %v", err)
			}
		}
	}
	d, err := sectionArg(s, "driver")
	if err != nil {
		return nil, err
	}
	if d != "" {
		c.Driver = d
	}
	h, err := sectionArg(s, "halfsteps")
	if err != nil {
		return nil, err
	}
	if h != "" {
		if c.HalfSteps, err = strconv.Atoi(h); err != nil {
			return nil, fmt.Errorf("halfsteps: %v", err)
		}
	}
	p, err := sectionArg(s, "cadence")
	if err != nil {
		return nil, err
	}
	if p != "" {
		if c.Cadence, err = time.ParseDuration(p); err != nil {
			return nil, fmt.Errorf("cadence: %v", err)
		}
	}
	names, err := sectionArgs(s, "names")
	if err != nil {
		return nil, err
	}
	if names != nil {
		if len(names) != Slots {
			return nil, fmt.Errorf("names: %d names, expected %d", len(names), Slots)
		}
		copy(c.Names[:], names)
	}
	i, err := sectionArg(s, "initial")
	if err != nil {
		return nil, err
	}
	if i != "" {
		if c.Initial, err = strconv.Atoi(i); err != nil {
			return nil, fmt.Errorf("initial: %v", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// sectionArgs returns the arguments of a keyword, with any trailing
// comment removed. nil is returned if the keyword is not present.
func sectionArgs(s *config.Section, k string) ([]string, error) {
	if !s.Has(k) {
		return nil, nil
	}
	e := s.Get(k)
	if len(e) != 1 {
		return nil, fmt.Errorf("%s: keyword repeated", k)
	}
	args := []string{}
	for _, t := range e[0].Tokens {
		comment := false
		if i := strings.IndexByte(t, '#'); i >= 0 {
			t = t[:i]
			comment = true
		}
		if t = strings.TrimSpace(t); t != "" {
			args = append(args, t)
		}
		if comment {
			break
		}
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: no value", k)
	}
	return args, nil
}

// sectionArg returns the single argument of a keyword, or "" if the
// keyword is not present.
func sectionArg(s *config.Section, k string) (string, error) {
	args, err := sectionArgs(s, k)
	if err != nil || args == nil {
		return "", err
	}
	if len(args) != 1 {
		return "", fmt.Errorf("%s: expected a single value", k)
	}
	return args[0], nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	seen := make(map[int]bool)
	for i, g := range c.Gpio {
		if g < 0 {
			return fmt.Errorf("%s: coil %d: invalid gpio %d", c.Name, i+1, g)
		}
		if seen[g] {
			return fmt.Errorf("%s: gpio %d used twice", c.Name, g)
		}
		seen[g] = true
	}
	if c.Driver == "" {
		return fmt.Errorf("%s: no gpio driver", c.Name)
	}
	if c.HalfSteps <= 0 {
		return fmt.Errorf("%s: invalid half-steps per slot (%d)", c.Name, c.HalfSteps)
	}
	if c.Cadence <= 0 {
		return fmt.Errorf("%s: invalid cadence (%s)", c.Name, c.Cadence)
	}
	if c.Initial < 0 || c.Initial >= Slots {
		return fmt.Errorf("%s: invalid initial slot (%d)", c.Name, c.Initial)
	}
	names := make(map[string]bool)
	for i, n := range c.Names {
		if n == "" {
			return fmt.Errorf("%s: slot %d has no name", c.Name, i)
		}
		if names[n] {
			return fmt.Errorf("%s: filter name %q used twice", c.Name, n)
		}
		names[n] = true
	}
	return nil
}
