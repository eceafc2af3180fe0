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

// Simulator for the filter wheel, driving simulated coil lines.

package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/aamcrae/filterwheel/io"
	"github.com/aamcrae/filterwheel/wheel"
)

var sequence = flag.String("sequence", "3,6,L,Dark,0", "Filters to select (slots or names)")
var halfSteps = flag.Int("halfsteps", 16, "Half-steps per slot")
var cadence = flag.Duration("cadence", time.Millisecond, "Delay between half-steps")
var port = flag.Int("port", 0, "Status server port number (0 disables)")
var show = flag.Bool("coils", false, "Print coil levels on each half-step")

// SimWheel records events from the wheel and shows the coils.
type SimWheel struct {
	bank *io.FakeBank
	gpio [4]int
	done chan error
}

func main() {
	flag.Parse()
	log := logrus.New()
	cfg := wheel.NewConfig("sim")
	cfg.Driver = "sim"
	cfg.HalfSteps = *halfSteps
	cfg.Cadence = *cadence
	copy(cfg.Names[:], []string{"L", "R", "G", "B", "Ha", "OIII", "SII", "Dark"})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	sim := &SimWheel{bank: io.NewFakeBank(), gpio: cfg.Gpio, done: make(chan error, 1)}
	d := wheel.NewDriver(cfg, io.NewCoils(sim.bank.Open, cfg.Gpio), sim, log)
	if err := d.Initialize(); err != nil {
		log.Fatalf("%v", err)
	}
	defer d.Close()
	ctx, cancel := context.WithCancel(context.Background())
	r := wheel.NewRunner(d, clock.New(), cfg.Cadence, log)
	r.Start(ctx)
	defer func() {
		cancel()
		r.Wait()
	}()
	if *port != 0 {
		go func() {
			log.Errorf("server: %v", wheel.Serve(*port, d))
		}()
	}
	for _, f := range strings.Split(*sequence, ",") {
		start := time.Now()
		var err error
		if slot, perr := strconv.Atoi(f); perr == nil {
			err = d.SelectFilter(slot)
		} else {
			err = d.SelectByName(f)
		}
		if err != nil {
			log.Errorf("%s: %v", f, err)
			continue
		}
		if *show {
			go sim.watch(ctx, d)
		}
		if err := <-sim.done; err != nil {
			log.Errorf("%s: %v", f, err)
			return
		}
		fmt.Printf("%s: at slot %d in %s\n", f, d.CurrentSlot(), time.Since(start).Round(time.Millisecond))
	}
	if *port != 0 {
		select {}
	}
}

// watch prints the coil levels while the wheel is moving.
func (s *SimWheel) watch(ctx context.Context, d *wheel.Driver) {
	last := -1
	for !d.IsIdle() {
		st := d.Status()
		if st.Phase != last {
			last = st.Phase
			fmt.Printf("phase %d coils %s remaining %d\n", st.Phase, s.levels(), st.Remaining)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(*cadence / 2):
		}
	}
}

func (s *SimWheel) levels() string {
	var b strings.Builder
	for _, g := range s.gpio {
		if p := s.bank.Pin(g); p != nil {
			fmt.Fprintf(&b, "%d", p.Level())
		}
	}
	return b.String()
}

func (s *SimWheel) Selected(slot int) {
	s.report(nil)
}

func (s *SimWheel) Fault(err error) {
	s.report(err)
}

func (s *SimWheel) report(err error) {
	select {
	case s.done <- err:
	default:
	}
}
