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

// Filter wheel program

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aamcrae/config"
	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/aamcrae/filterwheel/io"
	"github.com/aamcrae/filterwheel/wheel"
)

var configFile = flag.String("config", "", "Configuration file")
var section = flag.String("wheel", "filterwheel", "Config section for the filter wheel")
var filter = flag.String("filter", "", "Select filter (slot or name), wait for it and exit")
var port = flag.Int("port", 0, "Status server port number (0 disables)")
var timeout = flag.Duration("timeout", 2*time.Minute, "Maximum time to wait for a filter selection")
var verbose = flag.Bool("v", false, "Verbose logging")

// notifier passes wheel events to the main goroutine.
type notifier struct {
	selected chan int
	faults   chan error
}

func (n *notifier) Selected(slot int) {
	select {
	case n.selected <- slot:
	default:
	}
}

func (n *notifier) Fault(err error) {
	select {
	case n.faults <- err:
	default:
	}
}

func main() {
	flag.Parse()
	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	cfg := wheel.NewConfig(*section)
	if *configFile != "" {
		conf, err := config.ParseFile(*configFile)
		if err != nil {
			log.Fatalf("%s: %v", *configFile, err)
		}
		cfg, err = wheel.ReadConfig(conf, *section)
		if err != nil {
			log.Fatalf("%s: %v", *configFile, err)
		}
	}
	open, err := io.Backend(cfg.Driver)
	if err != nil {
		log.Fatalf("%v", err)
	}
	n := &notifier{selected: make(chan int, 1), faults: make(chan error, 1)}
	d := wheel.NewDriver(cfg, io.NewCoils(open, cfg.Gpio), n, log)
	if err := d.Initialize(); err != nil {
		log.Fatalf("%s: %v", cfg.Name, err)
	}
	os.Exit(run(d, cfg, n, log))
}

func run(d *wheel.Driver, cfg *wheel.Config, n *notifier, log *logrus.Logger) int {
	defer func() {
		if err := d.Close(); err != nil {
			log.Errorf("%s: close: %v", cfg.Name, err)
		}
	}()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	r := wheel.NewRunner(d, clock.New(), cfg.Cadence, log)
	r.Start(ctx)
	defer func() {
		cancel()
		r.Wait()
	}()
	if *filter != "" {
		return selectAndWait(ctx, d, n, log)
	}
	if *port != 0 {
		go func() {
			log.Errorf("server: %v", wheel.Serve(*port, d))
			cancel()
		}()
	}
	for {
		select {
		case <-ctx.Done():
			return 0
		case slot := <-n.selected:
			log.Infof("%s: filter %s selected", cfg.Name, cfg.Names[slot])
		case err := <-n.faults:
			log.Errorf("%s: %v", cfg.Name, err)
		}
	}
}

func selectAndWait(ctx context.Context, d *wheel.Driver, n *notifier, log *logrus.Logger) int {
	var err error
	if slot, perr := strconv.Atoi(*filter); perr == nil {
		err = d.SelectFilter(slot)
	} else {
		err = d.SelectByName(*filter)
	}
	if err != nil {
		log.Errorf("%s: %v", *filter, err)
		return 1
	}
	t := time.NewTimer(*timeout)
	defer t.Stop()
	select {
	case slot := <-n.selected:
		log.Infof("Filter %d (%s) selected", slot, d.Names()[slot])
		return 0
	case err := <-n.faults:
		log.Errorf("%s: %v", *filter, err)
	case <-t.C:
		log.Errorf("%s: timed out", *filter)
		d.Abort()
	case <-ctx.Done():
		d.Abort()
	}
	return 1
}
