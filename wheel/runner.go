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
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Runner calls the timer tick of a wheel at a fixed cadence, for
// hosts that do not provide their own periodic callback.
type Runner struct {
	wheel   FilterWheel
	clk     clock.Clock
	cadence time.Duration
	log     logrus.FieldLogger
	wg      sync.WaitGroup
	mu      sync.Mutex
	faults  int
}

// NewRunner creates a runner ticking the wheel every cadence.
func NewRunner(w FilterWheel, clk clock.Clock, cadence time.Duration, log logrus.FieldLogger) *Runner {
	return &Runner{wheel: w, clk: clk, cadence: cadence, log: log}
}

// Start starts ticking the wheel until the context is cancelled.
// The ticker is running when Start returns.
func (r *Runner) Start(ctx context.Context) {
	ticker := r.clk.Ticker(r.cadence)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.wheel.OnTimerTick(); err != nil {
					// The wheel has reported the fault; keep ticking so
					// that the coils are turned off.
					r.mu.Lock()
					r.faults++
					r.mu.Unlock()
					r.log.Debugf("tick: %v", err)
				}
			}
		}
	}()
}

// Wait waits for the runner to stop.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Faults returns the number of ticks that returned an error.
func (r *Runner) Faults() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.faults
}
