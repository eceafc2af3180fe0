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
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.viam.com/test"
)

func TestRunner(t *testing.T) {
	tw := newTestWheel(t, 2)
	mock := clock.NewMock()
	log, _ := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(tw, mock, tw.cfg.Cadence, log)
	r.Start(ctx)

	test.That(t, tw.SelectFilter(5), test.ShouldBeNil)
	// Ticks may be dropped if the runner is slow to read them,
	// so advance the clock until the wheel arrives.
	for i := 0; i < 1000 && !tw.IsIdle(); i++ {
		mock.Add(tw.cfg.Cadence)
	}
	test.That(t, tw.IsIdle(), test.ShouldBeTrue)
	test.That(t, tw.CurrentSlot(), test.ShouldEqual, 5)
	cancel()
	r.Wait()
	sel, _ := tw.rec.events()
	test.That(t, sel, test.ShouldResemble, []int{5})
	test.That(t, r.Faults(), test.ShouldEqual, 0)
}

func TestRunnerFault(t *testing.T) {
	tw := newTestWheel(t, 2)
	mock := clock.NewMock()
	log, _ := logtest.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(tw, mock, time.Millisecond, log)
	r.Start(ctx)

	tw.bank.Pin(tw.cfg.Gpio[0]).Fail(errors.New("write failed"))
	test.That(t, tw.SelectFilter(1), test.ShouldBeNil)
	for i := 0; i < 1000 && !tw.IsIdle(); i++ {
		mock.Add(time.Millisecond)
	}
	cancel()
	r.Wait()
	test.That(t, tw.Status().Lost, test.ShouldBeTrue)
	test.That(t, r.Faults(), test.ShouldBeGreaterThanOrEqualTo, 1)
	_, faults := tw.rec.events()
	test.That(t, faults, test.ShouldNotBeEmpty)
}
