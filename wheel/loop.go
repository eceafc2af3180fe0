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

// OnTimerTick advances the motor by one half-step if a motion is
// in progress, otherwise it makes sure the coils are off.
// It only writes the coil lines, and never blocks.
// A coil write failure abandons the motion and is returned as a *MotionFault.
func (d *Driver) OnTimerTick() error {
	if !d.Ready() {
		return nil
	}
	m := d.motion
	m.mu.Lock()
	if !d.Ready() {
		// Closed while waiting for the lock.
		m.mu.Unlock()
		return nil
	}
	st := &m.st
	if st.Remaining == 0 {
		err := d.pins.Apply(d.table.Rest())
		var fault *MotionFault
		// A failure to turn the coils off is reported once, until
		// the write succeeds again.
		if err != nil && !d.restFailed {
			fault = &MotionFault{Slot: st.Current, Target: noTarget, Phase: st.Phase, Err: err}
		}
		d.restFailed = err != nil
		m.mu.Unlock()
		if fault != nil {
			return d.fault(fault)
		}
		return nil
	}
	next := phaseOf(st.Phase + int(st.Direction))
	if err := d.pins.Apply(d.table.PatternAt(next)); err != nil {
		fault := &MotionFault{Slot: st.Current, Target: st.Target, Phase: st.Phase, Err: err}
		m.drop()
		m.mu.Unlock()
		return d.fault(fault)
	}
	st.Phase = next
	st.Remaining--
	arrived := -1
	if st.Remaining == 0 {
		st.Current = st.Target
		st.Target = noTarget
		arrived = st.Current
	}
	m.mu.Unlock()
	if arrived >= 0 {
		d.log.Infof("%s: arrived at slot %d (%s)", d.Name, arrived, d.cfg.Names[arrived])
		if d.notify != nil {
			d.notify.Selected(arrived)
		}
	}
	return nil
}

func (d *Driver) fault(f *MotionFault) error {
	d.log.Errorf("%s: %v", d.Name, f)
	if d.notify != nil {
		d.notify.Fault(f)
	}
	return f
}
