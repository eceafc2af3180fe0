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
	"testing"

	"go.viam.com/test"
)

func TestStepTableAdjacent(t *testing.T) {
	for p := 0; p < Phases; p++ {
		a := HalfStepTable.PatternAt(p)
		b := HalfStepTable.PatternAt(p + 1)
		changed := 0
		for i := range a {
			if a[i] != b[i] {
				changed++
			}
		}
		test.That(t, changed, test.ShouldEqual, 1)
	}
}

func TestStepTableWrap(t *testing.T) {
	test.That(t, HalfStepTable.PatternAt(8), test.ShouldResemble, HalfStepTable.PatternAt(0))
	test.That(t, HalfStepTable.PatternAt(-1), test.ShouldResemble, HalfStepTable.PatternAt(7))
	test.That(t, HalfStepTable.PatternAt(-9), test.ShouldResemble, HalfStepTable.PatternAt(7))
	test.That(t, HalfStepTable.PatternAt(3), test.ShouldResemble, CoilPattern{false, true, true, false})
}

func TestStepTableRest(t *testing.T) {
	test.That(t, HalfStepTable.Rest(), test.ShouldResemble, CoilPattern{})
	for p := 0; p < Phases; p++ {
		test.That(t, HalfStepTable.PatternAt(p), test.ShouldNotResemble, HalfStepTable.Rest())
	}
}
