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

// Package io provides the GPIO outputs that drive the filter wheel motor coils.
package io

import (
	"fmt"
	"sort"
	"sync"
)

// Setter is an interface for setting an output value on a GPIO
type Setter interface {
	Set(int) error
}

// Pin is an output GPIO line that can be released.
type Pin interface {
	Setter
	Close() error
}

// Opener claims a GPIO line as an output, initially low.
type Opener func(gpio int) (Pin, error)

var (
	mu       sync.Mutex
	backends = map[string]Opener{}
)

// Register makes a GPIO backend available by name.
func Register(name string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	backends[name] = open
}

// Backend returns the named GPIO backend.
func Backend(name string) (Opener, error) {
	mu.Lock()
	defer mu.Unlock()
	open, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%s: unknown gpio driver (have %v)", name, names())
	}
	return open, nil
}

func names() []string {
	var n []string
	for k := range backends {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}
