/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


// Package history keeps back and forward stacks of viewports so a map can
// return to where it was before a pan or zoom.
package history

import (
	"time"

	"goslip/internal/view"
)

// Entry is a viewport the map left at time TS.
type Entry struct {
	View view.Viewport
	TS   time.Time
}

// Config bounds the stacks.
type Config struct {
	// MaxEntries caps the back stack; the oldest entries are dropped.
	MaxEntries int
	// MinInterval merges pushes closer together than this into the first
	// one, so a drag made of many pans is a single step.
	MinInterval time.Duration
}

// Stack is a browser-style navigation history. Like the rest of the map
// state it is not safe for concurrent use.
type Stack struct {
	cfg  Config
	back []Entry
	fwd  []Entry
}

// New returns an empty stack. Zero fields pick 64 entries and 250ms.
func New(cfg Config) *Stack {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 64
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Stack{cfg: cfg}
}

// Push records the viewport being left and clears the forward stack.
func (s *Stack) Push(e Entry) {
	s.fwd = nil
	if n := len(s.back); n > 0 {
		last := &s.back[n-1]
		if e.TS.Sub(last.TS) < s.cfg.MinInterval {
			// keep the viewport from before the burst, extend its window
			last.TS = e.TS
			return
		}
	}
	s.back = append(s.back, e)
	if extra := len(s.back) - s.cfg.MaxEntries; extra > 0 {
		s.back = append([]Entry{}, s.back[extra:]...)
	}
}

// Back pops the latest entry and remembers cur for Forward.
func (s *Stack) Back(cur view.Viewport) (view.Viewport, bool) {
	n := len(s.back)
	if n == 0 {
		return view.Viewport{}, false
	}
	e := s.back[n-1]
	s.back = s.back[:n-1]
	s.fwd = append(s.fwd, Entry{View: cur})
	return e.View, true
}

// Forward undoes a Back, remembering cur on the back stack.
func (s *Stack) Forward(cur view.Viewport) (view.Viewport, bool) {
	n := len(s.fwd)
	if n == 0 {
		return view.Viewport{}, false
	}
	e := s.fwd[n-1]
	s.fwd = s.fwd[:n-1]
	s.back = append(s.back, Entry{View: cur})
	return e.View, true
}

// Clear drops both stacks.
func (s *Stack) Clear() {
	s.back, s.fwd = nil, nil
}

// Len returns the depth of both stacks.
func (s *Stack) Len() (back, forward int) {
	return len(s.back), len(s.fwd)
}
