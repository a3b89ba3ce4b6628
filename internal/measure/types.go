/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package measure

import "sort"

// Set holds the parsed body measurements of a pattern project. Values are
// always centimeters; callers working in other drawing units convert at the
// boundary with the document's units-per-cm.

type Set struct {
	Entries []Entry
}

// Entry is a single named measurement. Custom marks names introduced with a
// leading '@', which the standard size tables never define.

type Entry struct {
	Name    string
	Value   float64 // centimeters
	Comment string
	Custom  bool
	LineNo  int // 1-based starting line number in the source
}

// Error represents a parse diagnostic with position context.

type Error struct {
	Line    int
	Column  int
	Message string
}

// Lookup returns the value of a named measurement. When the source defined
// the name more than once the last definition wins.
func (s Set) Lookup(name string) (float64, bool) {
	for i := len(s.Entries) - 1; i >= 0; i-- {
		if s.Entries[i].Name == name {
			return s.Entries[i].Value, true
		}
	}
	return 0, false
}

// Names returns the defined measurement names sorted alphabetically, each
// name once. Sorting keeps completion lists and reports stable across runs.
func (s Set) Names() []string {
	seen := make(map[string]struct{}, len(s.Entries))
	out := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e.Name)
	}
	sort.Strings(out)
	return out
}
