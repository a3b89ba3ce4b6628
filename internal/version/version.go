/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version exposes the application version string.
package version

import "runtime/debug"

// Version is the semantic version of the application.
// It can be overridden at build time via:
//
//	go build -ldflags "-X gopatternstudio/internal/version.Version=1.2.3"
var Version = "0.1.0-dev"

// String returns the human-readable version, including VCS revision
// information when the binary was built from a repository checkout.
func String() string {
	s := Version
	if info, ok := debug.ReadBuildInfo(); ok {
		var rev string
		var dirty bool
		for _, kv := range info.Settings {
			switch kv.Key {
			case "vcs.revision":
				rev = kv.Value
			case "vcs.modified":
				dirty = kv.Value == "true"
			}
		}
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			s += "+" + rev
			if dirty {
				s += ".dirty"
			}
		}
	}
	return s
}
