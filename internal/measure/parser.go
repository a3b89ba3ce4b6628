/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package measure parses measurement files into named values.
//
// The format is line oriented:
//
//	# full-line comment
//	bust = 92          # trailing comment
//	waist = 70
//	@custom_rise = 24.5
//
// Names starting with '@' are custom measurements outside the standard
// vocabulary. Values are centimeters. Blank lines and full-line comments are
// skipped; anything else that does not match "name = value" is reported as a
// diagnostic with its line number, and parsing continues.
package measure

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	entryRe   = regexp.MustCompile(`^(@?[A-Za-z][A-Za-z0-9_]*)\s*=\s*([^#]*?)\s*(?:#\s*(.*\S)?\s*)?$`)
	commentRe = regexp.MustCompile(`^#`)
)

// Parse reads measurement source text and returns the parsed set together
// with any diagnostics. A non-empty error list does not invalidate the set;
// well-formed lines are kept so a single typo does not blank every field
// bound to a measurement.
func Parse(input string) (Set, []Error) {
	var set Set
	var errs []Error

	defined := make(map[string]int) // name -> index into set.Entries

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || commentRe.MatchString(line) {
			continue
		}

		m := entryRe.FindStringSubmatch(line)
		if m == nil {
			errs = append(errs, Error{
				Line:    lineNo,
				Column:  1,
				Message: fmt.Sprintf("not a measurement line: %q (expected name = value)", line),
			})
			continue
		}

		name := m[1]
		valText := strings.TrimSpace(m[2])
		value, err := strconv.ParseFloat(valText, 64)
		if err != nil {
			errs = append(errs, Error{
				Line:    lineNo,
				Column:  strings.Index(raw, "=") + 2,
				Message: fmt.Sprintf("invalid value %q for %s", valText, name),
			})
			continue
		}
		if value < 0 {
			errs = append(errs, Error{
				Line:    lineNo,
				Column:  strings.Index(raw, "=") + 2,
				Message: fmt.Sprintf("negative value %g for %s", value, name),
			})
			continue
		}

		entry := Entry{
			Name:    name,
			Value:   value,
			Comment: m[3],
			Custom:  strings.HasPrefix(name, "@"),
			LineNo:  lineNo,
		}

		if prev, ok := defined[name]; ok {
			errs = append(errs, Error{
				Line:    lineNo,
				Column:  1,
				Message: fmt.Sprintf("%s already defined on line %d, later value wins", name, set.Entries[prev].LineNo),
			})
			set.Entries[prev] = entry
			continue
		}
		defined[name] = len(set.Entries)
		set.Entries = append(set.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}

	return set, errs
}
